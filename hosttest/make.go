package hosttest

import (
	"encoding/binary"
	"math"

	pgruntime "github.com/wippyai/pg-runtime"
)

// MakeBytea writes payload behind a plain 4-byte header in the current
// region and returns the word.
func (e *Engine) MakeBytea(payload []byte) pgruntime.Datum {
	return e.writeVar4B(payload)
}

// MakeText is MakeBytea for string payloads.
func (e *Engine) MakeText(s string) pgruntime.Datum {
	return e.writeVar4B([]byte(s))
}

// MakeShortText writes s behind a 1-byte header. Payload is limited to 126
// bytes.
func (e *Engine) MakeShortText(s string) pgruntime.Datum {
	total := uint32(1 + len(s))
	if total > 0x7F {
		panic("hosttest: payload too long for a 1-byte header")
	}
	ptr := e.RegionAlloc(e.current, total, false)
	if err := e.mem.WriteU8(ptr, uint8(total<<1|1)); err != nil {
		e.raise("short buffer write failed: %v", err)
	}
	if err := e.mem.Write(ptr+1, []byte(s)); err != nil {
		e.raise("short buffer write failed: %v", err)
	}
	return ptr
}

// MakeCompressed writes raw in the engine's compressed form: a 4-byte header
// flagged compressed, a 4-byte raw-size prefix, then the bytes verbatim.
// Decoding it requires a normalization round trip.
func (e *Engine) MakeCompressed(raw []byte) pgruntime.Datum {
	total := uint32(4 + 4 + len(raw))
	ptr := e.RegionAlloc(e.current, total, false)
	if err := e.mem.WriteU32(ptr, total<<2|2); err != nil {
		e.raise("compressed buffer write failed: %v", err)
	}
	if err := e.mem.WriteU32(ptr+4, uint32(len(raw))); err != nil {
		e.raise("compressed buffer write failed: %v", err)
	}
	if err := e.mem.Write(ptr+8, raw); err != nil {
		e.raise("compressed buffer write failed: %v", err)
	}
	return ptr
}

// MakeToasted registers raw as an out-of-line payload and returns a 1-byte
// tag word pointing at it. Only Detoast can read it back.
func (e *Engine) MakeToasted(raw []byte) pgruntime.Datum {
	ptr := e.RegionAlloc(e.current, 2, true)
	if err := e.mem.WriteU8(ptr, 0x01); err != nil {
		e.raise("out-of-line tag write failed: %v", err)
	}
	e.toast[ptr] = append([]byte(nil), raw...)
	return ptr
}

// MakeInt32Array writes a one-dimensional int4 array with no null bitmap.
func (e *Engine) MakeInt32Array(vals []int32) pgruntime.Datum {
	return e.makeArray(pgruntime.OidInt4, 1, len(vals), nil, func(data []byte) {
		for i, v := range vals {
			binary.LittleEndian.PutUint32(data[i*4:], uint32(v))
		}
	}, 4*len(vals))
}

// MakeInt32ArrayNulls writes a one-dimensional int4 array with a null
// bitmap. Slots where nulls is true carry no element data.
func (e *Engine) MakeInt32ArrayNulls(vals []int32, nulls []bool) pgruntime.Datum {
	if len(vals) != len(nulls) {
		panic("hosttest: values and null flags differ in length")
	}
	present := 0
	for _, n := range nulls {
		if !n {
			present++
		}
	}
	return e.makeArray(pgruntime.OidInt4, 1, len(vals), nulls, func(data []byte) {
		off := 0
		for i, v := range vals {
			if nulls[i] {
				continue
			}
			binary.LittleEndian.PutUint32(data[off:], uint32(v))
			off += 4
		}
	}, 4*present)
}

// MakeFloat64Array writes a one-dimensional float8 array with no null
// bitmap.
func (e *Engine) MakeFloat64Array(vals []float64) pgruntime.Datum {
	return e.makeArray(pgruntime.OidFloat8, 1, len(vals), nil, func(data []byte) {
		for i, v := range vals {
			binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
		}
	}, 8*len(vals))
}

// MakeTextArray writes a one-dimensional text array with no null bitmap.
// Each element sits behind its own plain 4-byte header at a 4-byte boundary.
func (e *Engine) MakeTextArray(vals []string) pgruntime.Datum {
	size := 0
	for _, s := range vals {
		size = (size + 3) &^ 3
		size += 4 + len(s)
	}
	return e.makeArray(pgruntime.OidText, 1, len(vals), nil, func(data []byte) {
		off := 0
		for _, s := range vals {
			off = (off + 3) &^ 3
			total := uint32(4 + len(s))
			binary.LittleEndian.PutUint32(data[off:], total<<2)
			copy(data[off+4:], s)
			off += int(total)
		}
	}, size)
}

// MakeArray2D writes a two-dimensional int4 array header. The runtime only
// accepts one dimension, so this exists to exercise the rejection path.
func (e *Engine) MakeArray2D(rows, cols int) pgruntime.Datum {
	n := rows * cols
	total := uint32(4 + 20 + 8 + 4*n)
	ptr := e.RegionAlloc(e.current, total, true)
	e.mustWriteU32(ptr, total<<2)
	e.mustWriteU32(ptr+4, 2)
	e.mustWriteU32(ptr+8, 0)
	e.mustWriteU32(ptr+12, uint32(pgruntime.OidInt4))
	e.mustWriteU32(ptr+16, uint32(rows))
	e.mustWriteU32(ptr+20, 1)
	e.mustWriteU32(ptr+24, uint32(cols))
	e.mustWriteU32(ptr+28, 1)
	return ptr
}

// makeArray lays out the common one-dimensional array form: varlena header,
// array header, optional null bitmap, then dataSize element bytes filled in
// by fill.
func (e *Engine) makeArray(elem pgruntime.Oid, lbound int32, n int, nulls []bool, fill func([]byte), dataSize int) pgruntime.Datum {
	const hdrSize = 24

	dataOff := uint32(0)
	bitmapLen := 0
	if nulls != nil {
		bitmapLen = (n + 7) / 8
		dataOff = uint32(hdrSize + bitmapLen)
		// Element data is 4-byte aligned past the bitmap.
		dataOff = (dataOff + 3) &^ 3
	}

	start := uint32(hdrSize)
	if nulls != nil {
		start = dataOff
	}
	total := start + uint32(dataSize)

	ptr := e.RegionAlloc(e.current, total, true)
	e.mustWriteU32(ptr, total<<2)
	e.mustWriteU32(ptr+4, 1)
	e.mustWriteU32(ptr+8, dataOff)
	e.mustWriteU32(ptr+12, uint32(elem))
	e.mustWriteU32(ptr+16, uint32(n))
	e.mustWriteU32(ptr+20, uint32(lbound))

	if nulls != nil {
		bitmap := make([]byte, bitmapLen)
		for i, isNull := range nulls {
			if !isNull {
				bitmap[i/8] |= 1 << (uint(i) % 8)
			}
		}
		if err := e.mem.Write(ptr+hdrSize, bitmap); err != nil {
			e.raise("array bitmap write failed: %v", err)
		}
	}

	if dataSize > 0 {
		data := make([]byte, dataSize)
		fill(data)
		if err := e.mem.Write(ptr+pgruntime.Datum(start), data); err != nil {
			e.raise("array data write failed: %v", err)
		}
	}
	return ptr
}

func (e *Engine) mustWriteU32(ptr pgruntime.Datum, v uint32) {
	if err := e.mem.WriteU32(ptr, v); err != nil {
		e.raise("array header write failed: %v", err)
	}
}
