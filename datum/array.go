package datum

import (
	"encoding/binary"
	"math"

	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/arena"
	"github.com/wippyai/pg-runtime/errors"
)

// Array header layout, following the varlena header:
//
//	+4   ndim       int32
//	+8   dataoffset int32   0 when there is no null bitmap
//	+12  elemtype   oid
//	+16  dims[0]    int32
//	+20  lbound[0]  int32
//	+24  null bitmap (when dataoffset != 0), then element data
const (
	arrNDimOff     = 4
	arrDataOffOff  = 8
	arrElemTypeOff = 12
	arrDimsOff     = 16
	arrHeaderSize  = 24
)

// Array is a deconstructed one-dimensional host array: a parallel word
// array and null bitmap, plus the raw element storage for typed views.
type Array struct {
	ElemType pgruntime.Oid
	Elems    []pgruntime.Datum
	Nulls    []bool

	info     pgruntime.TypeInfo
	data     []byte
	hasNulls bool
	owned    *arena.Owned[pgruntime.Datum]
}

// ToArray normalizes and deconstructs an array word. Normalization runs
// guarded since it can allocate and can signal. For by-value element types
// the element words are copied out eagerly and a fresh normalization buffer
// is released before returning (the host returns the input unchanged when it
// is already addressable). For by-reference element types the element words
// point into that buffer, so the array takes ownership of it instead; it
// stays live until Release or the owning region's teardown.
func ToArray(h pgruntime.Host, v Value) (*Array, error) {
	if v.null {
		return nil, errors.Null(errors.PhaseDecode, "array")
	}

	orig := v.word
	norm, err := normalize(h, orig, false)
	if err != nil {
		return nil, err
	}

	a, err := deconstruct(h, norm)
	if err != nil {
		if norm != orig {
			arena.Current(h).Free(norm)
		}
		return nil, err
	}
	if norm != orig {
		if a.info.ByVal {
			arena.Current(h).Free(norm)
		} else {
			a.owned = arena.NewOwned(arena.Current(h), norm, norm)
		}
	}
	return a, nil
}

func deconstruct(h pgruntime.Host, ptr pgruntime.Datum) (*Array, error) {
	mem := h.Mem()

	hdr, err := decodeVarHeader(mem, ptr)
	if err != nil {
		return nil, err
	}
	if hdr.layout != Var4BUncompressed {
		return nil, errors.InvalidEncoding(errors.PhaseDecode,
			"array buffer not in plain 4-byte-header form after normalization")
	}
	if hdr.payload+var4BHeaderSize < arrHeaderSize {
		return nil, errors.InvalidEncoding(errors.PhaseDecode,
			"array buffer of %d bytes is smaller than the array header", hdr.payload+var4BHeaderSize)
	}

	ndim, err := readI32(mem, ptr+arrNDimOff)
	if err != nil {
		return nil, err
	}
	if ndim != 1 {
		return nil, errors.UnsupportedDim(int(ndim))
	}

	dataOff, err := readI32(mem, ptr+arrDataOffOff)
	if err != nil {
		return nil, err
	}
	elemOid, err := mem.ReadU32(ptr + arrElemTypeOff)
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseDecode, "array element type", err)
	}
	n, err := readI32(mem, ptr+arrDimsOff)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errors.InvalidEncoding(errors.PhaseDecode, "array claims %d elements", n)
	}

	info, ok := h.TypeInfo(pgruntime.Oid(elemOid))
	if !ok {
		return nil, errors.InvalidEncoding(errors.PhaseDecode,
			"no type introspection for array element type %d", elemOid)
	}

	a := &Array{
		ElemType: pgruntime.Oid(elemOid),
		Elems:    make([]pgruntime.Datum, n),
		Nulls:    make([]bool, n),
		info:     info,
		hasNulls: dataOff != 0,
	}

	var bitmap []byte
	dataStart := ptr + arrHeaderSize
	if a.hasNulls {
		bitmap, err = mem.Read(ptr+arrHeaderSize, uint32(n+7)/8)
		if err != nil {
			return nil, errors.OutOfBounds(errors.PhaseDecode, "array null bitmap", err)
		}
		dataStart = ptr + pgruntime.Datum(dataOff)
	}

	end := ptr + var4BHeaderSize + pgruntime.Datum(hdr.payload)
	if dataStart > end {
		return nil, errors.InvalidEncoding(errors.PhaseDecode, "array data offset past end of buffer")
	}

	// Raw element storage, copied out before the normalization buffer can
	// be released.
	view, err := mem.Read(dataStart, uint32(end-dataStart))
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseDecode, "array data", err)
	}
	a.data = append([]byte(nil), view...)

	cur := dataStart
	for i := int32(0); i < n; i++ {
		if bitmap != nil && bitmap[i/8]&(1<<(uint(i)%8)) == 0 {
			a.Nulls[i] = true
			continue
		}
		cur = alignPtr(cur, info.Align)
		elem, size, err := readElem(mem, cur, info, end)
		if err != nil {
			return nil, err
		}
		a.Elems[i] = elem
		cur += pgruntime.Datum(size)
	}

	return a, nil
}

// readElem decodes one element at cur: fixed-width by-value types read the
// word directly, variable-length by-reference types point at their buffer.
func readElem(mem pgruntime.Memory, cur pgruntime.Datum, info pgruntime.TypeInfo, end pgruntime.Datum) (pgruntime.Datum, uint32, error) {
	if info.ByVal {
		var word uint64
		var err error
		switch info.Len {
		case 1:
			var b uint8
			b, err = mem.ReadU8(cur)
			word = uint64(b)
		case 2:
			var u uint16
			u, err = mem.ReadU16(cur)
			word = uint64(u)
		case 4:
			var u uint32
			u, err = mem.ReadU32(cur)
			word = uint64(u)
		case 8:
			word, err = mem.ReadU64(cur)
		default:
			return 0, 0, errors.InvalidEncoding(errors.PhaseDecode,
				"by-value element width %d is not a machine word", info.Len)
		}
		if err != nil {
			return 0, 0, errors.OutOfBounds(errors.PhaseDecode, "array element", err)
		}
		return pgruntime.Datum(word), uint32(info.Len), nil
	}

	if info.Len >= 0 {
		// Fixed-width by-reference element.
		return cur, uint32(info.Len), nil
	}

	// Variable-length element: its own varlena header gives the size.
	hdr, err := decodeVarHeader(mem, cur)
	if err != nil {
		return 0, 0, err
	}
	if hdr.needsNormalize() && hdr.layout != Var4BCompressed {
		return 0, 0, errors.InvalidEncoding(errors.PhaseDecode,
			"out-of-line element inside a normalized array")
	}
	if cur+pgruntime.Datum(hdr.dataOff+hdr.payload) > end {
		return 0, 0, errors.OutOfBounds(errors.PhaseDecode, "array element payload", nil)
	}
	return cur, hdr.dataOff + hdr.payload, nil
}

func alignPtr(p pgruntime.Datum, align byte) pgruntime.Datum {
	var a pgruntime.Datum
	switch align {
	case 'c':
		a = 1
	case 's':
		a = 2
	case 'i':
		a = 4
	case 'd':
		a = 8
	default:
		a = 1
	}
	return (p + a - 1) &^ (a - 1)
}

func readI32(mem pgruntime.Memory, ptr pgruntime.Datum) (int32, error) {
	u, err := mem.ReadU32(ptr)
	if err != nil {
		return 0, errors.OutOfBounds(errors.PhaseDecode, "array header", err)
	}
	return int32(u), nil
}

// Len returns the element count.
func (a *Array) Len() int { return len(a.Elems) }

// HasNulls reports whether any element is null.
func (a *Array) HasNulls() bool { return a.hasNulls }

// Release frees the normalization buffer the array took ownership of, when
// there is one. Elems and Value results for by-reference element types are
// invalid afterwards; the typed fixed-width views stay valid. Safe to call
// more than once.
func (a *Array) Release() {
	if a.owned != nil {
		a.owned.Release()
	}
}

// Value returns element i as a Value.
func (a *Array) Value(i int) Value {
	return FromRaw(a.Elems[i], a.Nulls[i])
}

// Int16s reinterprets the element storage as []int16.
func (a *Array) Int16s() ([]int16, error) {
	return fixedView(a, pgruntime.OidInt2, 2, "[]int16", func(b []byte) int16 {
		return int16(binary.LittleEndian.Uint16(b))
	})
}

// Int32s reinterprets the element storage as []int32.
func (a *Array) Int32s() ([]int32, error) {
	return fixedView(a, pgruntime.OidInt4, 4, "[]int32", func(b []byte) int32 {
		return int32(binary.LittleEndian.Uint32(b))
	})
}

// Int64s reinterprets the element storage as []int64.
func (a *Array) Int64s() ([]int64, error) {
	return fixedView(a, pgruntime.OidInt8, 8, "[]int64", func(b []byte) int64 {
		return int64(binary.LittleEndian.Uint64(b))
	})
}

// Float32s reinterprets the element storage as []float32.
func (a *Array) Float32s() ([]float32, error) {
	return fixedView(a, pgruntime.OidFloat4, 4, "[]float32", func(b []byte) float32 {
		return math32frombytes(b)
	})
}

// Float64s reinterprets the element storage as []float64.
func (a *Array) Float64s() ([]float64, error) {
	return fixedView(a, pgruntime.OidFloat8, 8, "[]float64", func(b []byte) float64 {
		return math64frombytes(b)
	})
}

// fixedView reinterprets the raw element storage as a typed slice. Only
// sound for fixed-width by-value element types with no null elements, and
// only when the storage length divides evenly by the element size.
func fixedView[T any](a *Array, want pgruntime.Oid, size int, goType string, get func([]byte) T) ([]T, error) {
	if a.ElemType != want {
		return nil, errors.TypeMismatch(errors.PhaseDecode, nil, goType, oidName(a.ElemType))
	}
	if a.hasNulls {
		return nil, errors.Null(errors.PhaseDecode, goType)
	}
	if len(a.data)%size != 0 {
		return nil, errors.InvalidEncoding(errors.PhaseDecode,
			"array data length %d does not divide evenly by element size %d", len(a.data), size)
	}
	out := make([]T, len(a.data)/size)
	for i := range out {
		out[i] = get(a.data[i*size:])
	}
	if len(out) != len(a.Elems) {
		return nil, errors.InvalidEncoding(errors.PhaseDecode,
			"array data holds %d elements, header claims %d", len(out), len(a.Elems))
	}
	return out, nil
}

func math32frombytes(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func math64frombytes(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func oidName(oid pgruntime.Oid) string {
	switch oid {
	case pgruntime.OidBool:
		return "bool"
	case pgruntime.OidBytea:
		return "bytea"
	case pgruntime.OidInt2:
		return "int2"
	case pgruntime.OidInt4:
		return "int4"
	case pgruntime.OidInt8:
		return "int8"
	case pgruntime.OidText:
		return "text"
	case pgruntime.OidFloat4:
		return "float4"
	case pgruntime.OidFloat8:
		return "float8"
	default:
		return "unknown"
	}
}
