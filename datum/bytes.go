package datum

import (
	"unicode/utf8"

	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/arena"
	"github.com/wippyai/pg-runtime/errors"
	"github.com/wippyai/pg-runtime/guard"
)

// ToBytes returns a zero-copy view over region memory at the decoded
// offset and length. Compressed and out-of-line buffers are normalized
// through the host first (guarded); the view then aliases the normalization
// buffer in the current region, which the region's bulk teardown reclaims.
// The view is only valid while that region lives.
func ToBytes(h pgruntime.Host, v Value) ([]byte, error) {
	if v.null {
		return nil, errors.Null(errors.PhaseDecode, "[]byte")
	}

	mem := h.Mem()
	ptr := v.word
	hdr, err := decodeVarHeader(mem, ptr)
	if err != nil {
		return nil, err
	}

	if hdr.needsNormalize() {
		ptr, err = normalize(h, ptr, false)
		if err != nil {
			return nil, err
		}
		hdr, err = decodeVarHeader(mem, ptr)
		if err != nil {
			return nil, err
		}
		if hdr.needsNormalize() {
			return nil, errors.InvalidEncoding(errors.PhaseDecode,
				"host normalization returned a non-addressable buffer")
		}
	}

	data, err := mem.Read(ptr+pgruntime.Datum(hdr.dataOff), hdr.payload)
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseDecode, "buffer payload", err)
	}
	return data, nil
}

// ToOwnedBytes copies the buffer out through the host's normalization
// routine and tags the result as requiring explicit release. Use it when the
// bytes must outlive the statement's region churn.
func ToOwnedBytes(h pgruntime.Host, v Value) (*arena.Owned[[]byte], error) {
	if v.null {
		return nil, errors.Null(errors.PhaseDecode, "[]byte")
	}

	ptr, err := normalize(h, v.word, true)
	if err != nil {
		return nil, err
	}

	mem := h.Mem()
	hdr, err := decodeVarHeader(mem, ptr)
	if err != nil {
		return nil, err
	}
	data, err := mem.Read(ptr+pgruntime.Datum(hdr.dataOff), hdr.payload)
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseDecode, "buffer payload", err)
	}
	return arena.NewOwned(arena.Current(h), ptr, data), nil
}

// ToString decodes a text buffer, validating UTF-8. The returned string is
// an independent copy and safe to keep.
func ToString(h pgruntime.Host, v Value) (string, error) {
	if v.null {
		return "", errors.Null(errors.PhaseDecode, "string")
	}
	b, err := ToBytes(h, v)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, b)
	}
	return string(b), nil
}

// FromBytes writes data into a fresh 4-byte-header buffer owned by the
// current region and returns the word pointing at it. Ownership of the
// storage transfers to the region.
func FromBytes(h pgruntime.Host, data []byte) Value {
	r := arena.Current(h)
	total := uint32(var4BHeaderSize + len(data))
	ptr := r.Alloc(total)

	mem := h.Mem()
	if err := mem.WriteU32(ptr, total<<2); err != nil {
		panic("pg-runtime: write to fresh region allocation failed: " + err.Error())
	}
	if len(data) > 0 {
		if err := mem.Write(ptr+var4BHeaderSize, data); err != nil {
			panic("pg-runtime: write to fresh region allocation failed: " + err.Error())
		}
	}
	return Value{word: ptr}
}

// FromString encodes text into the current region.
func FromString(h pgruntime.Host, s string) Value {
	return FromBytes(h, []byte(s))
}

// normalize runs the host's buffer-normalization routine under a guard; it
// can allocate from the current region and can signal.
func normalize(h pgruntime.Host, ptr pgruntime.Datum, copy bool) (pgruntime.Datum, error) {
	return guard.Run(h, func() (pgruntime.Datum, error) {
		return h.Detoast(ptr, copy), nil
	})
}
