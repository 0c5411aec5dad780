package datum

import (
	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/errors"
)

// VarLayout identifies one of the four recognized variable-length header
// layouts. The layout is encoded in the low bits of the first header byte.
type VarLayout uint8

const (
	// Var4BUncompressed is a 4-byte header followed by inline payload.
	Var4BUncompressed VarLayout = iota
	// Var4BCompressed is a 4-byte header followed by compressed payload.
	Var4BCompressed
	// Var1BShort is a 1-byte header followed by up to 126 payload bytes.
	Var1BShort
	// Var1BOutOfLine is a 1-byte tag for payload stored out of line; the
	// host's normalization routine is the only way to read it.
	Var1BOutOfLine
)

const (
	var4BHeaderSize = 4
	var1BHeaderSize = 1

	// Length fields: 4-byte headers keep the total size shifted left twice,
	// 1-byte headers shifted once.
	var4BLenMask = 0x3FFFFFFF
	var1BLenMask = 0x7F
)

type varHeader struct {
	layout  VarLayout
	payload uint32 // bytes after the header; meaningless for out-of-line
	dataOff uint32
}

// decodeVarHeader classifies a buffer header and decodes its payload length.
// The total length stored in the header includes the header itself, so the
// header size is subtracted out.
func decodeVarHeader(mem pgruntime.Memory, ptr pgruntime.Datum) (varHeader, error) {
	b0, err := mem.ReadU8(ptr)
	if err != nil {
		return varHeader{}, errors.OutOfBounds(errors.PhaseDecode, "buffer header", err)
	}

	switch {
	case b0 == 0x01:
		// 1-byte tag, payload out of line.
		return varHeader{layout: Var1BOutOfLine}, nil

	case b0&0x01 == 0x00:
		// 4-byte header; bit 1 distinguishes compressed from plain.
		hdr, err := mem.ReadU32(ptr)
		if err != nil {
			return varHeader{}, errors.OutOfBounds(errors.PhaseDecode, "buffer header", err)
		}
		total := (hdr >> 2) & var4BLenMask
		if total < var4BHeaderSize {
			return varHeader{}, errors.InvalidEncoding(errors.PhaseDecode,
				"4-byte header claims total length %d, smaller than the header itself", total)
		}
		layout := Var4BUncompressed
		if b0&0x03 == 0x02 {
			layout = Var4BCompressed
		}
		return varHeader{layout: layout, payload: total - var4BHeaderSize, dataOff: var4BHeaderSize}, nil

	default:
		// 1-byte header, short inline payload.
		total := uint32(b0>>1) & var1BLenMask
		if total < var1BHeaderSize {
			return varHeader{}, errors.InvalidEncoding(errors.PhaseDecode,
				"1-byte header claims total length %d, smaller than the header itself", total)
		}
		return varHeader{layout: Var1BShort, payload: total - var1BHeaderSize, dataOff: var1BHeaderSize}, nil
	}
}

// needsNormalize reports whether the payload cannot be read in place.
func (h varHeader) needsNormalize() bool {
	return h.layout == Var4BCompressed || h.layout == Var1BOutOfLine
}
