package datum

import (
	"math"
	"unsafe"

	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/errors"
)

// The word must accommodate 64-bit values for the pass-by-value conversions
// below to be bit-exact. Compile-time check: negative array length otherwise.
var _ [unsafe.Sizeof(pgruntime.Datum(0)) - 8]byte

// FromInt16 encodes a 16-bit integer into the word's low bits.
func FromInt16(v int16) Value {
	return Value{word: pgruntime.Datum(uint16(v))}
}

// ToInt16 reinterprets the word's low 16 bits.
func ToInt16(v Value) (int16, error) {
	if v.null {
		return 0, errors.Null(errors.PhaseDecode, "int16")
	}
	return int16(uint16(v.word)), nil
}

// FromInt32 encodes a 32-bit integer into the word's low bits.
func FromInt32(v int32) Value {
	return Value{word: pgruntime.Datum(uint32(v))}
}

// ToInt32 reinterprets the word's low 32 bits.
func ToInt32(v Value) (int32, error) {
	if v.null {
		return 0, errors.Null(errors.PhaseDecode, "int32")
	}
	return int32(uint32(v.word)), nil
}

// FromInt64 encodes a 64-bit integer into the word.
func FromInt64(v int64) Value {
	return Value{word: pgruntime.Datum(uint64(v))}
}

// ToInt64 reinterprets the whole word.
func ToInt64(v Value) (int64, error) {
	if v.null {
		return 0, errors.Null(errors.PhaseDecode, "int64")
	}
	return int64(v.word), nil
}

// FromFloat32 encodes the IEEE-754 bits, not a numeric cast.
func FromFloat32(v float32) Value {
	return Value{word: pgruntime.Datum(math.Float32bits(v))}
}

// ToFloat32 reinterprets the word's low 32 bits as IEEE-754.
func ToFloat32(v Value) (float32, error) {
	if v.null {
		return 0, errors.Null(errors.PhaseDecode, "float32")
	}
	return math.Float32frombits(uint32(v.word)), nil
}

// FromFloat64 encodes the IEEE-754 bits, not a numeric cast.
func FromFloat64(v float64) Value {
	return Value{word: pgruntime.Datum(math.Float64bits(v))}
}

// ToFloat64 reinterprets the whole word as IEEE-754.
func ToFloat64(v Value) (float64, error) {
	if v.null {
		return 0, errors.Null(errors.PhaseDecode, "float64")
	}
	return math.Float64frombits(uint64(v.word)), nil
}

// FromBool encodes a boolean as 0 or 1.
func FromBool(v bool) Value {
	if v {
		return Value{word: 1}
	}
	return Value{word: 0}
}

// ToBool decodes a boolean word.
func ToBool(v Value) (bool, error) {
	if v.null {
		return false, errors.Null(errors.PhaseDecode, "bool")
	}
	return v.word != 0, nil
}
