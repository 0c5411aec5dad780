package fcall

import (
	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/datum"
)

// Pure lifts a conversion with no host dependency into an Encoder.
func Pure[T any](f func(T) datum.Value) Encoder[T] {
	return func(_ pgruntime.Host, v T) (datum.Value, error) {
		return f(v), nil
	}
}

// Common encoders. Text and Bytes allocate in the current memory region.
var (
	Int16Result   = Pure(datum.FromInt16)
	Int32Result   = Pure(datum.FromInt32)
	Int64Result   = Pure(datum.FromInt64)
	Float32Result = Pure(datum.FromFloat32)
	Float64Result = Pure(datum.FromFloat64)
	BoolResult    = Pure(datum.FromBool)
)

// TextResult encodes a string return value.
func TextResult(h pgruntime.Host, s string) (datum.Value, error) {
	return datum.FromString(h, s), nil
}

// BytesResult encodes a byte-slice return value.
func BytesResult(h pgruntime.Host, b []byte) (datum.Value, error) {
	return datum.FromBytes(h, b), nil
}

// OptionalResult lifts an encoder over pointers, mapping nil to SQL null.
func OptionalResult[T any](enc Encoder[T]) Encoder[*T] {
	return func(h pgruntime.Host, v *T) (datum.Value, error) {
		if v == nil {
			return datum.Null(), nil
		}
		return enc(h, *v)
	}
}

// TextArg decodes a text argument. The borrowed bytes are copied, so the
// string stays valid past the call.
func TextArg(h pgruntime.Host) Decoder[string] {
	return func(v datum.Value) (string, error) {
		return datum.ToString(h, v)
	}
}

// BytesArg decodes a bytea argument as a borrowed view of host memory.
func BytesArg(h pgruntime.Host) Decoder[[]byte] {
	return func(v datum.Value) ([]byte, error) {
		return datum.ToBytes(h, v)
	}
}

// OptionalArg lifts a decoder over pointers, mapping SQL null to nil.
func OptionalArg[T any](dec Decoder[T]) Decoder[*T] {
	return func(v datum.Value) (*T, error) {
		return datum.ToOptional(v, dec)
	}
}
