// Package fcall adapts plain Go functions to the host's function-call
// convention. The host passes arguments as raw words plus null flags; the
// wrappers in this package decode them into typed values, run the function
// inside an exception boundary and encode the result back.
package fcall

import (
	"fmt"

	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/datum"
	"github.com/wippyai/pg-runtime/errors"
	"github.com/wippyai/pg-runtime/guard"
)

// CallInfo is the host-provided description of one function invocation.
type CallInfo struct {
	Args  []pgruntime.Datum
	Nulls []bool

	// ReturnNull is set by the wrapper when the call produces SQL null.
	ReturnNull bool
}

// NArgs returns the number of arguments passed by the caller.
func (fc *CallInfo) NArgs() int { return len(fc.Args) }

// Arg returns argument i as a value carrying its null flag.
func (fc *CallInfo) Arg(i int) datum.Value {
	return datum.FromRaw(fc.Args[i], fc.Nulls[i])
}

// Decoder converts one raw argument into a typed Go value.
type Decoder[T any] func(datum.Value) (T, error)

// Encoder converts a function result back into the host representation.
// Encoders that allocate do so in the current memory region.
type Encoder[T any] func(h pgruntime.Host, v T) (datum.Value, error)

// Wrap0 runs a zero-argument function for the host. Errors abort the
// statement through the exception boundary.
func Wrap0[R any](h pgruntime.Host, fc *CallInfo, enc Encoder[R], fn func() (R, error)) (out pgruntime.Datum) {
	guard.Boundary(h, func() error {
		r, err := fn()
		if err != nil {
			return err
		}
		return encodeResult(h, fc, enc, r, &out)
	})
	return out
}

// Wrap1 runs a one-argument function for the host.
func Wrap1[A, R any](h pgruntime.Host, fc *CallInfo, dec Decoder[A], enc Encoder[R], fn func(A) (R, error)) (out pgruntime.Datum) {
	guard.Boundary(h, func() error {
		a, err := decodeArg(fc, 0, dec)
		if err != nil {
			return err
		}
		r, err := fn(a)
		if err != nil {
			return err
		}
		return encodeResult(h, fc, enc, r, &out)
	})
	return out
}

// Wrap2 runs a two-argument function for the host.
func Wrap2[A, B, R any](h pgruntime.Host, fc *CallInfo, decA Decoder[A], decB Decoder[B], enc Encoder[R], fn func(A, B) (R, error)) (out pgruntime.Datum) {
	guard.Boundary(h, func() error {
		a, err := decodeArg(fc, 0, decA)
		if err != nil {
			return err
		}
		b, err := decodeArg(fc, 1, decB)
		if err != nil {
			return err
		}
		r, err := fn(a, b)
		if err != nil {
			return err
		}
		return encodeResult(h, fc, enc, r, &out)
	})
	return out
}

func decodeArg[T any](fc *CallInfo, i int, dec Decoder[T]) (T, error) {
	if i >= fc.NArgs() {
		var zero T
		return zero, errors.OutOfBounds(errors.PhaseCall,
			fmt.Sprintf("argument %d requested but only %d passed", i, fc.NArgs()), nil)
	}
	v, err := dec(fc.Arg(i))
	if err != nil {
		var zero T
		return zero, errors.Wrap(errors.PhaseCall, errors.KindTypeMismatch, err,
			fmt.Sprintf("argument %d", i))
	}
	return v, nil
}

func encodeResult[R any](h pgruntime.Host, fc *CallInfo, enc Encoder[R], r R, out *pgruntime.Datum) error {
	v, err := enc(h, r)
	if err != nil {
		return errors.Wrap(errors.PhaseCall, errors.KindTypeMismatch, err, "return value")
	}
	if v.IsNull() {
		fc.ReturnNull = true
		return nil
	}
	*out = v.Word()
	return nil
}
