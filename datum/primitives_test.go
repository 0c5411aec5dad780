package datum_test

import (
	"errors"
	"math"
	"testing"

	"github.com/wippyai/pg-runtime/datum"
	pgerrors "github.com/wippyai/pg-runtime/errors"
)

func TestInt32RoundTrip(t *testing.T) {
	cases := []int32{0, 1, -1, 41, 2147483647, math.MinInt32}
	for _, want := range cases {
		got, err := datum.ToInt32(datum.FromInt32(want))
		if err != nil {
			t.Fatalf("ToInt32(%d): %v", want, err)
		}
		if got != want {
			t.Fatalf("got %d, want %d", got, want)
		}
	}
}

func TestInt16RoundTrip(t *testing.T) {
	cases := []int16{0, -1, math.MaxInt16, math.MinInt16}
	for _, want := range cases {
		got, err := datum.ToInt16(datum.FromInt16(want))
		if err != nil {
			t.Fatalf("ToInt16(%d): %v", want, err)
		}
		if got != want {
			t.Fatalf("got %d, want %d", got, want)
		}
	}
}

func TestInt64RoundTrip(t *testing.T) {
	cases := []int64{0, -1, math.MaxInt64, math.MinInt64}
	for _, want := range cases {
		got, err := datum.ToInt64(datum.FromInt64(want))
		if err != nil {
			t.Fatalf("ToInt64(%d): %v", want, err)
		}
		if got != want {
			t.Fatalf("got %d, want %d", got, want)
		}
	}
}

func TestFloatRoundTrips(t *testing.T) {
	f32 := []float32{0, -0, 1.5, math.MaxFloat32, float32(math.Inf(-1))}
	for _, want := range f32 {
		got, err := datum.ToFloat32(datum.FromFloat32(want))
		if err != nil {
			t.Fatalf("ToFloat32(%v): %v", want, err)
		}
		if got != want {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	f64 := []float64{0, 2.25, math.MaxFloat64, math.Inf(1)}
	for _, want := range f64 {
		got, err := datum.ToFloat64(datum.FromFloat64(want))
		if err != nil {
			t.Fatalf("ToFloat64(%v): %v", want, err)
		}
		if got != want {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFloatNaNSurvivesBitExact(t *testing.T) {
	// NaN payloads must pass through untouched; equality comparison would
	// hide payload corruption.
	want := math.Float64frombits(0x7FF8000000000001)
	got, err := datum.ToFloat64(datum.FromFloat64(want))
	if err != nil {
		t.Fatalf("ToFloat64: %v", err)
	}
	if math.Float64bits(got) != math.Float64bits(want) {
		t.Fatalf("NaN bits changed: got %#x, want %#x",
			math.Float64bits(got), math.Float64bits(want))
	}
}

func TestBoolRoundTrip(t *testing.T) {
	for _, want := range []bool{true, false} {
		got, err := datum.ToBool(datum.FromBool(want))
		if err != nil {
			t.Fatalf("ToBool(%v): %v", want, err)
		}
		if got != want {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestNullDecodesToError(t *testing.T) {
	decoders := map[string]func(datum.Value) error{
		"int16":   func(v datum.Value) error { _, err := datum.ToInt16(v); return err },
		"int32":   func(v datum.Value) error { _, err := datum.ToInt32(v); return err },
		"int64":   func(v datum.Value) error { _, err := datum.ToInt64(v); return err },
		"float32": func(v datum.Value) error { _, err := datum.ToFloat32(v); return err },
		"float64": func(v datum.Value) error { _, err := datum.ToFloat64(v); return err },
		"bool":    func(v datum.Value) error { _, err := datum.ToBool(v); return err },
	}
	for name, dec := range decoders {
		err := dec(datum.Null())
		if err == nil {
			t.Errorf("%s: decoded null without error", name)
			continue
		}
		var perr *pgerrors.Error
		if !errors.As(err, &perr) || perr.Kind != pgerrors.KindNull {
			t.Errorf("%s: got %v, want kind null", name, err)
		}
	}
}

func TestNullWordIsDropped(t *testing.T) {
	v := datum.FromRaw(0xDEADBEEF, true)
	if !v.IsNull() {
		t.Fatal("null flag lost")
	}
	if v.Word() != 0 {
		t.Fatalf("null value carries word %#x", v.Word())
	}
}

func TestOptionalRoundTrip(t *testing.T) {
	got, err := datum.ToOptional(datum.Null(), datum.ToInt32)
	if err != nil {
		t.Fatalf("ToOptional(null): %v", err)
	}
	if got != nil {
		t.Fatalf("got %v, want nil", *got)
	}

	got, err = datum.ToOptional(datum.FromInt32(41), datum.ToInt32)
	if err != nil {
		t.Fatalf("ToOptional(41): %v", err)
	}
	if got == nil || *got != 41 {
		t.Fatalf("got %v, want 41", got)
	}

	if v := datum.FromOptional(nil, datum.FromInt32); !v.IsNull() {
		t.Fatal("absent value did not encode to null")
	}
	n := int32(7)
	if v := datum.FromOptional(&n, datum.FromInt32); v.IsNull() {
		t.Fatal("present value encoded to null")
	}
}
