package datum_test

import (
	"errors"
	"testing"

	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/datum"
	pgerrors "github.com/wippyai/pg-runtime/errors"
	"github.com/wippyai/pg-runtime/hosttest"
)

func TestInt32ArrayDecode(t *testing.T) {
	e := hosttest.New()
	ptr := e.MakeInt32Array([]int32{1, 2, 3})

	a, err := datum.ToArray(e, datum.FromRaw(ptr, false))
	if err != nil {
		t.Fatalf("ToArray: %v", err)
	}
	if a.ElemType != pgruntime.OidInt4 {
		t.Fatalf("element type = %d, want int4", a.ElemType)
	}
	if a.Len() != 3 || a.HasNulls() {
		t.Fatalf("len = %d, hasNulls = %v", a.Len(), a.HasNulls())
	}

	got, err := a.Int32s()
	if err != nil {
		t.Fatalf("Int32s: %v", err)
	}
	for i, want := range []int32{1, 2, 3} {
		if got[i] != want {
			t.Fatalf("element %d = %d, want %d", i, got[i], want)
		}
	}
}

func TestInt32ArrayElements(t *testing.T) {
	e := hosttest.New()
	ptr := e.MakeInt32Array([]int32{-7, 2147483647})

	a, err := datum.ToArray(e, datum.FromRaw(ptr, false))
	if err != nil {
		t.Fatalf("ToArray: %v", err)
	}
	first, err := datum.ToInt32(a.Value(0))
	if err != nil {
		t.Fatalf("ToInt32: %v", err)
	}
	if first != -7 {
		t.Fatalf("element 0 = %d, want -7", first)
	}
	second, err := datum.ToInt32(a.Value(1))
	if err != nil {
		t.Fatalf("ToInt32: %v", err)
	}
	if second != 2147483647 {
		t.Fatalf("element 1 = %d, want 2147483647", second)
	}
}

func TestArrayWithNulls(t *testing.T) {
	e := hosttest.New()
	ptr := e.MakeInt32ArrayNulls([]int32{10, 0, 30}, []bool{false, true, false})

	a, err := datum.ToArray(e, datum.FromRaw(ptr, false))
	if err != nil {
		t.Fatalf("ToArray: %v", err)
	}
	if !a.HasNulls() {
		t.Fatal("null bitmap lost")
	}
	if !a.Value(1).IsNull() {
		t.Fatal("element 1 should be null")
	}
	for i, want := range []int32{10, 30} {
		idx := i * 2 // elements 0 and 2
		got, err := datum.ToInt32(a.Value(idx))
		if err != nil {
			t.Fatalf("ToInt32(%d): %v", idx, err)
		}
		if got != want {
			t.Fatalf("element %d = %d, want %d", idx, got, want)
		}
	}

	// The flat view is unsound with null elements present.
	if _, err := a.Int32s(); err == nil {
		t.Fatal("Int32s succeeded on an array with nulls")
	}
}

func TestFloat64ArrayDecode(t *testing.T) {
	e := hosttest.New()
	ptr := e.MakeFloat64Array([]float64{1.5, -2.25})

	a, err := datum.ToArray(e, datum.FromRaw(ptr, false))
	if err != nil {
		t.Fatalf("ToArray: %v", err)
	}
	got, err := a.Float64s()
	if err != nil {
		t.Fatalf("Float64s: %v", err)
	}
	if got[0] != 1.5 || got[1] != -2.25 {
		t.Fatalf("got %v, want [1.5 -2.25]", got)
	}
}

func TestMultiDimensionalArrayRejected(t *testing.T) {
	e := hosttest.New()
	ptr := e.MakeArray2D(2, 3)

	_, err := datum.ToArray(e, datum.FromRaw(ptr, false))
	var perr *pgerrors.Error
	if !errors.As(err, &perr) || perr.Kind != pgerrors.KindUnsupportedDim {
		t.Fatalf("got %v, want kind unsupported_dimensionality", err)
	}
}

func TestTypedViewRejectsWrongElemType(t *testing.T) {
	e := hosttest.New()
	ptr := e.MakeInt32Array([]int32{1})

	a, err := datum.ToArray(e, datum.FromRaw(ptr, false))
	if err != nil {
		t.Fatalf("ToArray: %v", err)
	}
	if _, err := a.Int64s(); err == nil {
		t.Fatal("Int64s succeeded on an int4 array")
	}
}

func TestArrayNull(t *testing.T) {
	e := hosttest.New()
	if _, err := datum.ToArray(e, datum.Null()); err == nil {
		t.Fatal("decoded null without error")
	}
}

func TestArrayNormalizationBufferReleased(t *testing.T) {
	e := hosttest.New()

	// Build a plain array, then wrap its bytes in the compressed form so
	// decoding requires a normalization allocation.
	plain := e.MakeInt32Array([]int32{5, 6})
	hdr, err := e.Mem().ReadU32(plain)
	if err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	total := hdr >> 2
	raw, err := e.Mem().Read(plain+4, total-4)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	ptr := e.MakeCompressed(raw)

	region := e.CurrentRegion()
	liveBefore := e.Live(region)

	a, err := datum.ToArray(e, datum.FromRaw(ptr, false))
	if err != nil {
		t.Fatalf("ToArray: %v", err)
	}
	got, err := a.Int32s()
	if err != nil {
		t.Fatalf("Int32s: %v", err)
	}
	if got[0] != 5 || got[1] != 6 {
		t.Fatalf("got %v, want [5 6]", got)
	}
	if live := e.Live(region); live != liveBefore {
		t.Fatalf("normalization buffer leaked: %d live, want %d", live, liveBefore)
	}
}

func TestTextArrayKeepsNormalizationBufferAlive(t *testing.T) {
	e := hosttest.New()

	// Compress a text array so decoding allocates a normalization buffer.
	// The element words point into that buffer, so it must stay live until
	// the array is released.
	plain := e.MakeTextArray([]string{"hi", "there"})
	hdr, err := e.Mem().ReadU32(plain)
	if err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	total := hdr >> 2
	raw, err := e.Mem().Read(plain+4, total-4)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	ptr := e.MakeCompressed(raw)

	region := e.CurrentRegion()
	liveBefore := e.Live(region)

	a, err := datum.ToArray(e, datum.FromRaw(ptr, false))
	if err != nil {
		t.Fatalf("ToArray: %v", err)
	}
	if live := e.Live(region); live != liveBefore+1 {
		t.Fatalf("%d live allocations after decode, want %d", live, liveBefore+1)
	}
	for i, want := range []string{"hi", "there"} {
		got, err := datum.ToString(e, a.Value(i))
		if err != nil {
			t.Fatalf("ToString(%d): %v", i, err)
		}
		if got != want {
			t.Fatalf("element %d = %q, want %q", i, got, want)
		}
	}

	a.Release()
	if live := e.Live(region); live != liveBefore {
		t.Fatalf("%d live allocations after release, want %d", live, liveBefore)
	}
	a.Release() // second release must not reach the host
}

func TestTextArrayBorrowedNeedsNoRelease(t *testing.T) {
	e := hosttest.New()
	ptr := e.MakeTextArray([]string{"plain"})

	region := e.CurrentRegion()
	liveBefore := e.Live(region)

	a, err := datum.ToArray(e, datum.FromRaw(ptr, false))
	if err != nil {
		t.Fatalf("ToArray: %v", err)
	}
	got, err := datum.ToString(e, a.Value(0))
	if err != nil {
		t.Fatalf("ToString: %v", err)
	}
	if got != "plain" {
		t.Fatalf("element 0 = %q, want %q", got, "plain")
	}

	// Already-addressable input: nothing was allocated, nothing to free.
	a.Release()
	if live := e.Live(region); live != liveBefore {
		t.Fatalf("%d live allocations, want %d", live, liveBefore)
	}
}
