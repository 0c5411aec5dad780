package arena_test

import (
	"testing"

	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/arena"
	"github.com/wippyai/pg-runtime/guard"
	"github.com/wippyai/pg-runtime/hosttest"
)

func TestAllocChargesRegion(t *testing.T) {
	e := hosttest.New()
	r := arena.Current(e)

	ptr := r.Alloc(16)
	if ptr == 0 {
		t.Fatal("allocation returned the null word")
	}
	if got := e.Live(r.ID()); got != 1 {
		t.Fatalf("got %d live allocations, want 1", got)
	}

	r.Free(ptr)
	if got := e.Live(r.ID()); got != 0 {
		t.Fatalf("got %d live allocations after free, want 0", got)
	}
}

func TestAllocZeroClears(t *testing.T) {
	e := hosttest.New()
	ptr := arena.Current(e).AllocZero(8)

	b, err := e.Mem().Read(ptr, 8)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, v)
		}
	}
}

func TestChildRegionLifecycle(t *testing.T) {
	e := hosttest.New()
	child := arena.Statement(e).Child("scan batch", pgruntime.DefaultSizing)

	child.Alloc(8)
	child.Alloc(8)
	if got := e.Live(child.ID()); got != 2 {
		t.Fatalf("got %d live allocations, want 2", got)
	}

	if err := child.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got := e.Live(child.ID()); got != 0 {
		t.Fatalf("got %d live allocations after reset, want 0", got)
	}

	if err := child.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestPermanentRegionsAreReadOnly(t *testing.T) {
	e := hosttest.New()
	regions := map[string]*arena.Region{
		"top":         arena.Top(e),
		"statement":   arena.Statement(e),
		"error":       arena.ErrorRecovery(e),
		"cache":       arena.Cache(e),
		"transaction": arena.Transaction(e),
	}
	for name, r := range regions {
		if err := r.Reset(); err == nil {
			t.Errorf("%s: Reset succeeded, want rejection", name)
		}
		if err := r.ResetOnly(); err == nil {
			t.Errorf("%s: ResetOnly succeeded, want rejection", name)
		}
		if err := r.Delete(); err == nil {
			t.Errorf("%s: Delete succeeded, want rejection", name)
		}
	}
}

func TestCurrentRefusesToResetPermanentRegion(t *testing.T) {
	e := hosttest.New()

	// The engine starts with the statement region current; the handle from
	// Current must enforce the same read-only protection as Statement.
	cur := arena.Current(e)
	if cur.ID() != arena.Statement(e).ID() {
		t.Fatalf("current region %d, want the statement region", cur.ID())
	}
	if err := cur.Reset(); err == nil {
		t.Error("Reset succeeded on the current permanent region, want rejection")
	}
	if err := cur.ResetOnly(); err == nil {
		t.Error("ResetOnly succeeded on the current permanent region, want rejection")
	}
	if err := cur.Delete(); err == nil {
		t.Error("Delete succeeded on the current permanent region, want rejection")
	}

	// A plain child adopted as current stays deletable.
	child := arena.Statement(e).Child("batch", pgruntime.DefaultSizing)
	err := child.With(func() error {
		if err := arena.Current(e).Reset(); err != nil {
			t.Errorf("Reset on a current child region: %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}
}

func TestWithRestoresCurrent(t *testing.T) {
	e := hosttest.New()
	before := e.CurrentRegion()
	child := arena.Statement(e).Child("batch", pgruntime.DefaultSizing)

	err := child.With(func() error {
		if e.CurrentRegion() != child.ID() {
			t.Fatalf("current region not switched")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if e.CurrentRegion() != before {
		t.Fatalf("current region not restored")
	}
}

func TestWithRestoresCurrentOnSignal(t *testing.T) {
	e := hosttest.New()
	before := e.CurrentRegion()
	child := arena.Statement(e).Child("batch", pgruntime.DefaultSizing)

	err := guard.Do(e, func() error {
		return child.With(func() error {
			e.Rethrow(5)
			return nil
		})
	})
	if err == nil {
		t.Fatal("expected the captured signal")
	}
	if e.CurrentRegion() != before {
		t.Fatalf("current region not restored after signal")
	}
}

func TestOwnedReleasesOnce(t *testing.T) {
	e := hosttest.New()
	r := arena.Current(e)
	ptr := r.Alloc(8)

	o := arena.NewOwned(r, ptr, []byte("payload"))
	if o.Released() {
		t.Fatal("fresh handle reports released")
	}

	o.Release()
	if !o.Released() {
		t.Fatal("handle not marked released")
	}
	if got := e.Live(r.ID()); got != 0 {
		t.Fatalf("got %d live allocations, want 0", got)
	}

	// A second release must not reach the host again; the test engine
	// panics on a double free.
	o.Release()
}
