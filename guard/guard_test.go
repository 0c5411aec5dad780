package guard_test

import (
	"errors"
	"testing"

	pgruntime "github.com/wippyai/pg-runtime"
	pgerrors "github.com/wippyai/pg-runtime/errors"
	"github.com/wippyai/pg-runtime/guard"
	"github.com/wippyai/pg-runtime/hosttest"
)

func TestRunNormalReturn(t *testing.T) {
	e := hosttest.New()
	before := e.ActiveTarget()

	got, err := guard.Run(e, func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	if e.ActiveTarget() != before {
		t.Fatalf("target not restored: got %d, want %d", e.ActiveTarget(), before)
	}
	if e.TargetSwaps != 2 {
		t.Fatalf("got %d target swaps, want 2", e.TargetSwaps)
	}
}

func TestRunCapturesSignal(t *testing.T) {
	e := hosttest.New()
	before := e.ActiveTarget()

	_, err := guard.Run(e, func() (int, error) {
		e.Rethrow(7)
		return 0, nil
	})

	var sig *guard.HostSignal
	if !errors.As(err, &sig) {
		t.Fatalf("got %v, want *HostSignal", err)
	}
	if sig.Code != 7 {
		t.Fatalf("got jump code %d, want 7", sig.Code)
	}
	if e.ActiveTarget() != before {
		t.Fatalf("target not restored after signal")
	}
}

func TestRunNestedRestoresEachLevel(t *testing.T) {
	e := hosttest.New()
	before := e.ActiveTarget()

	err := guard.Do(e, func() error {
		outer := e.ActiveTarget()
		inner := guard.Do(e, func() error {
			e.Rethrow(3)
			return nil
		})
		var sig *guard.HostSignal
		if !errors.As(inner, &sig) {
			t.Fatalf("inner: got %v, want *HostSignal", inner)
		}
		if e.ActiveTarget() != outer {
			t.Fatalf("outer target not restored after inner signal")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if e.ActiveTarget() != before {
		t.Fatalf("target not restored at top level")
	}
	// Two scopes, one install and one restore each.
	if e.TargetSwaps != 4 {
		t.Fatalf("got %d target swaps, want 4", e.TargetSwaps)
	}
}

func TestRunPassesGuestPanicThrough(t *testing.T) {
	e := hosttest.New()
	before := e.ActiveTarget()

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Fatalf("got panic %v, want boom", r)
			}
		}()
		guard.Do(e, func() error {
			panic("boom")
		})
	}()

	if e.ActiveTarget() != before {
		t.Fatalf("target not restored on the panic path")
	}
}

// recoverSignal runs fn and returns the signal panic it unwinds with.
func recoverSignal(t *testing.T, fn func()) pgruntime.SignalPanic {
	t.Helper()
	var sp pgruntime.SignalPanic
	caught := false
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			var ok bool
			sp, ok = r.(pgruntime.SignalPanic)
			if !ok {
				panic(r)
			}
			caught = true
		}()
		fn()
	}()
	if !caught {
		t.Fatalf("expected a signal to unwind")
	}
	return sp
}

func TestBoundaryNormalReturn(t *testing.T) {
	e := hosttest.New()
	ran := false
	guard.Boundary(e, func() error {
		ran = true
		return nil
	})
	if !ran {
		t.Fatal("boundary did not run the function")
	}
	if len(e.Log) != 0 {
		t.Fatalf("unexpected reports: %v", e.Log)
	}
}

func TestBoundaryRethrowsHostSignal(t *testing.T) {
	e := hosttest.New()
	sp := recoverSignal(t, func() {
		guard.Boundary(e, func() error {
			return guard.Do(e, func() error {
				e.Rethrow(9)
				return nil
			})
		})
	})
	if sp.Code != 9 {
		t.Fatalf("got jump code %d, want 9", sp.Code)
	}
	// A rethrown signal is not a new report.
	if len(e.Log) != 0 {
		t.Fatalf("unexpected reports: %v", e.Log)
	}
}

func TestBoundaryReportsGuestError(t *testing.T) {
	e := hosttest.New()
	recoverSignal(t, func() {
		guard.Boundary(e, func() error {
			return pgerrors.InvalidInput(pgerrors.PhaseCall, "bad argument")
		})
	})
	rec, ok := e.LastRecord()
	if !ok {
		t.Fatal("no report recorded")
	}
	if rec.Severity != pgruntime.SevError {
		t.Fatalf("got severity %v, want error", rec.Severity)
	}
}

func TestBoundaryReportsGuestPanic(t *testing.T) {
	e := hosttest.New()
	recoverSignal(t, func() {
		guard.Boundary(e, func() error {
			panic("unexpected guest state")
		})
	})
	rec, ok := e.LastRecord()
	if !ok {
		t.Fatal("no report recorded")
	}
	if rec.Severity != pgruntime.SevError {
		t.Fatalf("got severity %v, want error", rec.Severity)
	}
}
