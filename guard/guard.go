package guard

import (
	"fmt"
	"sync/atomic"

	pgruntime "github.com/wippyai/pg-runtime"
)

// HostSignal is a host non-local exit captured by Run. It must never be
// swallowed: either handle the aborted call and re-throw through
// host.Rethrow, or let it propagate out to Boundary, which does.
type HostSignal struct {
	Code pgruntime.JumpCode
}

func (e *HostSignal) Error() string {
	return fmt.Sprintf("host signal (jump code %d)", e.Code)
}

// GuestFault wraps an unexpected guest panic that crossed an entry point.
// Defensive: guest logic is expected to return errors instead.
type GuestFault struct {
	Value any
	Stack []byte
}

func (e *GuestFault) Error() string {
	return fmt.Sprintf("guest fault: %v", e.Value)
}

// targetSeq mints unique exception-target tokens.
var targetSeq atomic.Uint64

func newTarget() pgruntime.Target {
	return pgruntime.Target(targetSeq.Add(1))
}

// resumeFence is a full memory barrier issued when control resumes at an
// installed target. The host unwinds the stack behind the compiler's back,
// and reordering loads or stores around the resumption point is unsafe.
var fenceWord atomic.Uint64

func resumeFence() {
	fenceWord.Add(1)
}

// Run executes fn with a fresh exception target installed.
//
// On a normal return the previous target is restored and fn's result passed
// through. If the host performs a non-local exit while fn runs, control
// resumes here instead: the previous target is restored, a memory fence
// issued, and the exit surfaces as a *HostSignal error. A guest panic inside
// fn also restores the previous target before continuing to unwind.
//
// The previous target is restored exactly once on every path.
func Run[T any](h pgruntime.Host, fn func() (T, error)) (out T, err error) {
	prev := h.SwapTarget(newTarget())
	defer func() {
		h.SwapTarget(prev)
		r := recover()
		if r == nil {
			return
		}
		if sp, ok := r.(pgruntime.SignalPanic); ok {
			resumeFence()
			var zero T
			out, err = zero, &HostSignal{Code: sp.Code}
			return
		}
		panic(r)
	}()
	return fn()
}

// Do is Run for host calls with no result.
func Do(h pgruntime.Host, fn func() error) error {
	_, err := Run(h, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
