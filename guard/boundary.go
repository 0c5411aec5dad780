package guard

import (
	"errors"
	"runtime/debug"

	"go.uber.org/zap"

	pgruntime "github.com/wippyai/pg-runtime"
)

// Boundary is the process-global unwind handler, installed at every entry
// point the host can invoke. It runs fn and disposes of whatever escapes:
//
//   - nil: the entry point completed; return to the host normally.
//   - *HostSignal (or a stray SignalPanic): re-issue the host's non-local
//     exit with the same jump code, so nested guarded scopes propagate
//     outward.
//   - anything else: report to the host at Error severity, which itself
//     performs a non-local exit.
//
// Boundary therefore never returns normally unless fn succeeded. Returning
// to the host after an unhandled failure would leave it running in an
// undefined state, which is a fatal bridge defect.
func Boundary(h pgruntime.Host, fn func() error) {
	err := protect(fn)
	if err == nil {
		return
	}

	var sig *HostSignal
	if errors.As(err, &sig) {
		pgruntime.Logger().Debug("rethrowing host signal at boundary",
			zap.Int32("code", int32(sig.Code)))
		h.Rethrow(sig.Code)
		panic("pg-runtime: host Rethrow returned")
	}

	// Unexpected guest failure: hand it to the host's error channel. The
	// report entry points can themselves signal, so they run guarded; the
	// Error severity guarantees the resulting signal.
	reportErr := Do(h, func() error {
		if h.ErrorStart(pgruntime.SevError, "guard/boundary.go", 0, "Boundary") {
			h.ErrorFinish(err.Error())
		}
		return nil
	})
	if errors.As(reportErr, &sig) {
		h.Rethrow(sig.Code)
	}
	panic("pg-runtime: error report at boundary returned normally")
}

// protect converts panics escaping fn into errors: host signals stay typed,
// anything else becomes a GuestFault with the captured stack.
func protect(fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if sp, ok := r.(pgruntime.SignalPanic); ok {
			resumeFence()
			err = &HostSignal{Code: sp.Code}
			return
		}
		err = &GuestFault{Value: r, Stack: debug.Stack()}
	}()
	return fn()
}
