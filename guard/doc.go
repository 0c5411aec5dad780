// Package guard bridges the host's non-local-exit error mechanism with Go
// unwinding.
//
// Host routines that fail do not return: they transfer control to the
// current exception target, unwinding any guest frames in between with no
// defined cleanup. Run fences that off by installing a fresh target around a
// closure and converting a host exit into an ordinary *HostSignal error at
// exactly one boundary.
//
// Every call into a host routine capable of signaling must go through Run.
// Entry points the host invokes wrap their whole body in Boundary, which
// re-throws pending host signals and reports any other failure to the host
// at Error severity.
package guard
