// Package elog emits messages through the host's logging system.
//
// Severities follow the host's ordering: the Debug levels below Log, then
// Info, Notice, Warning, Error, Fatal, Panic. Error and above abort the
// current statement by triggering a non-local exit once the message is
// recorded, so Errorf and Fatalf return the resulting *HostSignal and the
// caller is expected to propagate it.
//
// Emission itself runs inside guarded calls: the host's report-start routine
// can signal (for example while the error region is under pressure), and an
// unguarded signal would unwind through guest frames.
package elog

import (
	"fmt"
	"runtime"

	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/guard"
)

// Level is a host severity.
type Level = pgruntime.Severity

const (
	Debug5  = pgruntime.SevDebug5
	Debug4  = pgruntime.SevDebug4
	Debug3  = pgruntime.SevDebug3
	Debug2  = pgruntime.SevDebug2
	Debug1  = pgruntime.SevDebug1
	Log     = pgruntime.SevLog
	Info    = pgruntime.SevInfo
	Notice  = pgruntime.SevNotice
	Warning = pgruntime.SevWarning
	Error   = pgruntime.SevError
	Fatal   = pgruntime.SevFatal
	Panic   = pgruntime.SevPanic
)

// Emit reports a preformatted message at the given severity. For Error and
// above the returned error is the host signal produced by the report; for
// lower severities a non-nil return is the rare case of the host signaling
// from inside its own log-start routine.
func Emit(h pgruntime.Host, lvl Level, msg string) error {
	return emit(h, lvl, 3, "%s", msg)
}

// Debugf logs at the lowest visible debug detail level.
func Debugf(h pgruntime.Host, format string, args ...any) error {
	return emit(h, Debug1, 3, format, args...)
}

// Logf logs an operational message: high precedence for the server log, low
// for the client.
func Logf(h pgruntime.Host, format string, args ...any) error {
	return emit(h, Log, 3, format, args...)
}

// Infof logs information specifically requested by the user.
func Infof(h pgruntime.Host, format string, args ...any) error {
	return emit(h, Info, 3, format, args...)
}

// Noticef logs a helpful message about query operation.
func Noticef(h pgruntime.Host, format string, args ...any) error {
	return emit(h, Notice, 3, format, args...)
}

// Warningf logs an unexpected but non-fatal condition.
func Warningf(h pgruntime.Host, format string, args ...any) error {
	return emit(h, Warning, 3, format, args...)
}

// Errorf reports a user error. The host aborts the current statement and
// transaction; the returned *HostSignal must be propagated, not swallowed.
func Errorf(h pgruntime.Host, format string, args ...any) error {
	return emit(h, Error, 3, format, args...)
}

// Fatalf reports an error that takes down the whole backend connection.
func Fatalf(h pgruntime.Host, format string, args ...any) error {
	return emit(h, Fatal, 3, format, args...)
}

func emit(h pgruntime.Host, lvl Level, depth int, format string, args ...any) error {
	file, line, fn := caller(depth)

	start, err := guard.Run(h, func() (bool, error) {
		return h.ErrorStart(lvl, file, line, fn), nil
	})
	if err != nil {
		return err
	}
	// A false start means nobody would see the message; skip formatting.
	if !start {
		return nil
	}

	msg := fmt.Sprintf(format, args...)
	return guard.Do(h, func() error {
		h.ErrorFinish(msg)
		return nil
	})
}

func caller(depth int) (file string, line int, fn string) {
	pc, file, line, ok := runtime.Caller(depth)
	if !ok {
		return "unknown", 0, "unknown"
	}
	if f := runtime.FuncForPC(pc); f != nil {
		fn = f.Name()
	}
	return file, line, fn
}
