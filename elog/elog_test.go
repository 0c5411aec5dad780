package elog_test

import (
	"errors"
	"strings"
	"testing"

	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/elog"
	"github.com/wippyai/pg-runtime/guard"
	"github.com/wippyai/pg-runtime/hosttest"
)

func TestSeverityOrdering(t *testing.T) {
	cases := []struct {
		sev  pgruntime.Severity
		want int32
	}{
		{elog.Debug5, 10},
		{elog.Debug4, 11},
		{elog.Debug3, 12},
		{elog.Debug2, 13},
		{elog.Debug1, 14},
		{elog.Log, 15},
		{pgruntime.SevLogServerOnly, 16},
		{elog.Info, 17},
		{elog.Notice, 18},
		{elog.Warning, 19},
		{elog.Error, 20},
		{elog.Fatal, 21},
		{elog.Panic, 22},
	}
	for _, c := range cases {
		if int32(c.sev) != c.want {
			t.Errorf("%v = %d, want %d", c.sev, int32(c.sev), c.want)
		}
	}
}

func TestWarningRecordsAndReturns(t *testing.T) {
	e := hosttest.New()
	if err := elog.Warningf(e, "field %q missing", "name"); err != nil {
		t.Fatalf("Warningf: %v", err)
	}
	rec, ok := e.LastRecord()
	if !ok {
		t.Fatal("no record")
	}
	if rec.Severity != pgruntime.SevWarning {
		t.Fatalf("severity = %v, want warning", rec.Severity)
	}
	if rec.Message != `field "name" missing` {
		t.Fatalf("message = %q", rec.Message)
	}
	if !strings.Contains(rec.File, "elog_test.go") {
		t.Fatalf("caller file = %q, want the test file", rec.File)
	}
}

func TestErrorReturnsHostSignal(t *testing.T) {
	e := hosttest.New()
	err := elog.Errorf(e, "bad input")

	var sig *guard.HostSignal
	if !errors.As(err, &sig) {
		t.Fatalf("got %v, want *HostSignal", err)
	}
	rec, ok := e.LastRecord()
	if !ok || rec.Severity != pgruntime.SevError {
		t.Fatalf("error report not recorded: %v", e.Log)
	}
}

func TestFatalReturnsHostSignal(t *testing.T) {
	e := hosttest.New()
	err := elog.Fatalf(e, "backend going down")
	var sig *guard.HostSignal
	if !errors.As(err, &sig) {
		t.Fatalf("got %v, want *HostSignal", err)
	}
}

func TestSuppressedLevelSkipsFormatting(t *testing.T) {
	e := hosttest.New()
	e.MinLevel = pgruntime.SevWarning

	if err := elog.Infof(e, "noisy detail"); err != nil {
		t.Fatalf("Infof: %v", err)
	}
	if len(e.Log) != 0 {
		t.Fatalf("suppressed level recorded: %v", e.Log)
	}

	if err := elog.Warningf(e, "kept"); err != nil {
		t.Fatalf("Warningf: %v", err)
	}
	if len(e.Log) != 1 {
		t.Fatalf("got %d records, want 1", len(e.Log))
	}
}

func TestEmitPreformatted(t *testing.T) {
	e := hosttest.New()
	if err := elog.Emit(e, elog.Notice, "100% done"); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	rec, _ := e.LastRecord()
	if rec.Message != "100% done" {
		t.Fatalf("message = %q, format directives not escaped", rec.Message)
	}
}
