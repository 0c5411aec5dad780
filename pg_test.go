package pgruntime_test

import (
	"testing"

	pgruntime "github.com/wippyai/pg-runtime"
)

func TestMagicBlockValues(t *testing.T) {
	m := pgruntime.Magic()
	if m.Len != 28 {
		t.Fatalf("Len = %d, want 28", m.Len)
	}
	if m.Version != 1100 {
		t.Fatalf("Version = %d, want 1100", m.Version)
	}
	if m.FuncMaxArgs != 100 || m.IndexMaxKeys != 32 || m.NameDataLen != 64 {
		t.Fatalf("limits = %d/%d/%d", m.FuncMaxArgs, m.IndexMaxKeys, m.NameDataLen)
	}
	if m.Float4ByVal != 1 || m.Float8ByVal != 1 {
		t.Fatalf("float pass-by-value flags = %d/%d, want 1/1", m.Float4ByVal, m.Float8ByVal)
	}
}

func TestSeverityString(t *testing.T) {
	cases := map[pgruntime.Severity]string{
		pgruntime.SevDebug3:  "DEBUG",
		pgruntime.SevWarning: "WARNING",
		pgruntime.SevError:   "ERROR",
		pgruntime.SevPanic:   "PANIC",
	}
	for sev, want := range cases {
		if got := sev.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", sev, got, want)
		}
	}
}

func TestWellKnownString(t *testing.T) {
	if got := pgruntime.StatementRegion.String(); got != "statement" {
		t.Errorf("StatementRegion = %q", got)
	}
	if got := pgruntime.WellKnown(99).String(); got != "unknown" {
		t.Errorf("out-of-range value = %q", got)
	}
}
