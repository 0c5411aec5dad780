package hosttest_test

import (
	"errors"
	"testing"

	pgruntime "github.com/wippyai/pg-runtime"
	pgerrors "github.com/wippyai/pg-runtime/errors"
	"github.com/wippyai/pg-runtime/hosttest"
)

func TestVerifyMagicAccepts(t *testing.T) {
	e := hosttest.New()
	if err := e.VerifyMagic(pgruntime.Magic()); err != nil {
		t.Fatalf("VerifyMagic: %v", err)
	}
}

func TestVerifyMagicRejectsEachField(t *testing.T) {
	e := hosttest.New()
	mutations := map[string]func(*pgruntime.MagicBlock){
		"len":          func(m *pgruntime.MagicBlock) { m.Len++ },
		"version":      func(m *pgruntime.MagicBlock) { m.Version = 9 },
		"funcmaxargs":  func(m *pgruntime.MagicBlock) { m.FuncMaxArgs = 16 },
		"indexmaxkeys": func(m *pgruntime.MagicBlock) { m.IndexMaxKeys = 8 },
		"namedatalen":  func(m *pgruntime.MagicBlock) { m.NameDataLen = 32 },
		"float4byval":  func(m *pgruntime.MagicBlock) { m.Float4ByVal = 0 },
		"float8byval":  func(m *pgruntime.MagicBlock) { m.Float8ByVal = 0 },
	}
	for field, mutate := range mutations {
		m := pgruntime.Magic()
		mutate(&m)
		err := e.VerifyMagic(m)
		var perr *pgerrors.Error
		if !errors.As(err, &perr) {
			t.Errorf("%s: got %v, want rejection", field, err)
			continue
		}
		if perr.Kind != pgerrors.KindMagicMismatch {
			t.Errorf("%s: kind = %s", field, perr.Kind)
		}
		if len(perr.Path) != 1 || perr.Path[0] != field {
			t.Errorf("%s: rejection names %v", field, perr.Path)
		}
	}
}

func TestMemoryRejectsUnmappedAccess(t *testing.T) {
	e := hosttest.New()
	if _, err := e.Mem().Read(0, 1); err == nil {
		t.Fatal("read of address zero succeeded")
	}

	ptr := e.RegionAlloc(e.CurrentRegion(), 8, true)
	if _, err := e.Mem().Read(ptr, 1<<20); err == nil {
		t.Fatal("read past the end of storage succeeded")
	}
}
