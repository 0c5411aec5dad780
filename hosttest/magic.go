package hosttest

import (
	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/errors"
)

// VerifyMagic performs the load-time check the host runs against a plugin's
// magic block. The first disagreeing field is reported; Len and Version are
// checked first because a mismatch there makes the rest of the block
// meaningless.
func (e *Engine) VerifyMagic(m pgruntime.MagicBlock) error {
	want := pgruntime.Magic()
	checks := []struct {
		field     string
		got, want int32
	}{
		{"len", m.Len, want.Len},
		{"version", m.Version, want.Version},
		{"funcmaxargs", m.FuncMaxArgs, want.FuncMaxArgs},
		{"indexmaxkeys", m.IndexMaxKeys, want.IndexMaxKeys},
		{"namedatalen", m.NameDataLen, want.NameDataLen},
		{"float4byval", m.Float4ByVal, want.Float4ByVal},
		{"float8byval", m.Float8ByVal, want.Float8ByVal},
	}
	for _, c := range checks {
		if c.got != c.want {
			return errors.MagicMismatch(c.field, c.got, c.want)
		}
	}
	return nil
}
