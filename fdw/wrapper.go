package fdw

import (
	"go.uber.org/zap"

	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/elog"
	"github.com/wippyai/pg-runtime/errors"
	"github.com/wippyai/pg-runtime/guard"
)

// Fixed messages for operations a wrapper does not support. These abort the
// statement at Error severity.
const (
	msgInsertUnsupported = "foreign table does not support INSERT"
	msgUpdateUnsupported = "foreign table does not support UPDATE"
	msgDeleteUnsupported = "foreign table does not support DELETE"
)

// Planner constants: row production is opaque to the host, so estimates are
// fixed rather than derived.
const (
	defaultRowEstimate = 0
	defaultStartupCost = 10
	defaultTotalCost   = 0
)

// Wrapper binds a guest ForeignTable to the host's callback table.
type Wrapper struct {
	name  string
	table ForeignTable
}

// New wraps a guest foreign-table implementation.
func New(name string, table ForeignTable) *Wrapper {
	return &Wrapper{name: name, table: table}
}

// Name returns the wrapper name used in statement generation.
func (w *Wrapper) Name() string { return w.name }

// Handler registers the wrapper's routine table and returns the opaque word
// a CREATE FOREIGN DATA WRAPPER handler function reports to the host.
func (w *Wrapper) Handler() pgruntime.Datum {
	return RegisterHandler(w.Routine())
}

// Routine populates the host's callback table. Mutation slots are always
// present; sessions without the Modifier capability reject at run time with
// a fixed message.
func (w *Wrapper) Routine() *Routine {
	return &Routine{
		GetRelSize:       w.getRelSize,
		GetPaths:         w.getPaths,
		BeginScan:        w.beginScan,
		Iterate:          w.iterate,
		Rescan:           w.rescan,
		EndScan:          w.endScan,
		AddUpdateTargets: w.addUpdateTargets,
		BeginModify:      w.beginModify,
		ExecInsert:       w.execInsert,
		ExecUpdate:       w.execUpdate,
		ExecDelete:       w.execDelete,
		EndModify:        w.endModify,
	}
}

// getRelSize sets the relation-size estimate. The guest sequence length is
// unknown at plan time.
func (w *Wrapper) getRelSize(h pgruntime.Host, p *PlanState) {
	p.Rows = defaultRowEstimate
}

// getPaths records the single possible access path with fixed costs.
func (w *Wrapper) getPaths(h pgruntime.Host, p *PlanState) {
	p.StartupCost = defaultStartupCost
	p.TotalCost = defaultTotalCost
}

func (w *Wrapper) beginScan(h pgruntime.Host, node *ScanNode) {
	guard.Boundary(h, func() error {
		s, err := w.newSession(h, node.Rel)
		if err != nil {
			return err
		}
		node.session = s
		pgruntime.Logger().Debug("foreign scan started",
			zap.String("wrapper", w.name),
			zap.Uint32("rel", uint32(node.Rel)))
		return nil
	})
}

// iterate pulls one item from the guest sequence and assembles it into the
// scan slot. A cleared slot and nil return signal end-of-data. The
// relation's attribute list is queried fresh on every call rather than
// cached, so concurrent schema lookups stay coherent.
func (w *Wrapper) iterate(h pgruntime.Host, node *ScanNode) (out *TupleSlot) {
	guard.Boundary(h, func() error {
		node.Slot.Clear()

		row, ok, err := node.session.Next()
		if err != nil {
			return errors.Wrap(errors.PhaseScan, errors.KindInvalidInput, err, "row production failed")
		}
		if !ok {
			return nil
		}

		attrs := h.RelationAttrs(node.Rel)
		_, tableOpts := h.RelationOptions(node.Rel)

		data := make([]pgruntime.Datum, len(attrs))
		nulls := make([]bool, len(attrs))
		for i := range nulls {
			nulls[i] = true
		}

		for i, attr := range attrs {
			if attr.Dropped {
				continue
			}
			val, err := row.Field(attr.Name, attr.Type, tableOpts)
			if err != nil {
				// Non-fatal: the column stays null. This can mask schema
				// drift between the wrapper and the table definition, so it
				// is at least visible in the log.
				if werr := elog.Warningf(h, "field lookup for column %q failed: %v", attr.Name, err); werr != nil {
					return werr
				}
				continue
			}
			if val.IsNull() {
				continue
			}
			data[i], nulls[i] = val.Word(), false
		}

		node.Slot.Store(data, nulls)
		out = node.Slot
		return nil
	})
	return out
}

// rescan resets scan position. Sessions that cannot rewind in place are
// reconstructed through Begin, so the second scan of the node starts from
// the beginning instead of resuming mid-sequence.
func (w *Wrapper) rescan(h pgruntime.Host, node *ScanNode) {
	guard.Boundary(h, func() error {
		if r, ok := node.session.(Rescanner); ok {
			if err := r.Rescan(); err != nil {
				return errors.Wrap(errors.PhaseScan, errors.KindInvalidInput, err, "rescan failed")
			}
			return nil
		}
		s, err := w.newSession(h, node.Rel)
		if err != nil {
			return err
		}
		node.session = s
		return nil
	})
}

func (w *Wrapper) endScan(h pgruntime.Host, node *ScanNode) {
	guard.Boundary(h, func() error {
		err := w.closeSession(node.session)
		node.session = nil
		return err
	})
}

// addUpdateTargets injects hidden references to the declared index columns
// during planning of UPDATE and DELETE statements.
func (w *Wrapper) addUpdateTargets(h pgruntime.Host, rel pgruntime.RelID, tl *TargetList) {
	guard.Boundary(h, func() error {
		injectKeyColumns(tl, w.table.IndexColumns())
		return nil
	})
}

func (w *Wrapper) beginModify(h pgruntime.Host, node *ModifyNode) {
	guard.Boundary(h, func() error {
		s, err := w.newSession(h, node.Rel)
		if err != nil {
			return err
		}
		node.session = s
		return nil
	})
}

func (w *Wrapper) execInsert(h pgruntime.Host, node *ModifyNode, row Tuple) {
	guard.Boundary(h, func() error {
		m, ok := node.session.(Modifier)
		if !ok {
			return errors.Unsupported(errors.PhaseModify, msgInsertUnsupported)
		}
		if err := m.Insert(row); err != nil {
			return errors.Wrap(errors.PhaseModify, errors.KindInvalidInput, err, "insert failed")
		}
		return nil
	})
}

func (w *Wrapper) execUpdate(h pgruntime.Host, node *ModifyNode, row, keys Tuple) {
	guard.Boundary(h, func() error {
		m, ok := node.session.(Modifier)
		if !ok {
			return errors.Unsupported(errors.PhaseModify, msgUpdateUnsupported)
		}
		if err := m.Update(row, keys); err != nil {
			return errors.Wrap(errors.PhaseModify, errors.KindInvalidInput, err, "update failed")
		}
		return nil
	})
}

func (w *Wrapper) execDelete(h pgruntime.Host, node *ModifyNode, keys Tuple) {
	guard.Boundary(h, func() error {
		m, ok := node.session.(Modifier)
		if !ok {
			return errors.Unsupported(errors.PhaseModify, msgDeleteUnsupported)
		}
		if err := m.Delete(keys); err != nil {
			return errors.Wrap(errors.PhaseModify, errors.KindInvalidInput, err, "delete failed")
		}
		return nil
	})
}

func (w *Wrapper) endModify(h pgruntime.Host, node *ModifyNode) {
	guard.Boundary(h, func() error {
		err := w.closeSession(node.session)
		node.session = nil
		return err
	})
}

func (w *Wrapper) newSession(h pgruntime.Host, rel pgruntime.RelID) (Session, error) {
	server, table := h.RelationOptions(rel)
	name := h.RelationName(rel)
	s, err := w.table.Begin(h, server, table, name)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseScan, errors.KindInvalidInput, err, "session construction failed")
	}
	return s, nil
}

func (w *Wrapper) closeSession(s Session) error {
	c, ok := s.(Closer)
	if !ok {
		return nil
	}
	if err := c.Close(); err != nil {
		return errors.Wrap(errors.PhaseScan, errors.KindInvalidInput, err, "session close failed")
	}
	return nil
}
