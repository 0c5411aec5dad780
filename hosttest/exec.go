package hosttest

import (
	"fmt"

	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/datum"
	"github.com/wippyai/pg-runtime/fdw"
)

// StatementError is a statement abort observed by the executor harness: a
// callback unwound with a host signal. Message carries the most recent
// Error-severity report, when one exists.
type StatementError struct {
	Code    pgruntime.JumpCode
	Message string
}

func (e *StatementError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("statement aborted (jump code %d)", e.Code)
	}
	return fmt.Sprintf("statement aborted: %s", e.Message)
}

// call runs one wrapper callback the way the executor would: a host signal
// unwinding out of it aborts the statement, everything else propagates.
func (e *Engine) call(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		sp, ok := r.(pgruntime.SignalPanic)
		if !ok {
			panic(r)
		}
		serr := &StatementError{Code: sp.Code}
		for i := len(e.Log) - 1; i >= 0; i-- {
			if e.Log[i].Severity >= pgruntime.SevError {
				serr.Message = e.Log[i].Message
				break
			}
		}
		err = serr
	}()
	fn()
	return nil
}

// Scan drives one full scan of rel through the routine table: planning,
// Scan-Begin, Iterate until the cleared slot, Scan-End. Each produced tuple
// is decoded against the relation's attribute list.
func (e *Engine) Scan(r *fdw.Routine, rel pgruntime.RelID) ([]fdw.Tuple, error) {
	scan, err := e.StartScan(r, rel)
	if err != nil {
		return nil, err
	}
	return scan.Drain()
}

// StartScan runs planning and Scan-Begin, returning a handle that steps the
// scan. Tests that need to interleave re-scan or inspect state mid-scan use
// this instead of Scan.
func (e *Engine) StartScan(r *fdw.Routine, rel pgruntime.RelID) (*ScanHandle, error) {
	plan := &fdw.PlanState{Rel: rel}
	if err := e.call(func() { r.GetRelSize(e, plan) }); err != nil {
		return nil, err
	}
	if err := e.call(func() { r.GetPaths(e, plan) }); err != nil {
		return nil, err
	}

	node := &fdw.ScanNode{Rel: rel, Slot: fdw.NewSlot()}
	if err := e.call(func() { r.BeginScan(e, node) }); err != nil {
		return nil, err
	}
	return &ScanHandle{e: e, r: r, node: node, Plan: plan}, nil
}

// ScanHandle is an open scan the harness steps explicitly.
type ScanHandle struct {
	e    *Engine
	r    *fdw.Routine
	node *fdw.ScanNode

	Plan *fdw.PlanState
}

// Next produces the next tuple, or false at end of data.
func (s *ScanHandle) Next() (fdw.Tuple, bool, error) {
	var slot *fdw.TupleSlot
	if err := s.e.call(func() { slot = s.r.Iterate(s.e, s.node) }); err != nil {
		return nil, false, err
	}
	if slot == nil || slot.Empty() {
		return nil, false, nil
	}
	return s.e.decodeSlot(s.node.Rel, slot), true, nil
}

// Drain steps the scan to completion and closes it.
func (s *ScanHandle) Drain() ([]fdw.Tuple, error) {
	var out []fdw.Tuple
	for {
		t, ok, err := s.Next()
		if err != nil {
			s.Close()
			return out, err
		}
		if !ok {
			break
		}
		out = append(out, t)
	}
	if err := s.Close(); err != nil {
		return out, err
	}
	return out, nil
}

// Rescan resets the scan to the first row.
func (s *ScanHandle) Rescan() error {
	return s.e.call(func() { s.r.Rescan(s.e, s.node) })
}

// Close runs Scan-End.
func (s *ScanHandle) Close() error {
	return s.e.call(func() { s.r.EndScan(s.e, s.node) })
}

func (e *Engine) decodeSlot(rel pgruntime.RelID, slot *fdw.TupleSlot) fdw.Tuple {
	attrs := e.RelationAttrs(rel)
	t := make(fdw.Tuple, len(attrs))
	for i, a := range attrs {
		if a.Dropped {
			continue
		}
		t[a.Name] = slot.Value(i)
	}
	return t
}

// PlanUpdate runs Update-Targets planning for a statement that projects the
// named columns, returning the final target list with any injected key
// columns.
func (e *Engine) PlanUpdate(r *fdw.Routine, rel pgruntime.RelID, columns ...string) (*fdw.TargetList, error) {
	tl := &fdw.TargetList{}
	for _, c := range columns {
		tl.Append(fdw.TargetEntry{Column: c})
	}
	if err := e.call(func() { r.AddUpdateTargets(e, rel, tl) }); err != nil {
		return nil, err
	}
	return tl, nil
}

// ModifyHandle is an open mutation the harness steps explicitly.
type ModifyHandle struct {
	e    *Engine
	r    *fdw.Routine
	node *fdw.ModifyNode

	// Targets is the planned target list, including injected key columns.
	Targets *fdw.TargetList
}

// StartModify plans and begins a mutation of rel projecting the named
// columns.
func (e *Engine) StartModify(r *fdw.Routine, rel pgruntime.RelID, columns ...string) (*ModifyHandle, error) {
	tl, err := e.PlanUpdate(r, rel, columns...)
	if err != nil {
		return nil, err
	}
	node := &fdw.ModifyNode{Rel: rel}
	if err := e.call(func() { r.BeginModify(e, node) }); err != nil {
		return nil, err
	}
	return &ModifyHandle{e: e, r: r, node: node, Targets: tl}, nil
}

// Insert runs one Modify-Insert.
func (m *ModifyHandle) Insert(row fdw.Tuple) error {
	return m.e.call(func() { m.r.ExecInsert(m.e, m.node, row) })
}

// Update runs one Modify-Update. The key tuple is restricted to the columns
// the planner injected plus any explicitly projected key columns.
func (m *ModifyHandle) Update(row, keys fdw.Tuple) error {
	return m.e.call(func() { m.r.ExecUpdate(m.e, m.node, row, keys) })
}

// Delete runs one Modify-Delete.
func (m *ModifyHandle) Delete(keys fdw.Tuple) error {
	return m.e.call(func() { m.r.ExecDelete(m.e, m.node, keys) })
}

// Close runs Modify-End.
func (m *ModifyHandle) Close() error {
	return m.e.call(func() { m.r.EndModify(m.e, m.node) })
}

// TupleInt32 reads an int32 column out of a decoded tuple.
func TupleInt32(t fdw.Tuple, column string) (int32, error) {
	return datum.ToInt32(t[column])
}

// TupleString reads a text column out of a decoded tuple, resolving the
// word against the engine's storage.
func (e *Engine) TupleString(t fdw.Tuple, column string) (string, error) {
	return datum.ToString(e, t[column])
}
