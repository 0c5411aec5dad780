package fdw

import (
	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/datum"
)

// TupleSlot is the host-owned output slot a scan stores rows into. A cleared
// slot signals end-of-data to the executor.
type TupleSlot struct {
	Datums []pgruntime.Datum
	Nulls  []bool

	empty bool
}

// NewSlot returns a cleared slot.
func NewSlot() *TupleSlot {
	return &TupleSlot{empty: true}
}

// Clear empties the slot.
func (s *TupleSlot) Clear() {
	s.Datums = nil
	s.Nulls = nil
	s.empty = true
}

// Store places one assembled tuple in the slot.
func (s *TupleSlot) Store(datums []pgruntime.Datum, nulls []bool) {
	s.Datums = datums
	s.Nulls = nulls
	s.empty = false
}

// Empty reports whether the slot holds a tuple.
func (s *TupleSlot) Empty() bool { return s.empty }

// Value returns column i of the stored tuple.
func (s *TupleSlot) Value(i int) datum.Value {
	return datum.FromRaw(s.Datums[i], s.Nulls[i])
}
