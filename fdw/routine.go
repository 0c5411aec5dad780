package fdw

import (
	"sync"

	pgruntime "github.com/wippyai/pg-runtime"
)

// Routine is the fixed-shape table of callbacks the host drives a foreign
// table through. Slot order mirrors the host's struct; nil slots tell the
// host the wrapper does not participate in that phase. A few slots exist
// only on newer host versions and stay nil when the targeted host predates
// them.
type Routine struct {
	// Planning.
	GetRelSize func(h pgruntime.Host, p *PlanState)
	GetPaths   func(h pgruntime.Host, p *PlanState)

	// Scan.
	BeginScan func(h pgruntime.Host, node *ScanNode)
	Iterate   func(h pgruntime.Host, node *ScanNode) *TupleSlot
	Rescan    func(h pgruntime.Host, node *ScanNode)
	EndScan   func(h pgruntime.Host, node *ScanNode)

	// Modify.
	AddUpdateTargets func(h pgruntime.Host, rel pgruntime.RelID, tl *TargetList)
	BeginModify      func(h pgruntime.Host, node *ModifyNode)
	ExecInsert       func(h pgruntime.Host, node *ModifyNode, row Tuple)
	ExecUpdate       func(h pgruntime.Host, node *ModifyNode, row, keys Tuple)
	ExecDelete       func(h pgruntime.Host, node *ModifyNode, keys Tuple)
	EndModify        func(h pgruntime.Host, node *ModifyNode)

	// Version-gated slots, nil unless the targeted host supports them.
	ShutdownScan func(h pgruntime.Host, node *ScanNode)
	BeginInsert  func(h pgruntime.Host, node *ModifyNode)
	EndInsert    func(h pgruntime.Host, node *ModifyNode)
	ExplainScan  func(h pgruntime.Host, node *ScanNode) string
	AnalyzeTable func(h pgruntime.Host, rel pgruntime.RelID) bool
	ImportSchema func(h pgruntime.Host, server Options) []string
	ParallelSafe func(h pgruntime.Host, rel pgruntime.RelID) bool
}

// The host resolves handler functions to routine tables through an opaque
// word. The registry hands out those words; handle 0 is reserved and always
// invalid.
type registry struct {
	mu      sync.RWMutex
	entries []*Routine
	free    []uint32
}

var handlers registry

// RegisterHandler stores a routine table and returns the opaque word a
// handler function reports to the host.
func RegisterHandler(r *Routine) pgruntime.Datum {
	handlers.mu.Lock()
	defer handlers.mu.Unlock()

	if n := len(handlers.free); n > 0 {
		idx := handlers.free[n-1]
		handlers.free = handlers.free[:n-1]
		handlers.entries[idx-1] = r
		return pgruntime.Datum(idx)
	}
	handlers.entries = append(handlers.entries, r)
	return pgruntime.Datum(len(handlers.entries))
}

// LookupHandler resolves a handler word back to its routine table.
func LookupHandler(d pgruntime.Datum) (*Routine, bool) {
	handlers.mu.RLock()
	defer handlers.mu.RUnlock()

	idx := uint64(d)
	if idx == 0 || idx > uint64(len(handlers.entries)) {
		return nil, false
	}
	r := handlers.entries[idx-1]
	return r, r != nil
}

// UnregisterHandler drops a handler word, typically at plugin unload.
func UnregisterHandler(d pgruntime.Datum) {
	handlers.mu.Lock()
	defer handlers.mu.Unlock()

	idx := uint64(d)
	if idx == 0 || idx > uint64(len(handlers.entries)) {
		return
	}
	if handlers.entries[idx-1] != nil {
		handlers.entries[idx-1] = nil
		handlers.free = append(handlers.free, uint32(idx))
	}
}
