// Package hosttest is an in-process stand-in for the database engine. It
// implements the full host surface over a linear test memory, so runtime and
// wrapper code can be exercised without a running server: regions are bump
// allocators with bookkeeping, error reports are recorded, and reports at
// Error severity and above unwind through the same signal panic the
// production bridge expects.
//
// An Engine is not safe for concurrent use; give each test its own.
package hosttest

import (
	"fmt"

	pgruntime "github.com/wippyai/pg-runtime"
)

// LogRecord is one completed error report.
type LogRecord struct {
	Severity pgruntime.Severity
	File     string
	Line     int
	Func     string
	Message  string
}

type region struct {
	id       pgruntime.RegionID
	parent   pgruntime.RegionID
	name     string
	children []pgruntime.RegionID
	allocs   map[pgruntime.Datum]uint32
}

type relation struct {
	name   string
	attrs  []pgruntime.Attr
	server map[string]string
	table  map[string]string
}

type pendingReport struct {
	sev  pgruntime.Severity
	file string
	line int
	fn   string
}

// Engine simulates the host. Zero value is not usable; construct with New.
type Engine struct {
	mem        *linearMemory
	regions    map[pgruntime.RegionID]*region
	nextRegion pgruntime.RegionID
	current    pgruntime.RegionID
	wellKnown  map[pgruntime.WellKnown]pgruntime.RegionID
	target     pgruntime.Target
	toast      map[pgruntime.Datum][]byte
	types      map[pgruntime.Oid]pgruntime.TypeInfo
	rels       map[pgruntime.RelID]*relation
	nextRel    pgruntime.RelID
	pending    *pendingReport

	// Log collects every completed report, including those that unwound.
	Log []LogRecord

	// MinLevel is the lowest severity ErrorStart admits. Error and above
	// always pass.
	MinLevel pgruntime.Severity

	// Swap counters, for asserting that installs and restores pair up.
	TargetSwaps int
	RegionSwaps int

	// DetoastCalls counts normalization round trips through the host.
	DetoastCalls int
}

var _ pgruntime.Host = (*Engine)(nil)

// New constructs an engine with the permanent regions installed and the
// statement region current.
func New() *Engine {
	e := &Engine{
		mem:       newLinearMemory(),
		regions:   make(map[pgruntime.RegionID]*region),
		wellKnown: make(map[pgruntime.WellKnown]pgruntime.RegionID),
		toast:     make(map[pgruntime.Datum][]byte),
		types:     standardTypes(),
		rels:      make(map[pgruntime.RelID]*relation),
		MinLevel:  pgruntime.SevDebug5,
	}
	top := e.newRegion(0, "top")
	for _, k := range []pgruntime.WellKnown{
		pgruntime.TopRegion,
		pgruntime.StatementRegion,
		pgruntime.ErrorRegion,
		pgruntime.CacheRegion,
		pgruntime.TransactionRegion,
	} {
		if k == pgruntime.TopRegion {
			e.wellKnown[k] = top
			continue
		}
		e.wellKnown[k] = e.newRegion(top, k.String())
	}
	e.current = e.wellKnown[pgruntime.StatementRegion]
	return e
}

func (e *Engine) newRegion(parent pgruntime.RegionID, name string) pgruntime.RegionID {
	e.nextRegion++
	id := e.nextRegion
	e.regions[id] = &region{
		id:     id,
		parent: parent,
		name:   name,
		allocs: make(map[pgruntime.Datum]uint32),
	}
	if p, ok := e.regions[parent]; ok {
		p.children = append(p.children, id)
	}
	return id
}

func (e *Engine) region(r pgruntime.RegionID) *region {
	reg, ok := e.regions[r]
	if !ok {
		panic(fmt.Sprintf("hosttest: use of unknown or deleted region %d", r))
	}
	return reg
}

// Mem exposes the test storage.
func (e *Engine) Mem() pgruntime.Memory { return e.mem }

// --- RegionHost ---

func (e *Engine) CurrentRegion() pgruntime.RegionID { return e.current }

func (e *Engine) SwapCurrentRegion(r pgruntime.RegionID) pgruntime.RegionID {
	e.region(r)
	e.RegionSwaps++
	prev := e.current
	e.current = r
	return prev
}

func (e *Engine) WellKnownRegion(k pgruntime.WellKnown) pgruntime.RegionID {
	id, ok := e.wellKnown[k]
	if !ok {
		panic(fmt.Sprintf("hosttest: unknown permanent region %d", k))
	}
	return id
}

func (e *Engine) RegionCreate(parent pgruntime.RegionID, name string, _ pgruntime.RegionSizing) pgruntime.RegionID {
	e.region(parent)
	return e.newRegion(parent, name)
}

func (e *Engine) RegionAlloc(r pgruntime.RegionID, size uint32, zero bool) pgruntime.Datum {
	reg := e.region(r)
	aligned := (size + 7) &^ 7
	if aligned == 0 {
		aligned = 8
	}
	ptr := e.mem.extend(aligned)
	if !zero {
		// Poison so code relying on cleared memory fails loudly.
		buf, _ := e.mem.slice(ptr, aligned)
		for i := range buf {
			buf[i] = 0xA5
		}
	}
	reg.allocs[ptr] = size
	return ptr
}

func (e *Engine) RegionFree(r pgruntime.RegionID, ptr pgruntime.Datum) {
	if !e.freeIn(e.region(r), ptr) {
		panic(fmt.Sprintf("hosttest: free of %#x, which is not live in region %d", uint64(ptr), r))
	}
}

func (e *Engine) freeIn(reg *region, ptr pgruntime.Datum) bool {
	if _, ok := reg.allocs[ptr]; ok {
		delete(reg.allocs, ptr)
		return true
	}
	for _, c := range reg.children {
		if e.freeIn(e.region(c), ptr) {
			return true
		}
	}
	return false
}

func (e *Engine) RegionReset(r pgruntime.RegionID, recurse bool) {
	reg := e.region(r)
	reg.allocs = make(map[pgruntime.Datum]uint32)
	if !recurse {
		return
	}
	for _, c := range reg.children {
		e.RegionReset(c, true)
	}
}

func (e *Engine) RegionDelete(r pgruntime.RegionID) {
	reg := e.region(r)
	for _, c := range append([]pgruntime.RegionID(nil), reg.children...) {
		e.RegionDelete(c)
	}
	if p, ok := e.regions[reg.parent]; ok {
		for i, c := range p.children {
			if c == r {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	delete(e.regions, r)
	if e.current == r {
		e.current = e.wellKnown[pgruntime.StatementRegion]
	}
}

// Live returns the number of live allocations charged to r.
func (e *Engine) Live(r pgruntime.RegionID) int {
	return len(e.region(r).allocs)
}

// --- ErrorHost ---

func (e *Engine) SwapTarget(t pgruntime.Target) pgruntime.Target {
	e.TargetSwaps++
	prev := e.target
	e.target = t
	return prev
}

// ActiveTarget returns the currently installed exception target.
func (e *Engine) ActiveTarget() pgruntime.Target { return e.target }

func (e *Engine) Rethrow(code pgruntime.JumpCode) {
	panic(pgruntime.SignalPanic{Code: code})
}

func (e *Engine) ErrorStart(sev pgruntime.Severity, file string, line int, fn string) bool {
	if e.pending != nil {
		panic("hosttest: ErrorStart while a report is already open")
	}
	if sev < e.MinLevel && sev < pgruntime.SevError {
		return false
	}
	e.pending = &pendingReport{sev: sev, file: file, line: line, fn: fn}
	return true
}

func (e *Engine) ErrorFinish(msg string) {
	p := e.pending
	if p == nil {
		panic("hosttest: ErrorFinish without a matching ErrorStart")
	}
	e.pending = nil
	e.Log = append(e.Log, LogRecord{
		Severity: p.sev,
		File:     p.file,
		Line:     p.line,
		Func:     p.fn,
		Message:  msg,
	})
	if p.sev >= pgruntime.SevError {
		panic(pgruntime.SignalPanic{Code: 1})
	}
}

// LastRecord returns the most recent report, or false when none exists.
func (e *Engine) LastRecord() (LogRecord, bool) {
	if len(e.Log) == 0 {
		return LogRecord{}, false
	}
	return e.Log[len(e.Log)-1], true
}

// RecordsAt returns the messages of all reports at exactly the given
// severity, in emission order.
func (e *Engine) RecordsAt(sev pgruntime.Severity) []string {
	var msgs []string
	for _, rec := range e.Log {
		if rec.Severity == sev {
			msgs = append(msgs, rec.Message)
		}
	}
	return msgs
}

// --- TypeHost ---

func standardTypes() map[pgruntime.Oid]pgruntime.TypeInfo {
	return map[pgruntime.Oid]pgruntime.TypeInfo{
		pgruntime.OidBool:        {Len: 1, ByVal: true, Align: 'c'},
		pgruntime.OidBytea:       {Len: -1, ByVal: false, Align: 'i'},
		pgruntime.OidInt8:        {Len: 8, ByVal: true, Align: 'd'},
		pgruntime.OidInt2:        {Len: 2, ByVal: true, Align: 's'},
		pgruntime.OidInt4:        {Len: 4, ByVal: true, Align: 'i'},
		pgruntime.OidText:        {Len: -1, ByVal: false, Align: 'i'},
		pgruntime.OidFloat4:      {Len: 4, ByVal: true, Align: 'i'},
		pgruntime.OidFloat8:      {Len: 8, ByVal: true, Align: 'd'},
		pgruntime.OidBoolArray:   {Len: -1, ByVal: false, Align: 'i'},
		pgruntime.OidInt2Array:   {Len: -1, ByVal: false, Align: 'i'},
		pgruntime.OidInt4Array:   {Len: -1, ByVal: false, Align: 'i'},
		pgruntime.OidInt8Array:   {Len: -1, ByVal: false, Align: 'd'},
		pgruntime.OidTextArray:   {Len: -1, ByVal: false, Align: 'i'},
		pgruntime.OidFloat4Array: {Len: -1, ByVal: false, Align: 'i'},
		pgruntime.OidFloat8Array: {Len: -1, ByVal: false, Align: 'd'},
	}
}

func (e *Engine) TypeInfo(oid pgruntime.Oid) (pgruntime.TypeInfo, bool) {
	ti, ok := e.types[oid]
	return ti, ok
}

// RegisterType installs or overrides type introspection for an identifier.
func (e *Engine) RegisterType(oid pgruntime.Oid, ti pgruntime.TypeInfo) {
	e.types[oid] = ti
}

func (e *Engine) Detoast(ptr pgruntime.Datum, copy bool) pgruntime.Datum {
	e.DetoastCalls++

	b0, err := e.mem.ReadU8(ptr)
	if err != nil {
		e.raise("normalization read outside mapped storage: %v", err)
	}

	switch {
	case b0 == 0x01:
		raw, ok := e.toast[ptr]
		if !ok {
			e.raise("no out-of-line payload registered at %#x", uint64(ptr))
		}
		return e.writeVar4B(raw)

	case b0&0x03 == 0x02:
		hdr, err := e.mem.ReadU32(ptr)
		if err != nil {
			e.raise("normalization read outside mapped storage: %v", err)
		}
		total := (hdr >> 2) & 0x3FFFFFFF
		body, err := e.mem.Read(ptr+4, total-4)
		if err != nil || len(body) < 4 {
			e.raise("compressed buffer at %#x is truncated", uint64(ptr))
		}
		// Test compression is the identity transform behind a 4-byte
		// raw-size prefix.
		rawSize := uint32(body[0]) | uint32(body[1])<<8 | uint32(body[2])<<16 | uint32(body[3])<<24
		if uint32(len(body)-4) < rawSize {
			e.raise("compressed buffer at %#x claims %d raw bytes", uint64(ptr), rawSize)
		}
		return e.writeVar4B(body[4 : 4+rawSize])

	default:
		if !copy {
			return ptr
		}
		var total uint32
		if b0&0x01 == 0 {
			hdr, _ := e.mem.ReadU32(ptr)
			total = (hdr >> 2) & 0x3FFFFFFF
		} else {
			total = uint32(b0>>1) & 0x7F
		}
		src, err := e.mem.Read(ptr, total)
		if err != nil {
			e.raise("normalization read outside mapped storage: %v", err)
		}
		dst := e.RegionAlloc(e.current, total, false)
		if err := e.mem.Write(dst, src); err != nil {
			e.raise("normalization write failed: %v", err)
		}
		return dst
	}
}

// writeVar4B places payload behind a plain 4-byte header in the current
// region.
func (e *Engine) writeVar4B(payload []byte) pgruntime.Datum {
	total := uint32(4 + len(payload))
	ptr := e.RegionAlloc(e.current, total, false)
	if err := e.mem.WriteU32(ptr, total<<2); err != nil {
		e.raise("normalization write failed: %v", err)
	}
	if err := e.mem.Write(ptr+4, payload); err != nil {
		e.raise("normalization write failed: %v", err)
	}
	return ptr
}

// raise reports a host-side failure at Error severity and unwinds. It never
// returns.
func (e *Engine) raise(format string, args ...any) {
	if e.ErrorStart(pgruntime.SevError, "hosttest", 0, "host") {
		e.ErrorFinish(fmt.Sprintf(format, args...))
	}
	panic(pgruntime.SignalPanic{Code: 1})
}

// --- RelationHost ---

// CreateRelation installs a catalog entry and returns its identifier.
func (e *Engine) CreateRelation(name string, attrs []pgruntime.Attr, server, table map[string]string) pgruntime.RelID {
	e.nextRel++
	e.rels[e.nextRel] = &relation{
		name:   name,
		attrs:  append([]pgruntime.Attr(nil), attrs...),
		server: server,
		table:  table,
	}
	return e.nextRel
}

func (e *Engine) relation(rel pgruntime.RelID) *relation {
	r, ok := e.rels[rel]
	if !ok {
		panic(fmt.Sprintf("hosttest: use of unknown relation %d", rel))
	}
	return r
}

func (e *Engine) RelationName(rel pgruntime.RelID) string {
	return e.relation(rel).name
}

func (e *Engine) RelationAttrs(rel pgruntime.RelID) []pgruntime.Attr {
	return append([]pgruntime.Attr(nil), e.relation(rel).attrs...)
}

func (e *Engine) RelationOptions(rel pgruntime.RelID) (server, table map[string]string) {
	r := e.relation(rel)
	return r.server, r.table
}
