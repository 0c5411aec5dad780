package pgruntime

// Memory is byte-addressed access to host-managed storage. Addresses are
// Datum words; address zero is never mapped. Read returns a view over the
// host's storage, not a copy, so the returned slice is only valid while the
// owning region lives.
type Memory interface {
	Read(ptr Datum, length uint32) ([]byte, error)
	Write(ptr Datum, data []byte) error
	ReadU8(ptr Datum) (uint8, error)
	ReadU16(ptr Datum) (uint16, error)
	ReadU32(ptr Datum) (uint32, error)
	ReadU64(ptr Datum) (uint64, error)
	WriteU8(ptr Datum, value uint8) error
	WriteU16(ptr Datum, value uint16) error
	WriteU32(ptr Datum, value uint32) error
	WriteU64(ptr Datum, value uint64) error
}

// RegionHost is the host's hierarchical region allocator. Allocation failure
// is host-fatal and surfaces as a non-local exit, never as an error return.
type RegionHost interface {
	// CurrentRegion returns the region new allocations are charged to.
	CurrentRegion() RegionID

	// SwapCurrentRegion installs r as current and returns the previous
	// current region. Callers own restoring the previous value; arena.With
	// is the sanctioned way to do that.
	SwapCurrentRegion(r RegionID) RegionID

	// WellKnownRegion returns one of the host's permanent regions.
	WellKnownRegion(k WellKnown) RegionID

	// RegionCreate derives a child region.
	RegionCreate(parent RegionID, name string, sizing RegionSizing) RegionID

	// RegionAlloc returns storage owned by r. The zero flag requests
	// cleared memory.
	RegionAlloc(r RegionID, size uint32, zero bool) Datum

	// RegionFree explicitly releases one allocation made in r's subtree.
	RegionFree(r RegionID, ptr Datum)

	// RegionReset frees r's contents; recurse extends to children.
	RegionReset(r RegionID, recurse bool)

	// RegionDelete tears down r and all of its children.
	RegionDelete(r RegionID)
}

// ErrorHost is the host's error reporting and non-local-exit surface.
type ErrorHost interface {
	// SwapTarget installs t as the current exception target and returns the
	// previous one. guard.Run pairs every install with exactly one restore.
	SwapTarget(t Target) Target

	// Rethrow re-issues a non-local exit with the given jump code so nested
	// guarded scopes propagate outward. It never returns.
	Rethrow(code JumpCode)

	// ErrorStart opens a report at the given severity. A false return means
	// the message would be discarded and formatting can be skipped. May
	// itself signal, so callers must be guarded.
	ErrorStart(sev Severity, file string, line int, fn string) bool

	// ErrorFinish records the message opened by ErrorStart. At SevError and
	// above it performs a non-local exit instead of returning.
	ErrorFinish(msg string)
}

// TypeHost is the host's type introspection and buffer normalization surface.
type TypeHost interface {
	// TypeInfo reports width, alignment and by-value-ness for a type.
	TypeInfo(oid Oid) (TypeInfo, bool)

	// Detoast normalizes a variable-length buffer into a directly
	// addressable representation, allocating from the current region when
	// the input is compressed or out-of-line. With copy set it always
	// returns fresh storage; otherwise it may return ptr unchanged. It can
	// allocate and can signal, so callers must be guarded.
	Detoast(ptr Datum, copy bool) Datum
}

// RelationHost exposes the host catalog entries the row protocol needs.
type RelationHost interface {
	// RelationName resolves the table name for a relation.
	RelationName(rel RelID) string

	// RelationAttrs returns the relation's current attribute list. The row
	// protocol queries this fresh on every iteration rather than caching it.
	RelationAttrs(rel RelID) []Attr

	// RelationOptions returns the server-level and table-level option maps.
	RelationOptions(rel RelID) (server, table map[string]string)
}

// Host is the complete engine surface the runtime calls into. Production
// builds back it with the engine's C entry points; tests back it with
// hosttest.Engine.
type Host interface {
	RegionHost
	ErrorHost
	TypeHost
	RelationHost

	// Mem exposes host storage for direct reads and writes.
	Mem() Memory
}
