package pgruntime

// Datum is the host's opaque machine word: either a direct bit-encoding of a
// primitive or an address into region memory. Nullness travels out-of-band;
// a zero Datum with the null flag set carries no information.
type Datum uint64

// Oid identifies a host type.
type Oid uint32

// Well-known host type identifiers.
const (
	OidBool   Oid = 16
	OidBytea  Oid = 17
	OidInt8   Oid = 20
	OidInt2   Oid = 21
	OidInt4   Oid = 23
	OidText   Oid = 25
	OidFloat4 Oid = 700
	OidFloat8 Oid = 701

	OidBoolArray   Oid = 1000
	OidInt2Array   Oid = 1005
	OidInt4Array   Oid = 1007
	OidTextArray   Oid = 1009
	OidInt8Array   Oid = 1016
	OidFloat4Array Oid = 1021
	OidFloat8Array Oid = 1022
)

// RegionID is a handle to a host memory region. Zero is never a valid region.
type RegionID uint32

// WellKnown names the host's permanent regions. Guest code may allocate from
// them but must not reset or delete them.
type WellKnown uint8

const (
	// TopRegion is the root of the region tree; it lives for the whole
	// backend process.
	TopRegion WellKnown = iota
	// StatementRegion is reset by the host after every statement.
	StatementRegion
	// ErrorRegion is reserved headroom for error recovery.
	ErrorRegion
	// CacheRegion holds long-lived cache entries.
	CacheRegion
	// TransactionRegion is reset at transaction end.
	TransactionRegion
)

func (k WellKnown) String() string {
	switch k {
	case TopRegion:
		return "top"
	case StatementRegion:
		return "statement"
	case ErrorRegion:
		return "error"
	case CacheRegion:
		return "cache"
	case TransactionRegion:
		return "transaction"
	default:
		return "unknown"
	}
}

// RegionSizing controls block growth for a derived region.
type RegionSizing struct {
	MinSize   uint32
	InitBlock uint32
	MaxBlock  uint32
}

// DefaultSizing matches the host's default block growth parameters.
var DefaultSizing = RegionSizing{MinSize: 0, InitBlock: 8 * 1024, MaxBlock: 8 * 1024 * 1024}

// Target is an opaque exception-target token. The host tracks exactly one
// current target per backend; zero means none is installed.
type Target uint64

// JumpCode is the value a host non-local exit resumes with.
type JumpCode int32

// SignalPanic is the panic payload host routines throw to perform a
// non-local exit. It must only be recovered by guard.Run; everything else
// lets it pass through so the exit reaches the innermost installed target.
type SignalPanic struct {
	Code JumpCode
}

// Severity is a host log level. Error and above abort the current statement
// by triggering a non-local exit once the message is recorded.
type Severity int32

const (
	SevDebug5 Severity = 10
	SevDebug4 Severity = 11
	SevDebug3 Severity = 12
	SevDebug2 Severity = 13
	SevDebug1 Severity = 14
	SevLog    Severity = 15
	// SevLogServerOnly reports like SevLog but is never sent to the client.
	SevLogServerOnly Severity = 16
	SevInfo          Severity = 17
	SevNotice        Severity = 18
	SevWarning       Severity = 19
	SevError         Severity = 20
	SevFatal         Severity = 21
	SevPanic         Severity = 22
)

// String returns the host's spelling of the severity.
func (s Severity) String() string {
	switch s {
	case SevDebug5, SevDebug4, SevDebug3, SevDebug2, SevDebug1:
		return "DEBUG"
	case SevLog, SevLogServerOnly:
		return "LOG"
	case SevInfo:
		return "INFO"
	case SevNotice:
		return "NOTICE"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	case SevFatal:
		return "FATAL"
	case SevPanic:
		return "PANIC"
	default:
		return "UNKNOWN"
	}
}

// RelID identifies a relation (table) in the host catalog.
type RelID uint32

// Attr describes one column of a relation's current attribute list.
type Attr struct {
	Name    string
	Type    Oid
	Dropped bool
}

// TypeInfo is the host's per-type introspection record: storage width in
// bytes (-1 for variable length), pass-by-value flag, and alignment.
type TypeInfo struct {
	Len   int16
	ByVal bool
	Align byte
}
