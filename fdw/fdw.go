package fdw

import (
	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/datum"
)

// Options carries the string options attached to a server or foreign table,
// e.g. CREATE SERVER myserver FOREIGN DATA WRAPPER mywrapper
// OPTIONS (host 'foo', port '5432').
type Options map[string]string

// Tuple maps column names to values. Tuples are unordered: statements may
// name columns in any order, so all lookup is by name.
type Tuple map[string]datum.Value

// ForeignTable is the guest behavior behind one foreign table. The object
// only lives for the duration of a query, so it is not an appropriate place
// for caching or long-running connections.
type ForeignTable interface {
	// Begin constructs per-scan session state from the server options,
	// table options and resolved table name. Heavy setup such as opening
	// connections belongs in the first Next call, not here.
	Begin(h pgruntime.Host, server, table Options, tableName string) (Session, error)

	// IndexColumns names the key columns Update and Delete receive. Empty
	// means the table has no usable keys and row mutation cannot target
	// individual rows.
	IndexColumns() []string
}

// Session is per-scan guest state producing rows. Next returns the next row,
// false when the sequence is exhausted, or an error to abort the statement.
type Session interface {
	Next() (Row, bool, error)
}

// Row answers named-field lookups. Because columns can be queried in any
// order, rows decide what to return at runtime rather than by position. The
// returned value's type should match the column's type, but this is not
// enforced.
type Row interface {
	Field(name string, typ pgruntime.Oid, opts Options) (datum.Value, error)
}

// Modifier is the optional mutation capability of a Session. Update and
// Delete receive a second tuple restricted to the declared index columns.
type Modifier interface {
	Insert(row Tuple) error
	Update(row Tuple, keys Tuple) error
	Delete(keys Tuple) error
}

// Rescanner is the optional capability of resetting scan position in place.
// Sessions without it are reconstructed through Begin on re-scan.
type Rescanner interface {
	Rescan() error
}

// Closer is the optional capability of releasing session resources at
// Scan-End or Modify-End.
type Closer interface {
	Close() error
}

// PlanState carries the planner's estimate slots for one foreign relation.
type PlanState struct {
	Rel         pgruntime.RelID
	Rows        float64
	StartupCost float64
	TotalCost   float64
}

// ScanNode is the executor state of one foreign scan.
type ScanNode struct {
	Rel  pgruntime.RelID
	Slot *TupleSlot

	session Session
}

// ModifyNode is the executor state of one foreign-table mutation.
type ModifyNode struct {
	Rel pgruntime.RelID

	session Session
}
