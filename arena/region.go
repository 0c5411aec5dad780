package arena

import (
	pgruntime "github.com/wippyai/pg-runtime"
	"github.com/wippyai/pg-runtime/errors"
)

// Region is a handle to one host memory region. The zero value is invalid;
// obtain regions from Current, the well-known accessors, or Child.
//
// Regions and anything allocated from them are bound to the backend's single
// logical thread. They must not cross an OS-thread boundary.
type Region struct {
	h         pgruntime.Host
	id        pgruntime.RegionID
	permanent bool
}

// Current returns the region new allocations are charged to. When the
// current region is one of the host's well-known permanent regions, the
// handle carries the same read-only protection the dedicated accessors
// enforce.
func Current(h pgruntime.Host) *Region {
	id := h.CurrentRegion()
	r := &Region{h: h, id: id}
	for k := pgruntime.TopRegion; k <= pgruntime.TransactionRegion; k++ {
		if h.WellKnownRegion(k) == id {
			r.permanent = true
			break
		}
	}
	return r
}

// Top returns the root of the region tree. Read-only: guest code must not
// reset or delete it.
func Top(h pgruntime.Host) *Region {
	return wellKnown(h, pgruntime.TopRegion)
}

// Statement returns the per-statement region the host resets after every
// statement. Read-only.
func Statement(h pgruntime.Host) *Region {
	return wellKnown(h, pgruntime.StatementRegion)
}

// ErrorRecovery returns the host's reserved error-recovery region. Read-only.
func ErrorRecovery(h pgruntime.Host) *Region {
	return wellKnown(h, pgruntime.ErrorRegion)
}

// Cache returns the host's long-lived cache region. Read-only.
func Cache(h pgruntime.Host) *Region {
	return wellKnown(h, pgruntime.CacheRegion)
}

// Transaction returns the transaction-scoped region. Read-only.
func Transaction(h pgruntime.Host) *Region {
	return wellKnown(h, pgruntime.TransactionRegion)
}

func wellKnown(h pgruntime.Host, k pgruntime.WellKnown) *Region {
	return &Region{h: h, id: h.WellKnownRegion(k), permanent: true}
}

// ID returns the underlying host region handle.
func (r *Region) ID() pgruntime.RegionID { return r.id }

// Alloc returns size bytes owned by this region. The host reclaims the
// storage in bulk when the region is reset or deleted; Free is optional.
func (r *Region) Alloc(size uint32) pgruntime.Datum {
	return r.h.RegionAlloc(r.id, size, false)
}

// AllocZero is Alloc with cleared storage.
func (r *Region) AllocZero(size uint32) pgruntime.Datum {
	return r.h.RegionAlloc(r.id, size, true)
}

// Free explicitly releases one allocation made anywhere in this region's
// subtree.
func (r *Region) Free(ptr pgruntime.Datum) {
	r.h.RegionFree(r.id, ptr)
}

// Child derives a new region under this one.
func (r *Region) Child(name string, sizing pgruntime.RegionSizing) *Region {
	return &Region{h: r.h, id: r.h.RegionCreate(r.id, name, sizing)}
}

// Reset frees this region's contents and, recursively, its children's.
func (r *Region) Reset() error {
	if r.permanent {
		return errors.ReadOnly("region")
	}
	r.h.RegionReset(r.id, true)
	return nil
}

// ResetOnly frees this region's contents, leaving children untouched.
func (r *Region) ResetOnly() error {
	if r.permanent {
		return errors.ReadOnly("region")
	}
	r.h.RegionReset(r.id, false)
	return nil
}

// Delete tears down the region and all of its children.
func (r *Region) Delete() error {
	if r.permanent {
		return errors.ReadOnly("region")
	}
	r.h.RegionDelete(r.id)
	return nil
}

// With switches the current region to r, runs fn, and restores the previous
// current region on every exit path: normal return, guest panic, and host
// non-local exit inside fn. This is the only sanctioned way to adopt a
// region; swapping by hand loses the restore guarantee.
func (r *Region) With(fn func() error) error {
	prev := r.h.SwapCurrentRegion(r.id)
	defer r.h.SwapCurrentRegion(prev)
	return fn()
}
