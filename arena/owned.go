package arena

import pgruntime "github.com/wippyai/pg-runtime"

// Owned is a guest-visible handle to region-resident storage with exclusive
// ownership. Releasing it frees the backing allocation exactly once; the
// region's own teardown covers it otherwise. An Owned must never outlive its
// region and must never cross an OS-thread boundary.
type Owned[T any] struct {
	value    T
	region   *Region
	ptr      pgruntime.Datum
	released bool
}

// NewOwned binds a decoded value to the region allocation backing it.
func NewOwned[T any](region *Region, ptr pgruntime.Datum, value T) *Owned[T] {
	return &Owned[T]{value: value, region: region, ptr: ptr}
}

// Value returns the owned value. Invalid after Release.
func (o *Owned[T]) Value() T { return o.value }

// Ptr returns the backing allocation.
func (o *Owned[T]) Ptr() pgruntime.Datum { return o.ptr }

// Released reports whether the backing storage was already freed.
func (o *Owned[T]) Released() bool { return o.released }

// Release frees the backing storage. Safe to call more than once; only the
// first call reaches the host.
func (o *Owned[T]) Release() {
	if o.released || o.ptr == 0 {
		return
	}
	o.released = true
	o.region.Free(o.ptr)
}
