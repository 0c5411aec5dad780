// Package arena routes allocation through the host's hierarchical memory
// regions.
//
// Regions own their allocations: the host reclaims everything in bulk when a
// region is reset or deleted, so per-allocation frees are optional. Exactly
// one region is current per backend; With temporarily adopts a region as
// current and restores the previous one on every exit path, including a host
// non-local exit inside the closure.
//
// Allocation failure is host-fatal. The host aborts on true exhaustion, so
// it is not modeled as a recoverable error here.
package arena
