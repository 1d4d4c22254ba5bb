// Package rc implements Rc, the single-goroutine shared-ownership handle,
// and its non-owning companion Weak.
//
// An Rc allocation carries plain (unsynchronized) strong and weak counts;
// the whole handle graph for one allocation must stay on a single goroutine.
// For cross-goroutine sharing use package arc, which is the same state
// machine over atomic counts.
//
// Lifecycle:
//   - New allocates with strong=1.
//   - Clone adds an owner; every handle must be Dropped exactly once.
//   - The Drop that brings the strong count to zero runs the value
//     destructor, exactly once.
//   - The allocation metadata is detached once the weak count also reaches
//     zero (weak handles never extend the value's lifetime, only the
//     metadata's).
//
// The payload must not be mutated through an Rc directly: Get returns a
// pointer for shared read access, and the shared-xor-mutable discipline is
// the caller's to honor by nesting a cell.Cell in the payload —
// rc.Rc[*cell.Cell[T]] is the canonical shared-mutable-state idiom.
//
// Every handle misuse that a static borrow checker would reject at compile
// time — use after drop, double drop, count overflow — is a runtime panic
// here. That trade is documented in the module-level docs.
package rc

import (
	"github.com/kolkov/smartptr/internal/counts"
	"github.com/kolkov/smartptr/internal/liveset"
)

// header is the shared allocation: payload, destructor and count metadata.
// Handles point at it; it is detached (payload zeroed, live-set entry
// removed) when both counts reach zero.
type header[T any] struct {
	counts *counts.Plain
	value  T
	drop   func(T)
	live   uint64
}

func (h *header[T]) destroyValue() {
	drop := h.drop
	v := h.value
	var zero T
	h.value = zero
	h.drop = nil
	if drop != nil {
		drop(v)
	}
}

func (h *header[T]) detach() {
	liveset.Unregister(h.live)
	h.live = 0
}

// Rc is an owning handle. Each handle is dropped independently; copying the
// struct instead of calling Clone breaks the count invariants and is a
// programmer error the runtime cannot see.
type Rc[T any] struct {
	h *header[T]
}

// New allocates a shared value with a single owner (strong=1, no weaks).
func New[T any](v T) *Rc[T] {
	return NewWithDrop(v, nil)
}

// NewWithDrop is New with a destructor that runs exactly once, on the drop
// of the last owning handle.
func NewWithDrop[T any](v T, drop func(T)) *Rc[T] {
	return &Rc[T]{h: &header[T]{
		counts: counts.NewPlain(),
		value:  v,
		drop:   drop,
		live:   liveset.Register("rc"),
	}}
}

func (r *Rc[T]) header() *header[T] {
	if r.h == nil {
		panic("rc: use of dead Rc handle (already dropped)")
	}
	return r.h
}

// Clone returns a new owning handle to the same allocation, incrementing
// the strong count. Overflow at the representable maximum panics.
func (r *Rc[T]) Clone() *Rc[T] {
	h := r.header()
	h.counts.IncStrong()
	return &Rc[T]{h: h}
}

// Drop releases this handle. The drop that brings the strong count to zero
// runs the destructor; if no weak handles remain the metadata is detached
// too. Dropping a handle twice panics.
func (r *Rc[T]) Drop() {
	h := r.header()
	r.h = nil
	if h.counts.DecStrong() {
		h.destroyValue()
		if h.counts.DecWeak() { // the owners' collective weak reference
			h.detach()
		}
	}
}

// Get returns a pointer to the shared value for read access.
func (r *Rc[T]) Get() *T {
	return &r.header().value
}

// Downgrade returns a non-owning Weak handle, incrementing only the weak
// count. The value's lifetime is unaffected.
func (r *Rc[T]) Downgrade() *Weak[T] {
	h := r.header()
	h.counts.IncWeak()
	return &Weak[T]{h: h}
}

// StrongCount returns the number of owning handles. Diagnostic use only.
func (r *Rc[T]) StrongCount() int64 {
	return r.header().counts.Strong()
}

// WeakCount returns the number of live Weak handles. Diagnostic use only.
func (r *Rc[T]) WeakCount() int64 {
	// The raw weak count includes the implicit reference held collectively
	// by the owners while any of them is alive.
	return r.header().counts.Weak() - 1
}
