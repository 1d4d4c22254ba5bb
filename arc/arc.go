// Package arc implements Arc, the cross-goroutine shared-ownership handle,
// and its non-owning companion Weak.
//
// Arc is package rc's state machine over atomic counts: handles to one
// allocation may be cloned, dropped, downgraded and upgraded from any
// number of goroutines concurrently. The safety-critical detail is the
// decrement ordering — the goroutine that observes the strong count reach
// zero must see every other owner's writes before it runs the destructor.
// Go's sync/atomic operations are sequentially consistent, which subsumes
// the release-decrement/acquire-on-zero pairing this requires; the CAS loop
// in Weak.Upgrade closes the check-then-increment resurrection window.
//
// The payload itself is never synchronized by Arc. Mutating shared state
// through an Arc requires a lock cell nested in the payload:
//
//	shared := arc.New(lockcell.NewExclusive([]int{}))
//
// is the canonical shared-mutable-state idiom; Arc hands out the cell, the
// cell serializes the mutation.
package arc

import (
	"github.com/kolkov/smartptr/internal/counts"
	"github.com/kolkov/smartptr/internal/liveset"
)

type header[T any] struct {
	counts *counts.Atomic
	value  T
	drop   func(T)
	live   uint64
}

// destroyValue runs on exactly one goroutine: the one whose drop observed
// the strong count reach zero. No owner can access the payload anymore and
// weak upgrades are already refused, so the plain writes here cannot race.
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

// Arc is an owning handle, safe to use from any goroutine. Each handle is
// still dropped exactly once; handles themselves are not shared between
// goroutines — clones are.
type Arc[T any] struct {
	h *header[T]
}

// New allocates a shared value with a single owner (strong=1, no weaks).
func New[T any](v T) *Arc[T] {
	return NewWithDrop(v, nil)
}

// NewWithDrop is New with a destructor that runs exactly once, on whichever
// goroutine drops the last owning handle.
func NewWithDrop[T any](v T, drop func(T)) *Arc[T] {
	return &Arc[T]{h: &header[T]{
		counts: counts.NewAtomic(),
		value:  v,
		drop:   drop,
		live:   liveset.Register("arc"),
	}}
}

func (a *Arc[T]) header() *header[T] {
	if a.h == nil {
		panic("arc: use of dead Arc handle (already dropped)")
	}
	return a.h
}

// Clone returns a new owning handle, incrementing the strong count.
// The increment itself needs no ordering — correctness rests entirely on
// the decrement side. Overflow at the representable maximum panics.
func (a *Arc[T]) Clone() *Arc[T] {
	h := a.header()
	h.counts.IncStrong()
	return &Arc[T]{h: h}
}

// Drop releases this handle. Exactly one drop observes the count reach
// zero, runs the destructor there, and — once no weak handles remain —
// detaches the metadata. Dropping a handle twice panics.
func (a *Arc[T]) Drop() {
	h := a.header()
	a.h = nil
	if h.counts.DecStrong() {
		h.destroyValue()
		if h.counts.DecWeak() {
			h.detach()
		}
	}
}

// Get returns a pointer to the shared value for read access. Mutation goes
// through a cell nested in the payload, never through this pointer.
func (a *Arc[T]) Get() *T {
	return &a.header().value
}

// Downgrade returns a non-owning Weak handle.
func (a *Arc[T]) Downgrade() *Weak[T] {
	h := a.header()
	h.counts.IncWeak()
	return &Weak[T]{h: h}
}

// StrongCount returns a racy snapshot of the owner count: it may be stale
// the moment it returns and must never back a correctness decision.
func (a *Arc[T]) StrongCount() int64 {
	return a.header().counts.Strong()
}

// WeakCount returns a racy snapshot of the live Weak handle count.
// Diagnostic use only.
func (a *Arc[T]) WeakCount() int64 {
	h := a.header()
	w := h.counts.Weak()
	if h.counts.Strong() > 0 {
		// Exclude the implicit weak reference the owners hold collectively.
		w--
	}
	return w
}
