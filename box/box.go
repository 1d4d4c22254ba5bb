// Package box implements Box, the unique-ownership heap handle.
//
// A Box is the simplest owning handle: exactly one owner, deterministic
// destruction, direct payload access with no borrow bookkeeping. Exclusivity
// normally comes from a type system that forbids duplicating the handle; Go
// has no move-only types, so the discipline is enforced at runtime instead —
// a Box that has been dropped or moved from is dead, and any further use
// panics with a use-after-free diagnostic. This runtime collapse of a
// compile-time guarantee is deliberate and shared by every handle family in
// this module.
//
// Ownership of the payload can leave a Box exactly once, either through
// Drop (destructor runs) or Into (the value moves out and the destructor
// obligation moves with it).
package box

import "github.com/kolkov/smartptr/internal/liveset"

// Box is a single-owner heap handle for a value of type T.
// The zero Box is dead; create one with New or NewWithDrop.
type Box[T any] struct {
	value T
	drop  func(T)
	alive bool
	live  uint64
}

// New allocates a Box owning v, with no destructor beyond releasing the
// allocation.
func New[T any](v T) *Box[T] {
	return NewWithDrop(v, nil)
}

// NewWithDrop allocates a Box owning v. drop, if non-nil, runs exactly once
// when the Box is dropped — and does not run if the value is moved out with
// Into, since ownership (and the destruction obligation) moves with it.
func NewWithDrop[T any](v T, drop func(T)) *Box[T] {
	return &Box[T]{
		value: v,
		drop:  drop,
		alive: true,
		live:  liveset.Register("box"),
	}
}

// Get returns a pointer to the owned value. The caller holds the only
// handle, so access is unchecked beyond the liveness test.
func (b *Box[T]) Get() *T {
	if !b.alive {
		panic("box: use of dead Box (already dropped or moved from)")
	}
	return &b.value
}

// Set replaces the owned value.
func (b *Box[T]) Set(v T) {
	*b.Get() = v
}

// Into moves the value out, killing the Box. The destructor does not run:
// the caller now owns the value and whatever cleanup it needs.
func (b *Box[T]) Into() T {
	if !b.alive {
		panic("box: move out of dead Box (already dropped or moved from)")
	}
	v := b.value
	b.kill()
	return v
}

// Drop destroys the value (running the destructor, if any) and releases the
// allocation. Dropping a dead Box panics: the double free this would be in
// an unmanaged host is a programmer error here too.
func (b *Box[T]) Drop() {
	if !b.alive {
		panic("box: double drop of Box")
	}
	v := b.value
	drop := b.drop
	b.kill()
	if drop != nil {
		drop(v)
	}
}

// Alive reports whether the Box still owns its value. Diagnostic use.
func (b *Box[T]) Alive() bool { return b.alive }

func (b *Box[T]) kill() {
	var zero T
	b.value = zero
	b.drop = nil
	b.alive = false
	liveset.Unregister(b.live)
	b.live = 0
}
