// Package cell implements Cell, the runtime-checked interior-mutability
// primitive for single-goroutine code.
//
// A Cell guards one value with the shared-xor-mutable rule a static borrow
// checker would enforce at compile time: any number of simultaneous shared
// borrows, or exactly one mutable borrow, never both. The rule is checked
// at runtime by a three-way state word; a violating access is a
// BorrowConflict, surfaced as an error on the Try paths and a panic on the
// default paths.
//
// Borrows are scoped by guards: Borrow returns a Ref, BorrowMut returns a
// RefMut, and releasing the guard is what drives the state machine back
// toward Unborrowed. Guards may be released in any order.
//
// Cell performs no synchronization — like the counts in package rc, it is
// single-goroutine by contract. The cross-goroutine analogues live in
// package lockcell.
package cell

import (
	"fmt"
	"math"
)

// State is the borrow state word: 0 unborrowed, n>0 shared with n readers,
// stateMut mutably borrowed.
type State int32

const stateMut State = -1

// Unborrowed reports whether no borrow is outstanding.
func (s State) Unborrowed() bool { return s == 0 }

// Shared reports whether at least one shared borrow is outstanding.
func (s State) Shared() bool { return s > 0 }

// Mutable reports whether the mutable borrow is outstanding.
func (s State) Mutable() bool { return s == stateMut }

// Readers returns the number of outstanding shared borrows.
func (s State) Readers() int32 {
	if s > 0 {
		return int32(s)
	}
	return 0
}

func (s State) String() string {
	switch {
	case s.Mutable():
		return "mutably borrowed"
	case s.Shared():
		return fmt.Sprintf("shared-borrowed (%d readers)", int32(s))
	default:
		return "unborrowed"
	}
}

// AccessKind names the side of the shared-xor-mutable rule an access
// belongs to. Used in conflict diagnostics.
type AccessKind int

const (
	AccessShared AccessKind = iota
	AccessMutable
)

func (k AccessKind) String() string {
	if k == AccessMutable {
		return "mutable"
	}
	return "shared"
}

// BorrowError reports a rejected borrow: the access that was requested and
// the state that refused it.
type BorrowError struct {
	Requested AccessKind
	State     State
}

func (e *BorrowError) Error() string {
	return fmt.Sprintf("cell: %s borrow rejected: cell is %s", e.Requested, e.State)
}

// Cell wraps a value with runtime borrow checking. The zero Cell guards the
// zero value of T and is ready to use.
type Cell[T any] struct {
	state State
	value T
}

// New returns a Cell guarding v, unborrowed.
func New[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// TryBorrow takes a shared borrow: Unborrowed → Shared(1) or Shared(n) →
// Shared(n+1). Fails with a BorrowError while the mutable borrow is out.
func (c *Cell[T]) TryBorrow() (*Ref[T], error) {
	if c.state.Mutable() {
		return nil, &BorrowError{Requested: AccessShared, State: c.state}
	}
	if c.state == math.MaxInt32 {
		panic("cell: shared borrow count overflow")
	}
	c.state++
	return &Ref[T]{cell: c}, nil
}

// Borrow is TryBorrow with the default failure policy: a conflict panics at
// the call site with the conflict diagnostic.
func (c *Cell[T]) Borrow() *Ref[T] {
	g, err := c.TryBorrow()
	if err != nil {
		panic(err)
	}
	return g
}

// TryBorrowMut takes the mutable borrow: Unborrowed → MutablyBorrowed only.
// Fails with a BorrowError while any borrow — shared or mutable — is out.
func (c *Cell[T]) TryBorrowMut() (*RefMut[T], error) {
	if !c.state.Unborrowed() {
		return nil, &BorrowError{Requested: AccessMutable, State: c.state}
	}
	c.state = stateMut
	return &RefMut[T]{cell: c}, nil
}

// BorrowMut is TryBorrowMut with the default failure policy: a conflict
// panics at the call site with the conflict diagnostic.
func (c *Cell[T]) BorrowMut() *RefMut[T] {
	g, err := c.TryBorrowMut()
	if err != nil {
		panic(err)
	}
	return g
}

// State returns the current borrow state. Diagnostic accessor.
func (c *Cell[T]) State() State { return c.state }
