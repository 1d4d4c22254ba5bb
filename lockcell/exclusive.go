// Package lockcell implements the cross-goroutine mutation cells:
// Exclusive (one holder at a time, blocking, with poison-on-panic) and
// SharedRead (many readers xor one writer).
//
// These are the only sanctioned paths to mutating a value shared through
// package arc: the canonical idiom nests a cell in the shared payload, as
// in arc.Arc[*lockcell.Exclusive[T]]. The cells consume the platform's
// blocking primitives (sync.Mutex, sync.Cond) for the wait/wake machinery;
// they add the lock state machine, guard discipline and poisoning on top.
//
// Lock ordering is caller discipline: nothing here prevents two goroutines
// acquiring two cells in opposite orders from deadlocking. Programs holding
// multiple cells at once must acquire them in one fixed global order.
package lockcell

import (
	"sync"

	"github.com/kolkov/smartptr/internal/goid"
)

// Exclusive is a blocking mutual-exclusion cell. States: unlocked, locked
// (with the holder's goroutine id recorded for diagnostics), poisoned.
// The zero Exclusive guards the zero value of T and is ready to use; an
// Exclusive must not be copied after first use.
type Exclusive[T any] struct {
	mu       sync.Mutex
	unlocked sync.Cond // signaled when the holder releases

	locked     bool
	owner      int64 // goroutine id of the holder, diagnostic only
	poisoned   bool
	poisonedBy int64

	value T
}

// NewExclusive returns an unlocked cell guarding v.
func NewExclusive[T any](v T) *Exclusive[T] {
	return &Exclusive[T]{value: v}
}

// Lock blocks the calling goroutine until the cell is unlocked, then
// acquires it. If a previous holder poisoned the cell, the returned guard
// is still valid and usable; the accompanying *PoisonError tells the caller
// the payload is suspect.
func (x *Exclusive[T]) Lock() (*Guard[T], error) {
	x.mu.Lock()
	if x.unlocked.L == nil {
		x.unlocked.L = &x.mu
	}
	for x.locked {
		x.unlocked.Wait()
	}
	return x.acquireLocked()
}

// TryLock acquires the cell only if that cannot block. Returns
// ErrWouldBlock when another goroutine holds the cell; poisoning is
// reported the same way as Lock.
func (x *Exclusive[T]) TryLock() (*Guard[T], error) {
	x.mu.Lock()
	if x.unlocked.L == nil {
		x.unlocked.L = &x.mu
	}
	if x.locked {
		x.mu.Unlock()
		return nil, ErrWouldBlock
	}
	return x.acquireLocked()
}

// acquireLocked finishes an acquisition. Caller holds x.mu; the cell is
// unlocked. Releases x.mu.
func (x *Exclusive[T]) acquireLocked() (*Guard[T], error) {
	x.locked = true
	x.owner = goid.ID()
	poisoned, by := x.poisoned, x.poisonedBy
	x.mu.Unlock()

	g := &Guard[T]{cell: x}
	if poisoned {
		return g, &PoisonError{By: by}
	}
	return g, nil
}

// Do runs fn with the cell held, releasing on return. This is the scoped
// form that carries poison-on-abnormal-termination: if fn panics, the cell
// transitions to poisoned, the lock is released, and the panic resumes.
//
// Go offers no way for a bare guard to observe that its release happens
// during a panic unwind, so only Do — not Guard.Unlock — can poison.
// If the cell is already poisoned, fn does not run and the PoisonError is
// returned; recover with Lock and ClearPoison.
func (x *Exclusive[T]) Do(fn func(v *T) error) error {
	g, err := x.Lock()
	if err != nil {
		g.Unlock()
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			x.setPoisoned()
			g.Unlock()
			panic(r)
		}
	}()
	ferr := fn(g.Get())
	g.Unlock()
	return ferr
}

// Poisoned reports whether a previous holder terminated abnormally.
func (x *Exclusive[T]) Poisoned() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.poisoned
}

// ClearPoison removes the poison mark. The caller asserts it has restored
// (or accepted) the payload's consistency.
func (x *Exclusive[T]) ClearPoison() {
	x.mu.Lock()
	x.poisoned = false
	x.poisonedBy = 0
	x.mu.Unlock()
}

func (x *Exclusive[T]) setPoisoned() {
	x.mu.Lock()
	x.poisoned = true
	x.poisonedBy = goid.ID()
	x.mu.Unlock()
}

// Guard is the scoped token for a held Exclusive. Dropping it (Unlock) is
// what returns the cell to unlocked; mutation of the payload is legal only
// through a live Guard.
type Guard[T any] struct {
	cell     *Exclusive[T]
	released bool
}

// Get returns the guarded value for reading or writing.
func (g *Guard[T]) Get() *T {
	if g.released {
		panic("lockcell: use of released guard")
	}
	return &g.cell.value
}

// Set replaces the guarded value.
func (g *Guard[T]) Set(v T) {
	*g.Get() = v
}

// Unlock releases the cell: locked → unlocked, never poisoned (poisoning
// is the scoped Do form's job). Unlocking twice panics.
func (g *Guard[T]) Unlock() {
	if g.released {
		panic("lockcell: double unlock")
	}
	g.released = true

	x := g.cell
	x.mu.Lock()
	x.locked = false
	x.owner = 0
	x.unlocked.Signal()
	x.mu.Unlock()
}
