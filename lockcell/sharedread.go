package lockcell

import (
	"sync"

	"github.com/kolkov/smartptr/internal/goid"
)

// SharedRead is the many-readers-xor-one-writer cell for read-heavy shared
// state. Any number of goroutines may hold read guards simultaneously; the
// write guard is granted only when no reader and no other writer is
// outstanding.
//
// Writers are preferred: once a writer is waiting, new readers queue behind
// it. This keeps a steady reader stream from starving writers, at the cost
// of reader latency spikes around writes.
//
// The zero SharedRead guards the zero value of T and is ready to use; a
// SharedRead must not be copied after first use.
type SharedRead[T any] struct {
	mu      sync.Mutex
	readOK  sync.Cond // readers wait here while a writer holds or waits
	writeOK sync.Cond // writers wait here for readers to drain

	readers        int
	writer         bool
	writersWaiting int
	owner          int64 // writing goroutine id, diagnostic only
	poisoned       bool
	poisonedBy     int64

	value T
}

// NewSharedRead returns an idle cell guarding v.
func NewSharedRead[T any](v T) *SharedRead[T] {
	return &SharedRead[T]{value: v}
}

func (s *SharedRead[T]) lazyInit() {
	if s.readOK.L == nil {
		s.readOK.L = &s.mu
		s.writeOK.L = &s.mu
	}
}

// RLock blocks until no writer holds or awaits the cell, then takes a read
// guard. Poisoning by a past writer is reported alongside the usable guard.
func (s *SharedRead[T]) RLock() (*ReadGuard[T], error) {
	s.mu.Lock()
	s.lazyInit()
	for s.writer || s.writersWaiting > 0 {
		s.readOK.Wait()
	}
	s.readers++
	poisoned, by := s.poisoned, s.poisonedBy
	s.mu.Unlock()

	g := &ReadGuard[T]{cell: s}
	if poisoned {
		return g, &PoisonError{By: by}
	}
	return g, nil
}

// TryRLock takes a read guard only if that cannot block.
func (s *SharedRead[T]) TryRLock() (*ReadGuard[T], error) {
	s.mu.Lock()
	s.lazyInit()
	if s.writer || s.writersWaiting > 0 {
		s.mu.Unlock()
		return nil, ErrWouldBlock
	}
	s.readers++
	poisoned, by := s.poisoned, s.poisonedBy
	s.mu.Unlock()

	g := &ReadGuard[T]{cell: s}
	if poisoned {
		return g, &PoisonError{By: by}
	}
	return g, nil
}

// Lock blocks until the cell has no readers and no writer, then takes the
// write guard.
func (s *SharedRead[T]) Lock() (*WriteGuard[T], error) {
	s.mu.Lock()
	s.lazyInit()
	s.writersWaiting++
	for s.writer || s.readers > 0 {
		s.writeOK.Wait()
	}
	s.writersWaiting--
	return s.acquireWriteLocked()
}

// TryLock takes the write guard only if that cannot block.
func (s *SharedRead[T]) TryLock() (*WriteGuard[T], error) {
	s.mu.Lock()
	s.lazyInit()
	if s.writer || s.readers > 0 {
		s.mu.Unlock()
		return nil, ErrWouldBlock
	}
	return s.acquireWriteLocked()
}

// acquireWriteLocked finishes a write acquisition. Caller holds s.mu; no
// reader or writer is outstanding. Releases s.mu.
func (s *SharedRead[T]) acquireWriteLocked() (*WriteGuard[T], error) {
	s.writer = true
	s.owner = goid.ID()
	poisoned, by := s.poisoned, s.poisonedBy
	s.mu.Unlock()

	g := &WriteGuard[T]{cell: s}
	if poisoned {
		return g, &PoisonError{By: by}
	}
	return g, nil
}

// Do runs fn with the write guard held, poisoning the cell and re-raising
// if fn panics — the same scoped poison carrier as Exclusive.Do. An already
// poisoned cell returns its PoisonError without running fn.
func (s *SharedRead[T]) Do(fn func(v *T) error) error {
	g, err := s.Lock()
	if err != nil {
		g.Unlock()
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			s.setPoisoned()
			g.Unlock()
			panic(r)
		}
	}()
	ferr := fn(g.Get())
	g.Unlock()
	return ferr
}

// DoRead runs fn with a read guard held. A panicking reader cannot have
// torn the payload, so the cell is not poisoned; the panic resumes after
// the guard releases.
func (s *SharedRead[T]) DoRead(fn func(v *T) error) error {
	g, err := s.RLock()
	if err != nil {
		g.Unlock()
		return err
	}
	defer g.Unlock()
	return fn(g.Get())
}

// Poisoned reports whether a past writer terminated abnormally.
func (s *SharedRead[T]) Poisoned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poisoned
}

// ClearPoison removes the poison mark.
func (s *SharedRead[T]) ClearPoison() {
	s.mu.Lock()
	s.poisoned = false
	s.poisonedBy = 0
	s.mu.Unlock()
}

func (s *SharedRead[T]) setPoisoned() {
	s.mu.Lock()
	s.poisoned = true
	s.poisonedBy = goid.ID()
	s.mu.Unlock()
}

// ReadGuard is a scoped shared-read token. The exposed value is read-only
// by contract for the guard's lifetime.
type ReadGuard[T any] struct {
	cell     *SharedRead[T]
	released bool
}

// Get returns the guarded value for reading.
func (g *ReadGuard[T]) Get() *T {
	if g.released {
		panic("lockcell: use of released read guard")
	}
	return &g.cell.value
}

// Unlock releases this read guard. The last reader out wakes a waiting
// writer. Unlocking twice panics.
func (g *ReadGuard[T]) Unlock() {
	if g.released {
		panic("lockcell: double unlock of read guard")
	}
	g.released = true

	s := g.cell
	s.mu.Lock()
	s.readers--
	if s.readers == 0 && s.writersWaiting > 0 {
		s.writeOK.Signal()
	}
	s.mu.Unlock()
}

// WriteGuard is the scoped exclusive-write token.
type WriteGuard[T any] struct {
	cell     *SharedRead[T]
	released bool
}

// Get returns the guarded value for reading or writing.
func (g *WriteGuard[T]) Get() *T {
	if g.released {
		panic("lockcell: use of released write guard")
	}
	return &g.cell.value
}

// Set replaces the guarded value.
func (g *WriteGuard[T]) Set(v T) {
	*g.Get() = v
}

// Unlock releases the write guard, waking a waiting writer first if any,
// otherwise all queued readers. Unlocking twice panics.
func (g *WriteGuard[T]) Unlock() {
	if g.released {
		panic("lockcell: double unlock of write guard")
	}
	g.released = true

	s := g.cell
	s.mu.Lock()
	s.writer = false
	s.owner = 0
	if s.writersWaiting > 0 {
		s.writeOK.Signal()
	} else {
		s.readOK.Broadcast()
	}
	s.mu.Unlock()
}
