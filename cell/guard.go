package cell

// Ref is a shared borrow guard. The value it exposes must be treated as
// read-only for the guard's lifetime; the runtime checks exclusivity, not
// what the caller does through the pointer.
type Ref[T any] struct {
	cell     *Cell[T]
	released bool
}

// Get returns the borrowed value for reading.
func (r *Ref[T]) Get() *T {
	if r.released {
		panic("cell: use of released shared borrow")
	}
	return &r.cell.value
}

// Release returns this shared borrow: Shared(n) → Shared(n−1), reaching
// Unborrowed at zero. Independent of the release order of sibling guards.
// Releasing twice panics.
func (r *Ref[T]) Release() {
	if r.released {
		panic("cell: double release of shared borrow")
	}
	r.released = true
	r.cell.state--
}

// RefMut is the mutable borrow guard: exclusive access for its lifetime.
type RefMut[T any] struct {
	cell     *Cell[T]
	released bool
}

// Get returns the borrowed value for reading or writing.
func (m *RefMut[T]) Get() *T {
	if m.released {
		panic("cell: use of released mutable borrow")
	}
	return &m.cell.value
}

// Set replaces the borrowed value.
func (m *RefMut[T]) Set(v T) {
	*m.Get() = v
}

// Release ends the mutable borrow: MutablyBorrowed → Unborrowed.
// Releasing twice panics.
func (m *RefMut[T]) Release() {
	if m.released {
		panic("cell: double release of mutable borrow")
	}
	m.released = true
	m.cell.state = 0
}
