// Package counts implements the strong/weak reference count engines shared
// by the rc and arc handle families.
//
// A count pair follows the collective-weak scheme: every strong handle
// collectively holds one implicit weak reference, dropped by whichever
// strong handle brings the strong count to zero. This makes the
// "free metadata when strong == 0 and weak == 0" rule a single question:
// did the weak count just reach zero?
//
// Two engines share one contract:
//   - Plain: unsynchronized, for single-goroutine handles (rc).
//   - Atomic: sync/atomic based, for cross-goroutine handles (arc).
//
// All transitions out of the legal count range are programmer errors and
// panic rather than wrap: a wrapped strong count would destroy a value
// that still has live owners.
package counts

import "sync/atomic"

// Count transition outcomes. DecStrong reporting true means the caller must
// run the value destructor now, exactly once. DecWeak reporting true means
// the caller must detach the allocation metadata now, exactly once.

// Plain is the unsynchronized count pair. Safe only when all handles to
// one allocation stay on a single goroutine.
type Plain struct {
	strong int64
	weak   int64
}

// NewPlain returns counts for a freshly created owning handle:
// strong=1 plus the implicit weak reference held by the strong side.
func NewPlain() *Plain {
	return &Plain{strong: 1, weak: 1}
}

// IncStrong adds an owner. Panics on overflow at the representable maximum.
func (c *Plain) IncStrong() {
	c.strong++
	if c.strong <= 0 {
		panic("counts: strong count overflow")
	}
}

// TryIncStrong adds an owner only if the value is still alive.
// Returns false once the strong count has reached zero.
func (c *Plain) TryIncStrong() bool {
	if c.strong == 0 {
		return false
	}
	c.IncStrong()
	return true
}

// DecStrong removes an owner. Returns true on the decrement that reaches
// zero; the caller must then run the value destructor and call DecWeak to
// drop the implicit weak reference.
func (c *Plain) DecStrong() bool {
	c.strong--
	if c.strong < 0 {
		panic("counts: strong count underflow (double drop)")
	}
	return c.strong == 0
}

// IncWeak adds a weak reference. Panics on overflow.
func (c *Plain) IncWeak() {
	c.weak++
	if c.weak <= 0 {
		panic("counts: weak count overflow")
	}
}

// DecWeak removes a weak reference. Returns true on the decrement that
// reaches zero, at which point the metadata must be detached.
func (c *Plain) DecWeak() bool {
	c.weak--
	if c.weak < 0 {
		panic("counts: weak count underflow (double drop)")
	}
	return c.weak == 0
}

// Strong returns the current strong count.
func (c *Plain) Strong() int64 { return c.strong }

// Weak returns the raw weak count, including the implicit weak reference
// held collectively by the strong handles while any of them is alive.
func (c *Plain) Weak() int64 { return c.weak }

// Atomic is the cross-goroutine count pair.
//
// Ordering: Go's sync/atomic operations are sequentially consistent, which
// subsumes the minimum the algorithm needs — a relaxed increment on clone
// and a release decrement paired with an acquire on the zero-observing
// thread, so every owner's writes are visible before the destructor runs.
type Atomic struct {
	strong atomic.Int64
	weak   atomic.Int64
}

// NewAtomic returns counts for a freshly created owning handle:
// strong=1 plus the implicit weak reference held by the strong side.
func NewAtomic() *Atomic {
	c := &Atomic{}
	c.strong.Store(1)
	c.weak.Store(1)
	return c
}

// IncStrong adds an owner. Panics on overflow at the representable maximum.
func (c *Atomic) IncStrong() {
	if c.strong.Add(1) <= 0 {
		panic("counts: strong count overflow")
	}
}

// TryIncStrong adds an owner only if the value is still alive.
//
// This must not blindly Add: between observing strong > 0 and incrementing,
// another goroutine could drop the last owner and destroy the value, and the
// increment would resurrect it. A compare-and-swap from the observed value
// closes that window; contention retries the loop.
func (c *Atomic) TryIncStrong() bool {
	for {
		n := c.strong.Load()
		if n == 0 {
			return false
		}
		if n < 0 || n+1 <= 0 {
			panic("counts: strong count overflow")
		}
		if c.strong.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// DecStrong removes an owner. Returns true on the decrement that reaches
// zero. Exactly one goroutine observes the zero and proceeds to destroy.
func (c *Atomic) DecStrong() bool {
	n := c.strong.Add(-1)
	if n < 0 {
		panic("counts: strong count underflow (double drop)")
	}
	return n == 0
}

// IncWeak adds a weak reference. Panics on overflow.
func (c *Atomic) IncWeak() {
	if c.weak.Add(1) <= 0 {
		panic("counts: weak count overflow")
	}
}

// DecWeak removes a weak reference. Returns true on the decrement that
// reaches zero.
func (c *Atomic) DecWeak() bool {
	n := c.weak.Add(-1)
	if n < 0 {
		panic("counts: weak count underflow (double drop)")
	}
	return n == 0
}

// Strong returns a snapshot of the strong count. Racy by nature: the value
// may be stale the moment it is read. Diagnostic use only.
func (c *Atomic) Strong() int64 { return c.strong.Load() }

// Weak returns a racy snapshot of the raw weak count, including the
// implicit weak reference. Diagnostic use only.
func (c *Atomic) Weak() int64 { return c.weak.Load() }
