package arc

// Weak is a non-owning handle, safe to use from any goroutine. It never
// keeps the value alive; it can only try to mint a new owner while one
// still exists. Weak back-references are the cycle-breaking edge in shared
// ownership graphs, exactly as in package rc.
type Weak[T any] struct {
	h *header[T]
}

func (w *Weak[T]) header() *header[T] {
	if w.h == nil {
		panic("arc: use of dead Weak handle (already dropped)")
	}
	return w.h
}

// Upgrade attempts to mint a new owning handle.
//
// The increment races against concurrent drops, so it runs as a
// compare-and-swap retry loop: observe the strong count, give up on zero,
// otherwise CAS from the observed value and retry on contention. A blind
// add could resurrect the value between a zero check and the increment.
func (w *Weak[T]) Upgrade() (*Arc[T], bool) {
	h := w.header()
	if !h.counts.TryIncStrong() {
		return nil, false
	}
	return &Arc[T]{h: h}, true
}

// Drop releases this weak handle; the last weak after the last owner
// detaches the allocation metadata.
func (w *Weak[T]) Drop() {
	h := w.header()
	w.h = nil
	if h.counts.DecWeak() {
		h.detach()
	}
}

// StrongCount returns a racy snapshot of the owner count. Diagnostic only.
func (w *Weak[T]) StrongCount() int64 {
	return w.header().counts.Strong()
}
