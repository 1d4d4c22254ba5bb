package rc

// Weak is a non-owning handle. It can observe whether the value is still
// alive and, while it is, mint a new owning handle — but it never keeps the
// value alive itself. This is the tool for breaking ownership cycles: a
// parent owns its children through Rc, a child points back through Weak, and
// neither keeps the other alive forever.
type Weak[T any] struct {
	h *header[T]
}

func (w *Weak[T]) header() *header[T] {
	if w.h == nil {
		panic("rc: use of dead Weak handle (already dropped)")
	}
	return w.h
}

// Upgrade attempts to mint a new owning handle. It succeeds only while the
// strong count is above zero; once the value has been destroyed it reports
// false forever.
func (w *Weak[T]) Upgrade() (*Rc[T], bool) {
	h := w.header()
	if !h.counts.TryIncStrong() {
		return nil, false
	}
	return &Rc[T]{h: h}, true
}

// Drop releases this weak handle. The drop that brings the weak count to
// zero after the value is already gone detaches the allocation metadata.
func (w *Weak[T]) Drop() {
	h := w.header()
	w.h = nil
	if h.counts.DecWeak() {
		h.detach()
	}
}

// StrongCount returns the number of owning handles still alive.
// Diagnostic use only.
func (w *Weak[T]) StrongCount() int64 {
	return w.header().counts.Strong()
}
