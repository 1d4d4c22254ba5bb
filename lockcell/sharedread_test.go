package lockcell

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentReadersOverlap proves multiple read guards are held
// simultaneously: every reader checks in at a barrier while still holding
// its guard.
func TestConcurrentReadersOverlap(t *testing.T) {
	const readers = 6

	s := NewSharedRead(42)

	var holding sync.WaitGroup
	var done sync.WaitGroup
	release := make(chan struct{})

	holding.Add(readers)
	done.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer done.Done()
			g, err := s.RLock()
			require.NoError(t, err)
			assert.Equal(t, 42, *g.Get())
			holding.Done() // guard held: wait for all siblings before releasing
			<-release
			g.Unlock()
		}()
	}

	holding.Wait() // all readers hold guards at the same time
	close(release)
	done.Wait()
}

// TestWriterExcludedByReaders verifies the write guard is granted only at
// zero readers.
func TestWriterExcludedByReaders(t *testing.T) {
	s := NewSharedRead(0)

	r1, err := s.RLock()
	require.NoError(t, err)
	r2, err := s.RLock()
	require.NoError(t, err)

	_, err = s.TryLock()
	require.ErrorIs(t, err, ErrWouldBlock, "writer admitted with readers outstanding")

	r1.Unlock()
	_, err = s.TryLock()
	require.ErrorIs(t, err, ErrWouldBlock, "writer admitted with a reader outstanding")

	r2.Unlock()
	w, err := s.TryLock()
	require.NoError(t, err, "writer refused with no readers outstanding")
	w.Unlock()
}

// TestReadersExcludedByWriter verifies new readers are blocked while the
// write guard is out.
func TestReadersExcludedByWriter(t *testing.T) {
	s := NewSharedRead(0)

	w, err := s.Lock()
	require.NoError(t, err)

	_, err = s.TryRLock()
	require.ErrorIs(t, err, ErrWouldBlock, "reader admitted during write")
	_, err = s.TryLock()
	require.ErrorIs(t, err, ErrWouldBlock, "second writer admitted")

	w.Unlock()

	r, err := s.TryRLock()
	require.NoError(t, err)
	r.Unlock()
}

// TestBlockedWriterEventuallyAdmitted verifies a writer waiting behind
// readers is admitted once they drain, and its write is visible to
// subsequent readers.
func TestBlockedWriterEventuallyAdmitted(t *testing.T) {
	s := NewSharedRead(0)

	r, err := s.RLock()
	require.NoError(t, err)

	wrote := make(chan struct{})
	go func() {
		w, werr := s.Lock() // blocks behind the reader
		require.NoError(t, werr)
		w.Set(99)
		w.Unlock()
		close(wrote)
	}()

	// Give the writer time to queue, then drain the reader.
	time.Sleep(10 * time.Millisecond)
	r.Unlock()

	<-wrote
	require.NoError(t, s.DoRead(func(v *int) error {
		assert.Equal(t, 99, *v)
		return nil
	}))
}

// TestWriteLockLosesNoUpdates runs concurrent writer increments; the total
// must be exact.
func TestWriteLockLosesNoUpdates(t *testing.T) {
	const workers = 4
	const iters = 1000

	s := NewSharedRead(0)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				w, err := s.Lock()
				require.NoError(t, err)
				*w.Get()++
				w.Unlock()
			}
		}()
	}
	wg.Wait()

	require.NoError(t, s.DoRead(func(v *int) error {
		assert.Equal(t, workers*iters, *v)
		return nil
	}))
}

// TestWriterPanicPoisons verifies the write-side Do carries the poison
// transition, and that read acquisitions report it too.
func TestWriterPanicPoisons(t *testing.T) {
	s := NewSharedRead("consistent")

	func() {
		defer func() { _ = recover() }()
		_ = s.Do(func(v *string) error {
			*v = "torn"
			panic("writer dies")
		})
	}()

	require.True(t, s.Poisoned())

	g, err := s.RLock()
	var pe *PoisonError
	require.ErrorAs(t, err, &pe, "RLock on a poisoned cell must report PoisonError")
	assert.Equal(t, "torn", *g.Get(), "guard still exposes the suspect payload")
	g.Unlock()

	s.ClearPoison()
	r, err := s.RLock()
	require.NoError(t, err)
	r.Unlock()
}

// TestReaderPanicDoesNotPoison verifies a panicking reader releases its
// guard without poisoning — it cannot have torn the payload.
func TestReaderPanicDoesNotPoison(t *testing.T) {
	s := NewSharedRead(1)

	func() {
		defer func() { _ = recover() }()
		_ = s.DoRead(func(*int) error { panic("reader dies") })
	}()

	assert.False(t, s.Poisoned())

	// Guard was released on the way out: a writer can get in.
	w, err := s.TryLock()
	require.NoError(t, err)
	w.Unlock()
}
