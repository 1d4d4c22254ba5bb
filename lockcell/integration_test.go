package lockcell

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolkov/smartptr/arc"
)

// TestArcExclusiveWorkers is the canonical shared-mutable-state scenario:
// an Arc[*Exclusive[[]int]] cloned across N workers, each appending M items
// under its own Lock. The final length must be exactly N*M — no lost
// updates, no deadlock — and the destructor must fire once when the last
// clone drops.
func TestArcExclusiveWorkers(t *testing.T) {
	const workers = 8
	const perWorker = 1000

	destroyed := make(chan struct{})
	shared := arc.NewWithDrop(NewExclusive([]int(nil)), func(*Exclusive[[]int]) {
		close(destroyed)
	})

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		clone := shared.Clone()
		go func() {
			defer wg.Done()
			defer clone.Drop()
			for i := 0; i < perWorker; i++ {
				g, err := (*clone.Get()).Lock()
				require.NoError(t, err)
				*g.Get() = append(*g.Get(), w*perWorker+i)
				g.Unlock()
			}
		}()
	}
	wg.Wait()

	g, err := (*shared.Get()).Lock()
	require.NoError(t, err)
	assert.Len(t, *g.Get(), workers*perWorker, "lost updates across workers")
	g.Unlock()

	shared.Drop()
	<-destroyed
}

// TestArcSharedReadFanOut drives a read-heavy workload: one writer bumps a
// version under the write guard while many readers snapshot it. Readers
// must never observe a torn pair.
func TestArcSharedReadFanOut(t *testing.T) {
	type versioned struct {
		version int
		double  int // invariant: double == 2*version
	}

	const readers = 6
	const writes = 500

	shared := arc.New(NewSharedRead(versioned{}))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < readers; i++ {
		wg.Add(1)
		clone := shared.Clone()
		go func() {
			defer wg.Done()
			defer clone.Drop()
			for {
				select {
				case <-stop:
					return
				default:
				}
				err := (*clone.Get()).DoRead(func(v *versioned) error {
					assert.Equal(t, 2*v.version, v.double, "torn read")
					return nil
				})
				assert.NoError(t, err)
			}
		}()
	}

	for i := 0; i < writes; i++ {
		err := (*shared.Get()).Do(func(v *versioned) error {
			v.version++
			v.double = 2 * v.version
			return nil
		})
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()

	shared.Drop()
}
