package counts

import (
	"sync"
	"testing"
)

// TestPlainLifecycle verifies the canonical owner lifecycle:
// new(1) → clone(2) → drop(1) → drop(0, destroy) → implicit weak drop(detach).
func TestPlainLifecycle(t *testing.T) {
	c := NewPlain()

	if c.Strong() != 1 || c.Weak() != 1 {
		t.Fatalf("NewPlain() = strong %d weak %d, want 1/1", c.Strong(), c.Weak())
	}

	c.IncStrong()
	if c.Strong() != 2 {
		t.Errorf("after IncStrong, strong = %d, want 2", c.Strong())
	}

	if c.DecStrong() {
		t.Error("DecStrong at strong=2 reported destroy")
	}
	if !c.DecStrong() {
		t.Error("DecStrong at strong=1 did not report destroy")
	}
	if !c.DecWeak() {
		t.Error("implicit DecWeak did not report metadata detach")
	}
}

// TestPlainWeakOutlivesStrong verifies that metadata detach waits for the
// last weak reference when weak handles outlive the owners.
func TestPlainWeakOutlivesStrong(t *testing.T) {
	c := NewPlain()
	c.IncWeak() // downgrade

	if !c.DecStrong() {
		t.Fatal("last DecStrong did not report destroy")
	}
	if c.DecWeak() { // implicit weak dropped by the destroying owner
		t.Error("metadata detached while a weak handle is still live")
	}
	if !c.DecWeak() { // the real weak handle drops
		t.Error("last DecWeak did not report metadata detach")
	}
}

// TestPlainTryIncStrong verifies upgrade semantics around the zero boundary.
func TestPlainTryIncStrong(t *testing.T) {
	c := NewPlain()
	if !c.TryIncStrong() {
		t.Fatal("TryIncStrong failed with strong=1")
	}
	c.DecStrong()
	c.DecStrong()

	if c.TryIncStrong() {
		t.Error("TryIncStrong resurrected a dead value")
	}
}

// TestPlainUnderflowPanics verifies that a double drop is a hard failure,
// not a silent wrap.
func TestPlainUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("DecStrong past zero did not panic")
		}
	}()
	c := NewPlain()
	c.DecStrong()
	c.DecStrong()
}

// TestAtomicCloneDropProperty checks the counting property under heavy
// concurrent clone/drop traffic: after k clones and k drops spread over many
// goroutines, exactly the original owner remains and no destroy fired.
func TestAtomicCloneDropProperty(t *testing.T) {
	const workers = 8
	const perWorker = 2000

	c := NewAtomic()
	destroys := 0
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				c.IncStrong()
				if c.DecStrong() {
					mu.Lock()
					destroys++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if destroys != 0 {
		t.Errorf("destroy fired %d times with the original owner still live", destroys)
	}
	if got := c.Strong(); got != 1 {
		t.Errorf("strong = %d after balanced clone/drop, want 1", got)
	}
	if !c.DecStrong() {
		t.Error("final drop did not report destroy")
	}
}

// TestAtomicTryIncStrongAfterZero verifies that the CAS loop refuses to
// resurrect once the strong count has reached zero.
func TestAtomicTryIncStrongAfterZero(t *testing.T) {
	c := NewAtomic()
	c.DecStrong()

	for i := 0; i < 100; i++ {
		if c.TryIncStrong() {
			t.Fatal("TryIncStrong resurrected a dead value")
		}
	}
}

// TestAtomicConcurrentUpgradeRace hammers TryIncStrong against a dropping
// owner. Either the upgrade wins (and must be paired with a later drop) or
// it observes zero; the destructor decision must fire exactly once.
func TestAtomicConcurrentUpgradeRace(t *testing.T) {
	for i := 0; i < 200; i++ {
		c := NewAtomic()

		var wg sync.WaitGroup
		upgraded := make(chan bool, 4)

		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				upgraded <- c.TryIncStrong()
			}()
		}
		destroyed := c.DecStrong()
		wg.Wait()
		close(upgraded)

		wins := 0
		for ok := range upgraded {
			if ok {
				wins++
			}
		}
		if destroyed && wins > 0 {
			t.Fatal("upgrade succeeded after the destroying drop observed zero")
		}
		if !destroyed {
			// Upgrades kept the value alive; unwinding them must destroy
			// exactly once, on the last drop.
			for i := 0; i < wins; i++ {
				if got, want := c.DecStrong(), i == wins-1; got != want {
					t.Fatalf("drop %d/%d reported destroy=%v, want %v", i+1, wins, got, want)
				}
			}
		}
	}
}
