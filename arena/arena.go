// Package arena is a slab allocator for raw byte blocks, carved out of
// anonymous memory mappings where the platform supports them. It plays the
// external-allocator role for the owning handles in this module: box, rc
// and arc manage typed values on the Go heap, while arena hands out
// fixed-alignment untyped blocks whose lifetime the caller manages
// explicitly with Free.
//
// Every block carries a random 64-bit generation number recorded at
// allocation time. Bytes revalidates the generation on each access, so use
// of a freed block and double frees are detected rather than silently
// corrupting whatever reused the memory. The collision probability of a
// stale handle matching a live generation is 1/2^64 per check.
package arena

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
)

const (
	// SlabSize is the size of each mapped slab.
	SlabSize = 1 << 20

	// blockAlign is the alignment of every returned block.
	blockAlign = 16
)

// Arena hands out raw blocks from large slabs. Safe for concurrent use.
type Arena struct {
	mu     sync.Mutex
	slabs  [][]byte
	cur    []byte // tail of the newest slab
	live   map[*slot]struct{}
	closed bool
	stats  Stats
}

// Stats is a point-in-time snapshot of an arena's bookkeeping.
type Stats struct {
	Slabs      int   // slabs mapped
	Allocated  int64 // blocks handed out over the arena's lifetime
	Freed      int64 // blocks returned with Free
	Live       int64 // blocks currently outstanding
	BytesTotal int64 // bytes reserved across all slabs
}

// slot is the arena-side record of one block. gen is zeroed on free,
// invalidating the handle that remembers the original value.
type slot struct {
	gen uint64
}

// Block is a unique-ownership handle to one raw allocation. The zero Block
// is invalid.
type Block struct {
	a   *Arena
	buf []byte
	gen uint64 // generation remembered at allocation
	rec *slot
}

// New returns an empty arena. Slabs are mapped lazily on first Alloc.
func New() *Arena {
	return &Arena{live: make(map[*slot]struct{})}
}

// randomGeneration draws a random nonzero 64-bit generation.
func randomGeneration() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0xDEADBEEF
	}
	g := binary.LittleEndian.Uint64(buf[:])
	if g == 0 {
		g = 1
	}
	return g
}

// Alloc carves a zeroed block of at least size bytes out of the current
// slab, mapping a fresh slab when the current one is exhausted. The block
// is aligned to 16 bytes; its capacity is the aligned size.
func (a *Arena) Alloc(size int) (*Block, error) {
	if size <= 0 || size > SlabSize {
		return nil, ErrBlockTooLarge
	}
	rounded := (size + blockAlign - 1) &^ (blockAlign - 1)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, ErrArenaClosed
	}
	if len(a.cur) < rounded {
		slab, err := mapSlab(SlabSize)
		if err != nil {
			return nil, err
		}
		a.slabs = append(a.slabs, slab)
		a.cur = slab
		a.stats.Slabs++
		a.stats.BytesTotal += SlabSize
	}

	buf := a.cur[:size:rounded]
	a.cur = a.cur[rounded:]

	rec := &slot{gen: randomGeneration()}
	a.live[rec] = struct{}{}
	a.stats.Allocated++
	a.stats.Live++

	return &Block{a: a, buf: buf, gen: rec.gen, rec: rec}, nil
}

// Close unmaps every slab and invalidates all outstanding blocks. Further
// operations on the arena or its blocks return ErrArenaClosed. Close is
// idempotent; the first error from unmapping is returned.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true

	for rec := range a.live {
		rec.gen = 0
	}
	a.live = nil

	var firstErr error
	for _, slab := range a.slabs {
		if err := unmapSlab(slab); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.slabs = nil
	a.cur = nil
	return firstErr
}

// Stats returns a snapshot of the arena's counters.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Bytes returns the block's memory after revalidating its generation.
// A freed block yields ErrUseAfterFree; a block from a closed arena yields
// ErrArenaClosed.
func (b *Block) Bytes() ([]byte, error) {
	b.a.mu.Lock()
	defer b.a.mu.Unlock()
	if err := b.checkLocked(); err != nil {
		return nil, err
	}
	return b.buf, nil
}

// Len returns the block's length. Valid even after Free.
func (b *Block) Len() int { return len(b.buf) }

// Free returns the block to the arena, zeroing its generation so every
// later access through this handle fails. The memory itself is recycled
// only when the arena closes; slabs are never unmapped piecemeal.
func (b *Block) Free() error {
	b.a.mu.Lock()
	defer b.a.mu.Unlock()
	if b.a.closed {
		return ErrArenaClosed
	}
	if b.rec.gen != b.gen {
		return ErrDoubleFree
	}
	b.rec.gen = 0
	delete(b.a.live, b.rec)
	b.a.stats.Freed++
	b.a.stats.Live--

	for i := range b.buf {
		b.buf[i] = 0
	}
	return nil
}

// Valid reports whether the block is still live.
func (b *Block) Valid() bool {
	b.a.mu.Lock()
	defer b.a.mu.Unlock()
	return b.checkLocked() == nil
}

func (b *Block) checkLocked() error {
	if b.a.closed {
		return ErrArenaClosed
	}
	if b.rec.gen != b.gen {
		return ErrUseAfterFree
	}
	return nil
}
