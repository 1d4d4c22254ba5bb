package arena

import "errors"

var (
	// ErrArenaClosed is returned for any operation on a closed arena,
	// including access to blocks it handed out before closing.
	ErrArenaClosed = errors.New("arena: arena closed")

	// ErrUseAfterFree is returned when a block is accessed after Free.
	ErrUseAfterFree = errors.New("arena: use of freed block")

	// ErrDoubleFree is returned when a block is freed twice.
	ErrDoubleFree = errors.New("arena: double free")

	// ErrBlockTooLarge is returned when a requested block cannot fit in
	// a single slab.
	ErrBlockTooLarge = errors.New("arena: block larger than slab")
)
