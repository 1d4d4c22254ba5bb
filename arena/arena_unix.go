//go:build unix

package arena

import "golang.org/x/sys/unix"

// mapSlab reserves an anonymous read-write mapping outside the Go heap.
func mapSlab(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
}

func unmapSlab(b []byte) error {
	return unix.Munmap(b)
}
