//go:build !unix

package arena

// mapSlab falls back to heap slabs where anonymous mappings are
// unavailable. Generation checking works the same either way.
func mapSlab(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func unmapSlab([]byte) error {
	return nil
}
