// Package goid extracts the current goroutine's id for lock-owner
// diagnostics.
//
// The id appears only in error messages and panics (which goroutine held or
// poisoned a cell); no correctness decision is ever based on it, so the
// portable runtime.Stack parsing path is used unconditionally. At ~1.5µs it
// is far too slow for a hot path, which is why lockcell records the owner
// once per acquisition, never per access.
package goid

import "runtime"

// ID returns the current goroutine id, or 0 if the stack header cannot be
// parsed (which would indicate a runtime format change).
func ID() int64 {
	// Only the first stack line is needed: "goroutine 123 [running]:\n...".
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGID(buf[:n])
}

// parseGID extracts the numeric id from a stack trace header.
// Byte-wise parsing, no regex, no allocations beyond the caller's buffer.
func parseGID(buf []byte) int64 {
	const prefix = "goroutine "
	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}

	var gid int64
	for i := len(prefix); i < len(buf); i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		gid = gid*10 + int64(c-'0')
	}
	return gid
}
