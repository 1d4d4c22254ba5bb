package lockcell

import (
	"errors"
	"fmt"
)

// ErrWouldBlock reports that a non-blocking acquisition could not proceed
// immediately. Callers needing a bounded wait poll the Try variants and
// check their own cancellation signal between attempts; there are no timed
// waits at this layer.
var ErrWouldBlock = errors.New("lockcell: would block")

// PoisonError reports that a previous holder terminated abnormally while
// holding the cell, so the payload may be in an inconsistent intermediate
// state. Acquisitions still succeed — the guard is returned alongside this
// error — leaving the caller to decide between proceeding with suspect data
// and propagating the failure.
type PoisonError struct {
	// By is the id of the goroutine whose abnormal termination poisoned
	// the cell. Diagnostic only.
	By int64
}

func (e *PoisonError) Error() string {
	return fmt.Sprintf("lockcell: cell poisoned: goroutine %d terminated abnormally while holding the lock", e.By)
}
