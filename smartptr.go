// Package smartptr provides ownership-based memory management for Go:
// single-owner boxes, reference-counted shared handles, weak handles, and
// runtime-checked interior mutability — the guarantees of a compile-time
// borrow checker, enforced at runtime without CGO and without leaning on
// the tracing collector for lifetime semantics.
//
// # Quick Start
//
// Each handle family lives in its own subpackage:
//
//	import (
//		"github.com/kolkov/smartptr/arc"
//		"github.com/kolkov/smartptr/box"
//		"github.com/kolkov/smartptr/cell"
//		"github.com/kolkov/smartptr/lockcell"
//		"github.com/kolkov/smartptr/rc"
//	)
//
//	b := box.NewWithDrop(openThing(), func(t Thing) { t.Close() })
//	defer b.Drop() // destructor runs exactly once
//
//	shared := arc.New(lockcell.NewExclusive([]int(nil)))
//	clone := shared.Clone() // hand to another goroutine
//
// # Choosing a Handle
//
//   - [box.Box]: exactly one owner, deterministic destruction on Drop.
//   - [rc.Rc]: shared ownership within a single goroutine; value destroyed
//     when the last clone drops. [rc.Weak] observes without owning.
//   - [arc.Arc]: shared ownership across goroutines, atomic counts.
//   - [cell.Cell]: single-goroutine interior mutability with the
//     many-readers-xor-one-writer rule checked at runtime.
//   - [lockcell.Exclusive], [lockcell.SharedRead]: cross-goroutine
//     mutation behind blocking guards with poison-on-panic.
//   - [arena.Arena]: raw byte blocks with explicit free and
//     use-after-free detection.
//
// The canonical shared-mutable-state idiom nests a cell inside a shared
// handle: arc.Arc[*lockcell.Exclusive[T]]. The Arc answers "when is this
// freed", the cell answers "who may touch it right now".
//
// # Runtime Checking
//
// Go cannot reject misuse at compile time the way a borrow checker does,
// so violations surface at the moment of misuse instead: using or dropping
// a dead handle panics, conflicting borrows fail or panic, count overflow
// aborts. The panics are deliberate — each one is a bug in the calling
// program, not a recoverable condition.
//
// # Leak Diagnostics
//
// The root package exposes a live-handle registry for finding forgotten
// Drops and strong-reference cycles:
//
//	smartptr.TrackLive(true)
//	defer func() {
//		if n := smartptr.LiveHandles(); n != 0 {
//			smartptr.LiveReport(os.Stderr)
//		}
//	}()
//
// Tracking is off by default and costs one atomic load per allocation when
// disabled. Setting the SMARTPTR_TRACKLIVE environment variable enables it
// for a whole process run.
package smartptr

import (
	"io"

	"github.com/kolkov/smartptr/internal/liveset"
)

// TrackLive turns live-handle tracking on or off. Handles created while
// tracking was off are not retroactively registered.
func TrackLive(on bool) {
	liveset.SetEnabled(on)
}

// TrackingLive reports whether live-handle tracking is active.
func TrackingLive() bool {
	return liveset.Enabled()
}

// LiveHandles returns the number of tracked owning handles whose metadata
// has not yet been detached. Zero at the end of a program means every
// allocation was destroyed.
func LiveHandles() int {
	return liveset.Count()
}

// LiveReport writes a per-construction-site summary of live handles, most
// frequent first. Intended for test failure output and shutdown checks.
func LiveReport(w io.Writer) {
	liveset.Report(w)
}
