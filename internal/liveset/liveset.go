// Package liveset tracks live owning allocations for leak diagnostics.
//
// When enabled, every allocation created by the handle packages registers
// itself here and unregisters when its metadata is detached (last strong and
// weak reference gone). A non-empty set at shutdown — or at the end of a
// test — is a leak: either a forgotten Drop or a strong-reference cycle.
//
// Tracking is off by default and costs a single atomic load per allocation
// when disabled. Enable explicitly via SetEnabled, or for a whole process
// run via the SMARTPTR_TRACKLIVE environment variable.
//
// Thread safety: all functions are safe for concurrent use; entries live in
// a sync.Map keyed by allocation id (stable keys, write-once per key).
package liveset

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	enabled atomic.Bool
	nextID  atomic.Uint64
	live    sync.Map // uint64 → entry
)

func init() {
	if os.Getenv("SMARTPTR_TRACKLIVE") != "" {
		enabled.Store(true)
	}
}

type entry struct {
	kind string // handle family: "rc", "arc", "box"
	site string // file:line of the constructor call
}

// Enabled reports whether live-handle tracking is active.
func Enabled() bool { return enabled.Load() }

// SetEnabled turns tracking on or off. Allocations created while tracking
// was off are not retroactively registered.
func SetEnabled(on bool) { enabled.Store(on) }

// Register records a new live allocation of the given kind and returns its
// id. Returns 0 when tracking is disabled; Unregister(0) is a no-op, so
// callers never need to branch.
//
// The recorded site is the line that created the handle: the first frame
// above Register that is not one of this module's constructors. A fixed
// skip count would not do — New wraps NewWithDrop, so the constructor depth
// varies by one between the two entry points.
func Register(kind string) uint64 {
	if !enabled.Load() {
		return 0
	}
	id := nextID.Add(1)
	live.Store(id, entry{kind: kind, site: callerSite()})
	return id
}

const modulePrefix = "github.com/kolkov/smartptr/"

// callerSite walks up past the handle constructors to the frame that
// invoked them.
func callerSite() string {
	var pcs [8]uintptr
	n := runtime.Callers(3, pcs[:]) // skip Callers, callerSite and Register
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if f.Function == "" {
			break
		}
		if !constructorFrame(f.Function) {
			return fmt.Sprintf("%s:%d", f.File, f.Line)
		}
		if !more {
			break
		}
	}
	return "unknown"
}

// constructorFrame reports whether fn names one of the module's handle
// constructors (box/rc/arc New and NewWithDrop, possibly with generic
// instantiation suffixes).
func constructorFrame(fn string) bool {
	if !strings.HasPrefix(fn, modulePrefix) {
		return false
	}
	base := fn[len(modulePrefix):]
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[i+1:]
	}
	return strings.HasPrefix(base, "New")
}

// Unregister removes an allocation from the live set. Safe to call with the
// zero id returned by a disabled Register.
func Unregister(id uint64) {
	if id == 0 {
		return
	}
	live.Delete(id)
}

// Count returns the number of currently live tracked allocations.
func Count() int {
	n := 0
	live.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Report writes a per-site summary of live allocations, most frequent
// first. Intended for test failure output and shutdown diagnostics.
func Report(w io.Writer) {
	type key struct{ kind, site string }
	byKey := make(map[key]int)
	live.Range(func(_, v any) bool {
		e := v.(entry)
		byKey[key{e.kind, e.site}]++
		return true
	})

	if len(byKey) == 0 {
		fmt.Fprintln(w, "liveset: no live allocations")
		return
	}

	keys := make([]key, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if byKey[keys[i]] != byKey[keys[j]] {
			return byKey[keys[i]] > byKey[keys[j]]
		}
		return keys[i].site < keys[j].site
	})

	fmt.Fprintf(w, "liveset: %d live allocation(s)\n", Count())
	for _, k := range keys {
		fmt.Fprintf(w, "  %4d  %-4s %s\n", byKey[k], k.kind, k.site)
	}
}

// Reset clears all entries. Test helper; not safe to call concurrently with
// Register/Unregister traffic.
func Reset() {
	live = sync.Map{}
}
