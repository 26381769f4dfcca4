// Package window locates the emulator window for a launched process and
// exposes it as a capture target.
package window

import (
	"fmt"
	"image"
)

// LostReason distinguishes how a window was lost.
type LostReason int

const (
	// ReasonNeverAppeared means no matching window showed up before the
	// locate deadline.
	ReasonNeverAppeared LostReason = iota
	// ReasonDisappeared means a previously located window went away.
	ReasonDisappeared
)

func (r LostReason) String() string {
	switch r {
	case ReasonNeverAppeared:
		return "never appeared"
	case ReasonDisappeared:
		return "disappeared"
	}
	return "unknown"
}

// LostError is returned when the target window cannot be found or stops
// existing. Fatal for that binary's capture, non-fatal for the overall run.
type LostError struct {
	Hint   string
	Reason LostReason
}

func (e *LostError) Error() string {
	return fmt.Sprintf("window %q lost: %s", e.Hint, e.Reason)
}

// Info describes one desktop window candidate.
type Info struct {
	PID   int
	Title string
}

// Window is a located capture target. Handles are only valid while the
// owning process lives; operations against a dead handle fail with a
// LostError carrying ReasonDisappeared.
type Window interface {
	// Capture takes a read-only snapshot of the window's current raster
	// content.
	Capture() (image.Image, error)
	// Valid reports whether the handle still refers to a live window.
	// Checked explicitly at every sampling tick rather than assumed.
	Valid() bool
}

// Registry is the desktop window table the locator polls. The production
// implementation wraps robotgo; tests substitute a scripted fake.
type Registry interface {
	// List returns the current window candidates.
	List() ([]Info, error)
	// Open turns a candidate into a capture target.
	Open(info Info) (Window, error)
}
