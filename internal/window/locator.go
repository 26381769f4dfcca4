package window

import (
	"context"
	"strings"
	"time"
)

// PollInterval is how often the locator re-reads the desktop registry while
// waiting for the emulator window to appear.
const PollInterval = 100 * time.Millisecond

// Locator finds the emulator window by title substring match against the
// registry, retrying until a deadline. Emulators flash their window in and
// out during splash/init, so a miss (or a registry error) is never fatal
// before the deadline.
type Locator struct {
	reg Registry
}

// NewLocator returns a locator over the given registry.
func NewLocator(reg Registry) *Locator {
	return &Locator{reg: reg}
}

// Locate polls for a window whose title contains hint (case-insensitive)
// until it appears or timeout elapses. The iteration is bounded by an
// explicit deadline so cancellation and timeout stay testable in isolation.
func (l *Locator) Locate(ctx context.Context, hint string, timeout time.Duration) (Window, error) {
	deadline := time.Now().Add(timeout)

	for {
		if info, ok := l.find(hint); ok {
			w, err := l.reg.Open(info)
			if err == nil {
				return w, nil
			}
			// Window vanished between listing and opening; keep polling.
		}

		if time.Now().After(deadline) {
			return nil, &LostError{Hint: hint, Reason: ReasonNeverAppeared}
		}

		t := time.NewTimer(PollInterval)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		}
	}
}

func (l *Locator) find(hint string) (Info, bool) {
	infos, err := l.reg.List()
	if err != nil {
		return Info{}, false
	}
	needle := strings.ToLower(hint)
	for _, info := range infos {
		if strings.Contains(strings.ToLower(info.Title), needle) {
			return info, true
		}
	}
	return Info{}, false
}
