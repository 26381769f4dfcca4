// Package sampler captures raster frames from a window on a fixed schedule.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/v0xg/mgbacap/internal/window"
)

// Frame is one raster snapshot. Timestamp is the tick's logical offset from
// the start of capture, not the wall-clock time the pixels arrived, so
// output timing stays exact even when an individual capture runs late.
type Frame struct {
	Image     image.Image
	Width     int
	Height    int
	Timestamp time.Duration
}

// PartialError reports a capture that ended before reaching the requested
// frame count. The frames captured so far are still returned and may be
// encoded into a shorter result.
type PartialError struct {
	Captured  int
	Requested int
	Cause     error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("partial capture: %d of %d frames: %v", e.Captured, e.Requested, e.Cause)
}

func (e *PartialError) Unwrap() error { return e.Cause }

// Sample captures round(fps×duration) frames from w at 1/fps intervals.
// Tick i is scheduled at start+i×interval on an absolute timeline, so
// schedule error never accumulates and no tick is captured twice. The
// window's validity is checked at every tick; if the handle dies mid-run,
// or ctx is cancelled, Sample returns the frames collected so far together
// with a PartialError.
func Sample(ctx context.Context, w window.Window, fps, duration float64) ([]Frame, error) {
	interval := time.Duration(float64(time.Second) / fps)
	count := int(math.Round(fps * duration))

	frames := make([]Frame, 0, count)
	start := time.Now()

	for i := 0; i < count; i++ {
		tick := start.Add(time.Duration(i) * interval)
		if err := sleepUntil(ctx, tick); err != nil {
			return frames, &PartialError{Captured: len(frames), Requested: count, Cause: err}
		}

		if !w.Valid() {
			lost := &window.LostError{Reason: window.ReasonDisappeared}
			return frames, &PartialError{Captured: len(frames), Requested: count, Cause: lost}
		}

		img, err := w.Capture()
		if err != nil {
			var lost *window.LostError
			if errors.As(err, &lost) {
				return frames, &PartialError{Captured: len(frames), Requested: count, Cause: err}
			}
			// Transient capture glitch: skip this tick, keep the schedule.
			continue
		}

		bounds := img.Bounds()
		frames = append(frames, Frame{
			Image:     img,
			Width:     bounds.Dx(),
			Height:    bounds.Dy(),
			Timestamp: time.Duration(i) * interval,
		})
	}

	return frames, nil
}

func sleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
