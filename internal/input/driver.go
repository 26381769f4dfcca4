// Package input executes parsed action sequences against the OS keyboard.
package input

import (
	"context"
	"fmt"
	"time"

	"github.com/v0xg/mgbacap/internal/sequence"
)

// Injector issues raw key transitions. The production implementation is
// backed by robotgo; tests substitute a recording fake.
type Injector interface {
	KeyDown(key string) error
	KeyUp(key string) error
}

// Options configures driver behavior.
type Options struct {
	Verbose bool
}

// Driver runs one action sequence at a time on its own timeline. Actions
// never overlap within a single Execute call.
type Driver struct {
	inj  Injector
	opts Options
}

// New returns a driver using the given injector.
func New(inj Injector, opts Options) *Driver {
	return &Driver{inj: inj, opts: opts}
}

// Execute runs the sequence strictly in order. Holds issue key-down, sleep,
// key-up; waits just sleep. Sleeps are interruptible through ctx, and a
// cancelled hold still releases its key before Execute returns, so no key is
// ever left stuck down. A failed key event is reported and skipped; a single
// missed keystroke should not abort an otherwise useful capture.
func (d *Driver) Execute(ctx context.Context, seq sequence.Sequence) error {
	for _, act := range seq {
		switch act.Kind {
		case sequence.KindWait:
			if err := sleep(ctx, act.Duration); err != nil {
				return err
			}

		case sequence.KindHold:
			if err := d.inj.KeyDown(act.Key); err != nil {
				d.logf("key down %q failed: %v", act.Key, err)
				continue
			}
			sleepErr := sleep(ctx, act.Duration)
			if err := d.inj.KeyUp(act.Key); err != nil {
				d.logf("key up %q failed: %v", act.Key, err)
			}
			if sleepErr != nil {
				return sleepErr
			}
		}
	}
	return nil
}

// sleep blocks for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Driver) logf(format string, args ...interface{}) {
	if d.opts.Verbose {
		fmt.Printf("  ✗ "+format+"\n", args...)
	}
}
