// Package orch coordinates one capture run per binary: window acquisition,
// the before-sequence barrier, concurrent input and sampling, and handoff
// to the GIF sink.
package orch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/v0xg/mgbacap/internal/config"
	"github.com/v0xg/mgbacap/internal/sampler"
	"github.com/v0xg/mgbacap/internal/sequence"
	"github.com/v0xg/mgbacap/internal/window"
)

// State tracks a binary's progress through its capture run.
type State int

const (
	StateIdle State = iota
	StateLocating
	StateRunningBefore
	StateCapturing
	StateDone
	StatePartiallyDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLocating:
		return "locating"
	case StateRunningBefore:
		return "before-sequence"
	case StateCapturing:
		return "capturing"
	case StateDone:
		return "done"
	case StatePartiallyDone:
		return "partially done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Locator finds the emulator window for a capture run.
type Locator interface {
	Locate(ctx context.Context, hint string, timeout time.Duration) (window.Window, error)
}

// Driver executes a parsed action sequence.
type Driver interface {
	Execute(ctx context.Context, seq sequence.Sequence) error
}

// Sink receives the ordered frames and the target fps and produces the
// final artifact. Encoding failures are reported back, never retried here.
type Sink interface {
	Encode(frames []sampler.Frame, fps float64) (int64, error)
}

// SampleFunc matches sampler.Sample; swapped out in tests.
type SampleFunc func(ctx context.Context, w window.Window, fps, duration float64) ([]sampler.Frame, error)

// Options configures an orchestrator shared by all jobs in a run.
type Options struct {
	LocateTimeout  time.Duration // how long to wait for the window
	CaptureTimeout time.Duration // bound on one binary's whole run
	Verbose        bool
}

// Job is one binary's capture request. Launch starts the emulator and
// returns its teardown; it is owned entirely by this job, so a failure here
// never touches sibling jobs.
type Job struct {
	Binary string
	Hint   string // window title substring to look for
	Config config.Capture
	Launch func(ctx context.Context) (func(), error)
	Sink   Sink
}

// Result is a job's terminal report.
type Result struct {
	Binary    string
	State     State
	Frames    int
	Requested int
	Size      int64
	Err       error
}

// Ok reports whether the job produced an artifact (fully or partially).
func (r Result) Ok() bool {
	return r.State == StateDone || r.State == StatePartiallyDone
}

// Orchestrator runs capture jobs. Each job gets its own window handle and
// cancellation scope; nothing is shared across jobs.
type Orchestrator struct {
	locator Locator
	driver  Driver
	sample  SampleFunc
	opts    Options
}

// New assembles an orchestrator. sample may be nil to use sampler.Sample.
func New(locator Locator, driver Driver, sample SampleFunc, opts Options) *Orchestrator {
	if sample == nil {
		sample = sampler.Sample
	}
	if opts.LocateTimeout <= 0 {
		opts.LocateTimeout = 10 * time.Second
	}
	if opts.CaptureTimeout <= 0 {
		opts.CaptureTimeout = 2 * time.Minute
	}
	return &Orchestrator{locator: locator, driver: driver, sample: sample, opts: opts}
}

// Run drives one job to a terminal state. The per-job timeout covers
// everything from locating the window to the last sampled frame, so one
// stuck emulator cannot hang the whole run.
func (o *Orchestrator) Run(ctx context.Context, job Job) Result {
	res := Result{
		Binary:    job.Binary,
		State:     StateIdle,
		Requested: int(math.Round(job.Config.FPS * job.Config.Duration)),
	}

	if err := job.Config.Validate(); err != nil {
		return o.fail(res, err)
	}

	before, err := sequence.Parse(job.Config.Before, job.Config.Mapping)
	if err != nil {
		return o.fail(res, fmt.Errorf("before-capture sequence: %w", err))
	}
	during, err := sequence.Parse(job.Config.During, job.Config.Mapping)
	if err != nil {
		return o.fail(res, fmt.Errorf("during-capture sequence: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, o.opts.CaptureTimeout)
	defer cancel()

	if job.Launch != nil {
		stop, err := job.Launch(ctx)
		if err != nil {
			return o.fail(res, err)
		}
		defer stop()
	}

	res.State = StateLocating
	o.logf(job, "locating window %q", job.Hint)
	win, err := o.locator.Locate(ctx, job.Hint, o.opts.LocateTimeout)
	if err != nil {
		return o.fail(res, err)
	}
	if a, ok := win.(window.Activator); ok {
		if err := a.Activate(); err != nil {
			o.logf(job, "window activation failed: %v", err)
		}
	}

	// Barrier: the before-sequence must fully complete before the first
	// frame is sampled.
	if len(before) > 0 {
		res.State = StateRunningBefore
		o.logf(job, "running before-capture sequence (%s)", before.Span())
		if err := o.driver.Execute(ctx, before); err != nil {
			return o.fail(res, fmt.Errorf("before-capture sequence: %w", err))
		}
	}

	res.State = StateCapturing
	o.logf(job, "capturing %d frames at %gfps", res.Requested, job.Config.FPS)
	frames, sampleErr := o.capture(ctx, job, win, during)
	res.Frames = len(frames)

	switch {
	case sampleErr == nil:
		res.State = StateDone
	case len(frames) > 0:
		res.State = StatePartiallyDone
		res.Err = sampleErr
		o.logf(job, "partial capture: %v", sampleErr)
	default:
		return o.fail(res, sampleErr)
	}

	size, err := job.Sink.Encode(frames, job.Config.FPS)
	if err != nil {
		return o.fail(res, fmt.Errorf("encoding: %w", err))
	}
	res.Size = size
	return res
}

// capture runs the during-sequence concurrently with frame sampling under a
// shared cancellation scope. Sampling owns the clock: when it finishes, any
// still-running input is cancelled (releasing held keys); when input
// finishes first, sampling simply continues to its own fixed duration.
func (o *Orchestrator) capture(ctx context.Context, job Job, win window.Window, during sequence.Sequence) ([]sampler.Frame, error) {
	capCtx, capCancel := context.WithCancel(ctx)
	defer capCancel()

	inputDone := make(chan struct{})
	if len(during) > 0 {
		go func() {
			defer close(inputDone)
			err := o.driver.Execute(capCtx, during)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				o.logf(job, "during-capture sequence: %v", err)
			}
		}()
	} else {
		close(inputDone)
	}

	frames, err := o.sample(capCtx, win, job.Config.FPS, job.Config.Duration)

	capCancel()
	<-inputDone

	return frames, err
}

// RunAll executes jobs with at most parallel running at once. Every job
// reaches a terminal state independently; results come back in job order.
func (o *Orchestrator) RunAll(ctx context.Context, jobs []Job, parallel int) []Result {
	if parallel < 1 {
		parallel = 1
	}

	results := make([]Result, len(jobs))
	sem := make(chan struct{}, parallel)
	var wg sync.WaitGroup

	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = o.Run(ctx, job)
		}(i, job)
	}

	wg.Wait()
	return results
}

func (o *Orchestrator) fail(res Result, err error) Result {
	res.State = StateFailed
	res.Err = err
	return res
}

func (o *Orchestrator) logf(job Job, format string, args ...interface{}) {
	if !o.opts.Verbose {
		return
	}
	fmt.Printf("  [%s] "+format+"\n", append([]interface{}{job.Binary}, args...)...)
}
