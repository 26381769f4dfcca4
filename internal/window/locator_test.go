package window

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"
)

// scriptedRegistry serves a canned window list per List call; when the
// script runs out the last entry repeats.
type scriptedRegistry struct {
	mu     sync.Mutex
	script [][]Info
	calls  int
}

func (r *scriptedRegistry) List() ([]Info, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.calls
	if i >= len(r.script) {
		i = len(r.script) - 1
	}
	r.calls++
	return r.script[i], nil
}

func (r *scriptedRegistry) Open(info Info) (Window, error) {
	return &fakeWindow{}, nil
}

type fakeWindow struct{}

func (*fakeWindow) Capture() (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (*fakeWindow) Valid() bool { return true }

func TestLocateImmediate(t *testing.T) {
	reg := &scriptedRegistry{script: [][]Info{
		{{PID: 7, Title: "mGBA - 0.10.2"}},
	}}

	w, err := NewLocator(reg).Locate(context.Background(), "mgba", time.Second)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if w == nil {
		t.Fatal("Locate returned nil window")
	}
}

func TestLocateAppearsAfterPolls(t *testing.T) {
	reg := &scriptedRegistry{script: [][]Info{
		{},
		{},
		{{PID: 7, Title: "mGBA"}},
	}}

	start := time.Now()
	_, err := NewLocator(reg).Locate(context.Background(), "mgba", time.Second)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	// Two misses cost two poll intervals.
	if elapsed := time.Since(start); elapsed < 2*PollInterval {
		t.Errorf("Locate returned after %v, want at least %v", elapsed, 2*PollInterval)
	}
}

func TestLocateToleratesFlicker(t *testing.T) {
	// Window shows during splash, vanishes, then settles. The locator
	// grabs the first appearance; a vanish before that must not fail it.
	reg := &scriptedRegistry{script: [][]Info{
		{},
		{{PID: 7, Title: "other app"}},
		{},
		{{PID: 7, Title: "mGBA"}},
	}}

	_, err := NewLocator(reg).Locate(context.Background(), "mgba", time.Second)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
}

func TestLocateTimeout(t *testing.T) {
	reg := &scriptedRegistry{script: [][]Info{{}}}

	_, err := NewLocator(reg).Locate(context.Background(), "mgba", 250*time.Millisecond)
	var lost *LostError
	if !errors.As(err, &lost) {
		t.Fatalf("Locate error = %v, want *LostError", err)
	}
	if lost.Reason != ReasonNeverAppeared {
		t.Errorf("Reason = %v, want ReasonNeverAppeared", lost.Reason)
	}
}

func TestLocateCancelled(t *testing.T) {
	reg := &scriptedRegistry{script: [][]Info{{}}}
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := NewLocator(reg).Locate(ctx, "mgba", time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Locate error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("cancel took %v, want prompt return", time.Since(start))
	}
}

func TestLocateMatchIsCaseInsensitive(t *testing.T) {
	reg := &scriptedRegistry{script: [][]Info{
		{{PID: 1, Title: "Terminal"}, {PID: 2, Title: "MGBA 0.10"}},
	}}

	if _, err := NewLocator(reg).Locate(context.Background(), "mgba", time.Second); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
}
