package window

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
)

// Activator is implemented by windows that can be raised to take keyboard
// focus. Key injection goes to the focused window, so the orchestrator
// activates the target before driving input.
type Activator interface {
	Activate() error
}

// DesktopRegistry lists the real desktop windows through robotgo. Process
// names double as the window title heuristic: mGBA's window carries the
// emulator name on every platform we target.
type DesktopRegistry struct{}

func (DesktopRegistry) List() ([]Info, error) {
	procs, err := robotgo.Process()
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	infos := make([]Info, 0, len(procs))
	for _, p := range procs {
		infos = append(infos, Info{PID: p.Pid, Title: p.Name})
	}
	return infos, nil
}

func (DesktopRegistry) Open(info Info) (Window, error) {
	w := &desktopWindow{info: info}
	if !w.Valid() {
		return nil, &LostError{Hint: info.Title, Reason: ReasonDisappeared}
	}
	return w, nil
}

// desktopWindow captures the on-screen bounds of one process's window.
type desktopWindow struct {
	info Info
}

func (w *desktopWindow) Valid() bool {
	ok, err := robotgo.PidExists(w.info.PID)
	return err == nil && ok
}

func (w *desktopWindow) Capture() (image.Image, error) {
	if !w.Valid() {
		return nil, &LostError{Hint: w.info.Title, Reason: ReasonDisappeared}
	}
	x, y, width, height := robotgo.GetBounds(w.info.PID)
	if width <= 0 || height <= 0 {
		return nil, &LostError{Hint: w.info.Title, Reason: ReasonDisappeared}
	}
	img, err := robotgo.CaptureImg(x, y, width, height)
	if err != nil {
		return nil, fmt.Errorf("capturing window %q: %w", w.info.Title, err)
	}
	return img, nil
}

func (w *desktopWindow) Activate() error {
	return robotgo.ActivePid(w.info.PID)
}
