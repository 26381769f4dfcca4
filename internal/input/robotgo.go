package input

import "github.com/go-vgo/robotgo"

// SystemInjector injects key events through robotgo into whichever window
// holds keyboard focus.
type SystemInjector struct{}

func (SystemInjector) KeyDown(key string) error { return robotgo.KeyDown(key) }

func (SystemInjector) KeyUp(key string) error { return robotgo.KeyUp(key) }
