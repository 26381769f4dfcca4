// Package keymap translates abstract GBA controller buttons into the
// platform key names fed to the emulator window.
package keymap

import "strings"

// Button is one of the ten abstract GBA controller buttons.
type Button string

const (
	ButtonA      Button = "A"
	ButtonB      Button = "B"
	ButtonUp     Button = "U"
	ButtonDown   Button = "D"
	ButtonLeft   Button = "L"
	ButtonRight  Button = "R"
	ButtonStart  Button = "S"
	ButtonSelect Button = "E"
	ButtonL      Button = "J"
	ButtonR      Button = "I"
)

// Mapping holds the platform key assigned to each GBA button. Empty fields
// fall back to the built-in defaults, so a partially specified override in
// capture.json still leaves every button mapped.
type Mapping struct {
	A         string `json:"a,omitempty"`
	B         string `json:"b,omitempty"`
	Up        string `json:"up,omitempty"`
	Down      string `json:"down,omitempty"`
	Left      string `json:"left,omitempty"`
	Right     string `json:"right,omitempty"`
	Start     string `json:"start,omitempty"`
	Select    string `json:"select,omitempty"`
	LShoulder string `json:"l_shoulder,omitempty"`
	RShoulder string `json:"r_shoulder,omitempty"`
}

// Default returns the built-in mGBA keyboard layout.
func Default() Mapping {
	return Mapping{
		A:         "x",
		B:         "z",
		Up:        "up",
		Down:      "down",
		Left:      "left",
		Right:     "right",
		Start:     "enter",
		Select:    "backspace",
		LShoulder: "a",
		RShoulder: "s",
	}
}

// Merge overlays the non-empty fields of o on top of m.
func (m Mapping) Merge(o Mapping) Mapping {
	if o.A != "" {
		m.A = o.A
	}
	if o.B != "" {
		m.B = o.B
	}
	if o.Up != "" {
		m.Up = o.Up
	}
	if o.Down != "" {
		m.Down = o.Down
	}
	if o.Left != "" {
		m.Left = o.Left
	}
	if o.Right != "" {
		m.Right = o.Right
	}
	if o.Start != "" {
		m.Start = o.Start
	}
	if o.Select != "" {
		m.Select = o.Select
	}
	if o.LShoulder != "" {
		m.LShoulder = o.LShoulder
	}
	if o.RShoulder != "" {
		m.RShoulder = o.RShoulder
	}
	return m
}

// Resolve maps a sequence token to an abstract button and its platform key.
// Tokens are matched case-insensitively against the DSL letters and their
// numeric aliases (A/0, B/1, E/2, S/3, R/4, L/5, U/6, D/7, I/8, J/9).
// ok is false when the token is not an abstract button and should be tried
// as a raw platform key instead.
func (m Mapping) Resolve(token string) (Button, string, bool) {
	def := Default()
	pick := func(b Button, mapped, fallback string) (Button, string, bool) {
		if mapped == "" {
			mapped = fallback
		}
		return b, mapped, true
	}

	switch strings.ToUpper(token) {
	case "A", "0":
		return pick(ButtonA, m.A, def.A)
	case "B", "1":
		return pick(ButtonB, m.B, def.B)
	case "E", "2":
		return pick(ButtonSelect, m.Select, def.Select)
	case "S", "3":
		return pick(ButtonStart, m.Start, def.Start)
	case "R", "4":
		return pick(ButtonRight, m.Right, def.Right)
	case "L", "5":
		return pick(ButtonLeft, m.Left, def.Left)
	case "U", "6":
		return pick(ButtonUp, m.Up, def.Up)
	case "D", "7":
		return pick(ButtonDown, m.Down, def.Down)
	case "I", "8":
		return pick(ButtonR, m.RShoulder, def.RShoulder)
	case "J", "9":
		return pick(ButtonL, m.LShoulder, def.LShoulder)
	}
	return "", "", false
}

// rawKeys are the platform key names accepted when a token does not match an
// abstract button. Single letters and digits are always accepted.
var rawKeys = map[string]string{
	"up": "up", "arrow_up": "up",
	"down": "down", "arrow_down": "down",
	"left": "left", "arrow_left": "left",
	"right": "right", "arrow_right": "right",
	"space":  "space",
	"enter":  "enter",
	"return": "enter",
	"tab":    "tab",
	"escape": "esc", "esc": "esc",
	"shift":     "shift",
	"ctrl":      "ctrl",
	"control":   "ctrl",
	"alt":       "alt",
	"backspace": "backspace",
}

// RawKey normalizes a raw platform key name. ok is false for names the
// injection backend does not understand.
func RawKey(token string) (string, bool) {
	t := strings.ToLower(token)
	if len(t) == 1 {
		c := t[0]
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			return t, true
		}
		return "", false
	}
	k, ok := rawKeys[t]
	return k, ok
}
