package keymap

import "testing"

func TestResolveDefaults(t *testing.T) {
	tests := []struct {
		token  string
		button Button
		key    string
	}{
		{"A", ButtonA, "x"},
		{"a", ButtonA, "x"},
		{"0", ButtonA, "x"},
		{"B", ButtonB, "z"},
		{"U", ButtonUp, "up"},
		{"D", ButtonDown, "down"},
		{"L", ButtonLeft, "left"},
		{"R", ButtonRight, "right"},
		{"S", ButtonStart, "enter"},
		{"E", ButtonSelect, "backspace"},
		{"J", ButtonL, "a"},
		{"I", ButtonR, "s"},
		{"9", ButtonL, "a"},
		{"8", ButtonR, "s"},
	}

	m := Default()
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			button, key, ok := m.Resolve(tt.token)
			if !ok {
				t.Fatalf("Resolve(%q) not recognized as abstract button", tt.token)
			}
			if button != tt.button || key != tt.key {
				t.Errorf("Resolve(%q) = (%v, %q), want (%v, %q)", tt.token, button, key, tt.button, tt.key)
			}
		})
	}
}

func TestResolveNonButtons(t *testing.T) {
	m := Default()
	for _, token := range []string{"x", "enter", "wait", "foo"} {
		if _, _, ok := m.Resolve(token); ok {
			t.Errorf("Resolve(%q) matched an abstract button, want fallback to raw key", token)
		}
	}
}

func TestResolveOverride(t *testing.T) {
	m := Default().Merge(Mapping{A: "j"})

	if _, key, ok := m.Resolve("A"); !ok || key != "j" {
		t.Errorf("Resolve(A) with override = %q, want j", key)
	}
	// Untouched buttons keep their defaults.
	if _, key, ok := m.Resolve("B"); !ok || key != "z" {
		t.Errorf("Resolve(B) with override = %q, want z", key)
	}
}

func TestMergePartial(t *testing.T) {
	m := Default().Merge(Mapping{Start: "space", LShoulder: "q"})

	if m.Start != "space" || m.LShoulder != "q" {
		t.Errorf("merged overrides not applied: %+v", m)
	}
	if m.A != "x" || m.Select != "backspace" {
		t.Errorf("merge clobbered unset fields: %+v", m)
	}
}

func TestRawKey(t *testing.T) {
	tests := []struct {
		token string
		key   string
		ok    bool
	}{
		{"x", "x", true},
		{"Z", "z", true},
		{"7", "7", true},
		{"up", "up", true},
		{"arrow_down", "down", true},
		{"RETURN", "enter", true},
		{"escape", "esc", true},
		{"backspace", "backspace", true},
		{"foo", "", false},
		{"!", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		key, ok := RawKey(tt.token)
		if ok != tt.ok || key != tt.key {
			t.Errorf("RawKey(%q) = (%q, %v), want (%q, %v)", tt.token, key, ok, tt.key, tt.ok)
		}
	}
}
