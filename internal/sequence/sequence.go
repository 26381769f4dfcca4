// Package sequence parses the textual input-sequence DSL into timed actions.
//
// The grammar is a comma-separated list of tokens: "KEY" taps a key for the
// default press duration, "KEY:MS" holds it for MS milliseconds and "wait:MS"
// idles. KEY is resolved against the abstract GBA buttons first and falls
// back to a raw platform key name.
package sequence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/v0xg/mgbacap/internal/keymap"
)

// DefaultPressMS is the hold duration of a bare KEY token.
const DefaultPressMS = 50

// Kind discriminates the action variants.
type Kind int

const (
	// KindHold presses a key, sleeps, then releases it.
	KindHold Kind = iota
	// KindWait sleeps without touching any key.
	KindWait
)

// Action is one timed unit of synthetic input. Immutable once parsed.
type Action struct {
	Kind     Kind
	Token    string // canonical token text: "A", "x", "wait"
	Key      string // resolved platform key, empty for waits
	Duration time.Duration
}

// Sequence is an ordered list of actions. The empty sequence is valid and
// executes as a no-op.
type Sequence []Action

// ParseError reports the token that stopped parsing. A sequence that fails
// to parse is discarded whole; the already-parsed prefix is never executed.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid sequence token %q: %s", e.Token, e.Reason)
}

// Parse converts sequence text into actions, resolving keys through the
// given mapping. Empty or whitespace-only text yields an empty sequence.
func Parse(text string, mapping keymap.Mapping) (Sequence, error) {
	var seq Sequence

	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, msText, hasMS := strings.Cut(part, ":")
		if hasMS && strings.Contains(msText, ":") {
			return nil, &ParseError{Token: part, Reason: "too many ':' separators"}
		}

		ms := int64(DefaultPressMS)
		if hasMS {
			v, err := strconv.ParseInt(strings.TrimSpace(msText), 10, 64)
			if err != nil || v < 0 {
				return nil, &ParseError{Token: part, Reason: fmt.Sprintf("duration %q is not a non-negative integer", msText)}
			}
			ms = v
		}

		name = strings.TrimSpace(name)
		if strings.EqualFold(name, "wait") {
			if !hasMS {
				return nil, &ParseError{Token: part, Reason: "wait requires a duration"}
			}
			seq = append(seq, Action{
				Kind:     KindWait,
				Token:    "wait",
				Duration: time.Duration(ms) * time.Millisecond,
			})
			continue
		}

		act, err := resolveKey(name, mapping)
		if err != nil {
			return nil, err
		}
		act.Duration = time.Duration(ms) * time.Millisecond
		seq = append(seq, act)
	}

	return seq, nil
}

// resolveKey maps a KEY token to a hold action: abstract buttons first,
// then raw platform key names.
func resolveKey(name string, mapping keymap.Mapping) (Action, error) {
	if button, key, ok := mapping.Resolve(name); ok {
		return Action{Kind: KindHold, Token: string(button), Key: key}, nil
	}
	if key, ok := keymap.RawKey(name); ok {
		return Action{Kind: KindHold, Token: key, Key: key}, nil
	}
	return Action{}, &ParseError{Token: name, Reason: "unknown key"}
}

// String renders the sequence in canonical form. Parsing the result with
// the same mapping reproduces the sequence.
func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, a := range s {
		parts[i] = fmt.Sprintf("%s:%d", a.Token, a.Duration.Milliseconds())
	}
	return strings.Join(parts, ",")
}

// Span is the total time the sequence takes to execute.
func (s Sequence) Span() time.Duration {
	var d time.Duration
	for _, a := range s {
		d += a.Duration
	}
	return d
}
