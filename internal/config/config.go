// Package config loads capture.json and resolves the effective capture
// settings for each binary.
//
// Precedence for input sequences: CLI flags > per-binary entry >
// settings.default > empty. Key mappings: per-binary > settings global >
// built-in defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/v0xg/mgbacap/internal/keymap"
)

// FileName is the per-project configuration file.
const FileName = "capture.json"

// BinaryConfig holds the sequence and mapping overrides for one binary.
type BinaryConfig struct {
	BeforeCapture string          `json:"before_capture,omitempty"`
	DuringCapture string          `json:"during_capture,omitempty"`
	KeyMappings   *keymap.Mapping `json:"key_mappings,omitempty"`
}

// Settings is the global section of capture.json.
type Settings struct {
	KeyMappings *keymap.Mapping `json:"key_mappings,omitempty"`
	Default     *BinaryConfig   `json:"default,omitempty"`
}

// File is the parsed shape of capture.json.
type File struct {
	Settings *Settings               `json:"settings,omitempty"`
	Binaries map[string]BinaryConfig `json:"binaries,omitempty"`
}

// Load reads capture.json from the project directory. A missing file is not
// an error; it yields a nil File and resolution falls through to CLI flags
// and built-in defaults.
func Load(projectDir string) (*File, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	return &f, nil
}

// Capture is the resolved configuration one orchestration run consumes.
// Invariant: FPS and Duration are positive; Validate rejects anything else
// before orchestration starts.
type Capture struct {
	FPS      float64
	Duration float64 // seconds
	Before   string
	During   string
	Mapping  keymap.Mapping
}

// Validate checks the numeric invariants.
func (c Capture) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %v", c.FPS)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", c.Duration)
	}
	return nil
}

// Resolve computes the effective capture settings for one binary. When
// either CLI flag is set, the pair overrides the file entirely.
func (f *File) Resolve(binary string, fps, duration float64, cliBefore, cliDuring string) Capture {
	c := Capture{
		FPS:      fps,
		Duration: duration,
		Mapping:  f.mappingFor(binary),
	}

	if cliBefore != "" || cliDuring != "" {
		c.Before, c.During = cliBefore, cliDuring
		return c
	}

	if f != nil {
		// A named entry wins outright; it is not merged with the default.
		if bc, ok := f.Binaries[binary]; ok {
			c.Before, c.During = bc.BeforeCapture, bc.DuringCapture
			return c
		}
		if f.Settings != nil && f.Settings.Default != nil {
			c.Before = f.Settings.Default.BeforeCapture
			c.During = f.Settings.Default.DuringCapture
		}
	}
	return c
}

// mappingFor layers the configured key mappings over the defaults.
func (f *File) mappingFor(binary string) keymap.Mapping {
	m := keymap.Default()
	if f == nil {
		return m
	}
	if f.Settings != nil && f.Settings.KeyMappings != nil {
		m = m.Merge(*f.Settings.KeyMappings)
	}
	if bc, ok := f.Binaries[binary]; ok && bc.KeyMappings != nil {
		m = m.Merge(*bc.KeyMappings)
	}
	return m
}
