// Package project discovers agbrs binaries and runs them under mGBA via
// the cargo runner configured in the project's .cargo/config.toml.
package project

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// IsAgbrsDir reports whether dir looks like an agbrs project: Cargo.toml
// plus src/bin/ or src/main.rs, with the GBA target or mgba runner in
// .cargo/config.toml.
func IsAgbrsDir(dir string) bool {
	if !exists(filepath.Join(dir, "Cargo.toml")) {
		return false
	}
	if !exists(filepath.Join(dir, "src", "bin")) && !exists(filepath.Join(dir, "src", "main.rs")) {
		return false
	}
	data, err := os.ReadFile(filepath.Join(dir, ".cargo", "config.toml"))
	if err != nil {
		return false
	}
	content := string(data)
	return strings.Contains(content, "thumbv4t-none-eabi") || strings.Contains(content, "mgba")
}

// Discover enumerates the project's binaries: src/bin/*.rs stems, else the
// Cargo package name for a src/main.rs project, else the directory name.
// Results are sorted for a stable capture order.
func Discover(dir string) ([]string, error) {
	var binaries []string

	entries, err := os.ReadDir(filepath.Join(dir, "src", "bin"))
	if err == nil {
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".rs") {
				continue
			}
			binaries = append(binaries, strings.TrimSuffix(e.Name(), ".rs"))
		}
	}

	if len(binaries) == 0 && exists(filepath.Join(dir, "src", "main.rs")) {
		if name := packageName(filepath.Join(dir, "Cargo.toml")); name != "" {
			binaries = append(binaries, name)
		} else {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return nil, err
			}
			binaries = append(binaries, filepath.Base(abs))
		}
	}

	if len(binaries) == 0 {
		return nil, fmt.Errorf("no binaries found in %s/src/bin or %s/src/main.rs", dir, dir)
	}

	sort.Strings(binaries)
	return binaries, nil
}

// packageName pulls `name = "..."` out of Cargo.toml.
func packageName(cargoToml string) string {
	data, err := os.ReadFile(cargoToml)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "name") {
			continue
		}
		_, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return ""
}

// hasSrcBin controls whether cargo needs the --bin flag.
func hasSrcBin(dir string) bool {
	return exists(filepath.Join(dir, "src", "bin"))
}

// EnsureToolchain installs the nightly toolchain if missing; agbrs builds
// need it for build-std.
func EnsureToolchain(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, "rustup", "toolchain", "list").Output()
	if err != nil {
		return fmt.Errorf("listing rust toolchains: %w", err)
	}
	if strings.Contains(string(out), "nightly") {
		return nil
	}
	cmd := exec.CommandContext(ctx, "rustup", "toolchain", "install", "nightly")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("installing nightly toolchain: %v: %s", err, out)
	}
	return nil
}

// Prebuild compiles every binary up front so launches during capture are
// instant.
func Prebuild(ctx context.Context, dir string, binaries []string) error {
	for _, binary := range binaries {
		args := []string{"+nightly", "build", "--release"}
		if hasSrcBin(dir) {
			args = append(args, "--bin", binary)
		}
		cmd := exec.CommandContext(ctx, "cargo", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("building %s: %v: %s", binary, err, out)
		}
	}
	return nil
}

// Process is a launched emulator instance.
type Process struct {
	cmd *exec.Cmd
}

// Launch starts the binary under its cargo runner (mGBA) and returns the
// process handle. The caller owns the handle and must Kill it when the
// capture finishes.
func Launch(ctx context.Context, dir, binary string) (*Process, error) {
	args := []string{"+nightly", "run", "--release"}
	if hasSrcBin(dir) {
		args = append(args, "--bin", binary)
	}
	cmd := exec.CommandContext(ctx, "cargo", args...)
	cmd.Dir = dir
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launching %s: %w", binary, err)
	}
	return &Process{cmd: cmd}, nil
}

// Kill terminates the emulator process. Safe to call after exit.
func (p *Process) Kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
		_ = p.cmd.Wait()
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
