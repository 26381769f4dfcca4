package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/v0xg/mgbacap/internal/config"
	"github.com/v0xg/mgbacap/internal/gifenc"
	"github.com/v0xg/mgbacap/internal/input"
	"github.com/v0xg/mgbacap/internal/orch"
	"github.com/v0xg/mgbacap/internal/project"
	"github.com/v0xg/mgbacap/internal/sampler"
	"github.com/v0xg/mgbacap/internal/window"
)

var (
	fps            float64
	duration       float64
	beforeCapture  string
	duringCapture  string
	outDir         string
	windowHint     string
	jobs           int
	locateTimeout  time.Duration
	captureTimeout time.Duration
	maxWidth       uint
	verbose        bool
)

func main() {
	// Load .env file if present (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "mgbacap [project-dir]",
		Short: "Capture animated GIFs of agbrs binaries running under mGBA",
		Long: `mgbacap builds every binary in an agbrs project, runs each one under the
mGBA emulator, optionally drives synthetic controller input, and records the
emulator window into an animated GIF.

Example:
  mgbacap --fps 10 --duration 3 --during-capture "right:100,wait:500,A" .`,
		Args: cobra.MaximumNArgs(1),
		RunE: run,
	}

	rootCmd.Flags().Float64Var(&fps, "fps", 10, "GIF framerate (frames per second)")
	rootCmd.Flags().Float64Var(&duration, "duration", 3.0, "GIF duration in seconds")
	rootCmd.Flags().StringVar(&beforeCapture, "before-capture", "", "Input sequence before capture (e.g. 'A:500,wait:1000,B')")
	rootCmd.Flags().StringVar(&duringCapture, "during-capture", "", "Input sequence during capture (e.g. 'right:100,wait:500,right:100')")
	rootCmd.Flags().StringVarP(&outDir, "out", "o", "out", "Output directory for GIFs")
	rootCmd.Flags().StringVar(&windowHint, "window", "mgba", "Emulator window title substring to capture")
	rootCmd.Flags().IntVar(&jobs, "jobs", 1, "Binaries captured in parallel")
	rootCmd.Flags().DurationVar(&locateTimeout, "locate-timeout", 10*time.Second, "How long to wait for the emulator window")
	rootCmd.Flags().DurationVar(&captureTimeout, "timeout", 2*time.Minute, "Overall time limit per binary")
	rootCmd.Flags().UintVar(&maxWidth, "max-width", 0, "Downscale frames wider than this (0 keeps native size)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed progress")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	projectDir := "."
	if len(args) == 1 {
		projectDir = args[0]
	}

	if _, err := os.Stat(projectDir); err != nil {
		return fmt.Errorf("directory does not exist: %s", projectDir)
	}
	if !project.IsAgbrsDir(projectDir) {
		return fmt.Errorf("directory does not appear to be an agbrs project: %s", projectDir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	binaries, err := project.Discover(projectDir)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d binaries: %v\n", len(binaries), binaries)

	fmt.Printf("→ Checking GBA toolchain... ")
	if err := project.EnsureToolchain(ctx); err != nil {
		fmt.Println("failed")
		return err
	}
	fmt.Println("done")

	fmt.Printf("→ Pre-building binaries... ")
	if err := project.Prebuild(ctx, projectDir, binaries); err != nil {
		fmt.Println("failed")
		return err
	}
	fmt.Println("done")

	cfgFile, err := config.Load(projectDir)
	if err != nil {
		return err
	}
	if cfgFile != nil {
		logVerbose("Using %s configuration", config.FileName)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	jobList := make([]orch.Job, 0, len(binaries))
	for _, binary := range binaries {
		cfg := cfgFile.Resolve(binary, fps, duration, beforeCapture, duringCapture)
		if err := cfg.Validate(); err != nil {
			return err
		}
		binary := binary
		jobList = append(jobList, orch.Job{
			Binary: binary,
			Hint:   windowHint,
			Config: cfg,
			Launch: func(ctx context.Context) (func(), error) {
				proc, err := project.Launch(ctx, projectDir, binary)
				if err != nil {
					return nil, err
				}
				return proc.Kill, nil
			},
			Sink: &gifSink{path: filepath.Join(outDir, binary+".gif")},
		})
	}

	driver := input.New(input.SystemInjector{}, input.Options{Verbose: verbose})
	locator := window.NewLocator(window.DesktopRegistry{})
	orchestrator := orch.New(locator, driver, nil, orch.Options{
		LocateTimeout:  locateTimeout,
		CaptureTimeout: captureTimeout,
		Verbose:        verbose,
	})

	fmt.Println("→ Recording...")
	results := orchestrator.RunAll(ctx, jobList, jobs)

	failures := 0
	for _, res := range results {
		switch res.State {
		case orch.StateDone:
			fmt.Printf("✓ %s: %d frames (%.1f KB)\n", res.Binary, res.Frames, float64(res.Size)/1024)
		case orch.StatePartiallyDone:
			fmt.Printf("⚠ %s: %d of %d frames (%.1f KB): %v\n", res.Binary, res.Frames, res.Requested, float64(res.Size)/1024, res.Err)
		default:
			failures++
			fmt.Printf("✗ %s: %v\n", res.Binary, res.Err)
		}
	}

	if failures == len(results) {
		return fmt.Errorf("all %d captures failed", len(results))
	}
	fmt.Printf("GIFs written to %s/\n", outDir)
	return nil
}

// gifSink writes one binary's frames to its GIF path.
type gifSink struct {
	path string
}

func (s *gifSink) Encode(frames []sampler.Frame, targetFPS float64) (int64, error) {
	return gifenc.Encode(frames, s.path, gifenc.Options{FPS: targetFPS, MaxWidth: maxWidth})
}

func logVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}
