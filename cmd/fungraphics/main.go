// Package main provides fungraphics, a runner for Lua drawing scenes.
// It loads an optional Lua configuration file and a scene script, calls
// the scene's frame() at a fixed logic rate and presents the drawing in a
// window, in the terminal or headless.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-fungraphics/internal/config"
	"github.com/opd-ai/go-fungraphics/internal/profiling"
	"github.com/opd-ai/go-fungraphics/pkg/fungraphics"
)

// Version is the current version of fungraphics.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

// cliFlags holds the parsed command line.
type cliFlags struct {
	configPath  string
	scenePath   string
	screenshot  string
	cpuProfile  string
	heapProfile string
	frames      int
	watch       bool
	terminal    bool
	headless    bool
	verbose     bool
	jsonLogs    bool
	heapWatch   bool
	stats       bool
	version     bool
}

func parseFlags(args []string, output io.Writer) (*cliFlags, error) {
	fs := flag.NewFlagSet("fungraphics", flag.ContinueOnError)
	fs.SetOutput(output)

	f := &cliFlags{}
	fs.StringVar(&f.configPath, "c", "", "Path to a Lua configuration file")
	fs.StringVar(&f.scenePath, "s", "", "Path to the Lua scene (overrides the configuration)")
	fs.StringVar(&f.screenshot, "screenshot", "", "Save the last frame as PNG to this path on exit")
	fs.StringVar(&f.cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	fs.StringVar(&f.heapProfile, "memprofile", "", "Write heap profile to file on exit")
	fs.IntVar(&f.frames, "frames", 0, "Stop after this many logic ticks (0 runs until closed)")
	fs.BoolVar(&f.watch, "watch", false, "Reload the scene when its file changes")
	fs.BoolVar(&f.terminal, "terminal", false, "Present in the terminal instead of a window")
	fs.BoolVar(&f.headless, "headless", false, "Present into memory only")
	fs.BoolVar(&f.verbose, "v", false, "Verbose (debug) logging")
	fs.BoolVar(&f.jsonLogs, "json", false, "Log JSON records instead of text")
	fs.BoolVar(&f.heapWatch, "heapwatch", false, "Warn about sustained heap or goroutine growth")
	fs.BoolVar(&f.stats, "stats", false, "Serve live runtime charts on "+profiling.StatsAddress+" (statsview builds)")
	fs.BoolVar(&f.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if f.frames < 0 {
		return nil, fmt.Errorf("-frames must not be negative")
	}
	if f.terminal && f.headless {
		return nil, fmt.Errorf("-terminal and -headless are mutually exclusive")
	}
	return f, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if flags.version {
		fmt.Fprintf(stdout, "fungraphics version %s\n", Version)
		return 0
	}

	logger := newLogger(flags, stderr)

	cfg, err := loadConfig(flags, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	profConfig := profiling.Config{
		CPUProfilePath:  flags.cpuProfile,
		HeapProfilePath: flags.heapProfile,
	}
	if profConfig.Enabled() {
		profiler := profiling.New(profConfig)
		if err := profiler.Start(); err != nil {
			fmt.Fprintf(stderr, "Failed to start profiling: %v\n", err)
			return 1
		}
		defer func() {
			if err := profiler.Stop(); err != nil {
				fmt.Fprintf(stderr, "Warning: failed to stop profiling: %v\n", err)
			}
		}()
	}

	if flags.heapWatch {
		hw := profiling.NewHeapWatch(profiling.DefaultHeapWatchConfig(), func(g profiling.Growth) {
			logger.Warn("memory growth", "growth", g.String())
		})
		if err := hw.Start(); err == nil {
			defer hw.Stop()
		}
	}

	if flags.stats {
		if profiling.StatsViewAvailable() {
			profiling.LaunchStatsView(stderr)
		} else {
			logger.Warn("stats viewer not compiled in; rebuild with -tags statsview")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runScene(ctx, cfg, flags, logger, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(flags *cliFlags, stderr io.Writer) fungraphics.Logger {
	switch {
	case flags.jsonLogs && flags.verbose:
		return fungraphics.JSONLogger(stderr, slog.LevelDebug)
	case flags.jsonLogs:
		return fungraphics.JSONLogger(stderr, slog.LevelInfo)
	case flags.verbose:
		return fungraphics.DebugLogger()
	default:
		return fungraphics.DefaultLogger()
	}
}

// loadConfig reads the configuration file, if any, applies the command
// line overrides and validates the result. Warnings are logged.
func loadConfig(flags *cliFlags, logger fungraphics.Logger) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if flags.configPath != "" {
		parser, err := config.NewParser()
		if err != nil {
			return nil, err
		}
		defer parser.Close()

		parsed, err := parser.ParseFile(flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *parsed
	}

	if flags.scenePath != "" {
		cfg.Scene.Script = flags.scenePath
	}
	if flags.watch {
		cfg.Scene.Watch = true
	}
	if flags.frames > 0 {
		cfg.Scene.Frames = flags.frames
	}
	switch {
	case flags.terminal:
		cfg.Display.Output = config.OutputTerminal
	case flags.headless:
		cfg.Display.Output = config.OutputHeadless
	}

	result := config.NewValidator().Validate(&cfg)
	for _, w := range result.Warnings {
		logger.Warn("configuration warning", "field", w.Field, "message", w.Message)
	}
	if err := result.Error(); err != nil {
		return nil, err
	}
	if cfg.Scene.Script == "" {
		return nil, errors.New("no scene: use -s or set scene in the configuration")
	}
	return &cfg, nil
}
