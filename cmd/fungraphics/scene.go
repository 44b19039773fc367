package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/opd-ai/go-fungraphics/internal/config"
	"github.com/opd-ai/go-fungraphics/internal/lua"
	"github.com/opd-ai/go-fungraphics/internal/render"
	"github.com/opd-ai/go-fungraphics/pkg/fungraphics"
)

// surfaceOptions maps the configuration onto the surface options.
func surfaceOptions(cfg *config.Config, logger fungraphics.Logger, metrics *fungraphics.Metrics) fungraphics.Options {
	opts := fungraphics.DefaultOptions()
	opts.Width = cfg.Window.Width
	opts.Height = cfg.Window.Height
	opts.X = cfg.Window.X
	opts.Y = cfg.Window.Y
	opts.Title = cfg.Window.Title
	opts.HighQuality = cfg.Display.HighQuality
	opts.CheckBounds = cfg.Display.CheckBounds
	opts.ShowFPS = cfg.Display.ShowFPS
	opts.RefreshRate = cfg.Display.RefreshRate
	opts.Background = cfg.Display.Background
	opts.Headless = cfg.Display.Output == config.OutputHeadless
	opts.Terminal = cfg.Display.Output == config.OutputTerminal
	opts.Logger = logger
	opts.Metrics = metrics
	return opts
}

// loadFonts registers the configured font files.
func loadFonts(fg *fungraphics.FunGraphics, fonts []config.FontConfig) error {
	for _, f := range fonts {
		style, err := render.ParseFontStyle(f.Style)
		if err != nil {
			return fmt.Errorf("font %s: %w", f.Family, err)
		}
		if err := fg.LoadFont(f.Family, style, f.Path); err != nil {
			return fmt.Errorf("font %s: %w", f.Family, err)
		}
	}
	return nil
}

// runScene opens the surface, loads the scene and runs it until ctx is
// cancelled, the display closes or the configured frame count is reached.
// It must be called from the main goroutine.
func runScene(ctx context.Context, cfg *config.Config, flags *cliFlags, logger fungraphics.Logger, stdout io.Writer) error {
	metrics := fungraphics.DefaultMetrics()
	metrics.RegisterExpvar()

	fg, err := fungraphics.New(surfaceOptions(cfg, logger, metrics))
	if err != nil {
		return err
	}
	defer fg.Close()

	if err := loadFonts(fg, cfg.Fonts); err != nil {
		return err
	}

	scene, err := lua.NewScene(fg, lua.SceneConfig{
		Runtime: lua.RuntimeConfig{
			CPULimit:    cfg.Lua.CPULimit,
			MemoryLimit: cfg.Lua.MemoryLimit,
			Stdout:      stdout,
		},
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return err
	}
	if err := scene.LoadFile(cfg.Scene.Script); err != nil {
		return err
	}
	defer scene.Close()

	fg.AddKeyListener(scene)
	fg.AddMouseListener(scene)
	fg.AddMouseMotionListener(scene)

	if cfg.Scene.Watch {
		w, err := lua.WatchScene(scene, lua.DefaultWatchDebounce, func(err error) {
			logger.Warn("scene reload failed", "scene", scene.Name(), "error", err)
		})
		if err != nil {
			return fmt.Errorf("failed to watch scene: %w", err)
		}
		defer w.Stop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// SIGHUP reloads the scene, as a manual alternative to -watch.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if err := scene.Reload(); err != nil {
					logger.Warn("scene reload failed", "scene", scene.Name(), "error", err)
				}
			}
		}
	}()

	if err := fg.Start(ctx); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		runLogic(ctx, fg, scene, cfg.Scene, logger)
	}()

	runErr := fg.Run()
	cancel()
	wg.Wait()
	fg.Stop()

	if flags.screenshot != "" {
		if err := fg.SaveAsPNG(flags.screenshot); err != nil {
			return err
		}
		logger.Info("screenshot saved", "path", flags.screenshot)
	}

	snap := metrics.Snapshot()
	logger.Info("scene finished",
		"scene", scene.Name(),
		"ticks", scene.Ticks(),
		"presented", fg.Frames(),
		"script_errors", snap.ScriptErrors,
		"dropped_events", scene.DroppedEvents(),
		"failed_events", scene.FailedEvents(),
	)
	return runErr
}

// runLogic calls the scene's frame() at the configured rate until ctx is
// done or the frame limit is reached. Script errors are logged and the
// loop goes on; the scene suspends itself after repeated failures.
func runLogic(ctx context.Context, fg *fungraphics.FunGraphics, scene *lua.Scene, sc config.SceneConfig, logger fungraphics.Logger) {
	var ticks int
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := fg.SyncGameLogic(sc.LogicRate); err != nil {
			logger.Error("logic pacing failed", "error", err)
			return
		}

		err := scene.Frame()
		switch {
		case errors.Is(err, lua.ErrSceneSuspended):
		case err != nil:
			logger.Warn("frame failed", "scene", scene.Name(), "error", err)
		}

		ticks++
		if sc.Frames > 0 && ticks >= sc.Frames {
			logger.Debug("frame limit reached", "frames", ticks)
			return
		}
	}
}
