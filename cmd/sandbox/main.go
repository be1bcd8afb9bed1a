package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"github.com/hubastard/framelab/engine/config"
	"github.com/hubastard/framelab/engine/core"
	"github.com/hubastard/framelab/engine/gui"
	"github.com/hubastard/framelab/engine/logging"
	"github.com/hubastard/framelab/engine/metrics"
	"github.com/hubastard/framelab/engine/platform"
	"github.com/hubastard/framelab/engine/profiler"
	"github.com/hubastard/framelab/engine/theme"
	"go.uber.org/zap"
)

func init() {
	// GLFW and GL calls must stay on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, config.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "sandbox:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("session", uuid.NewString()))
	platform.SetLogger(log.Named("platform"))

	th, err := theme.ByName(cfg.Theme)
	if err != nil {
		return err
	}
	profiler.Init(cfg.Profiler.Capacity)

	win, err := platform.NewWindow(platform.WindowProperties{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		VSync:  cfg.Window.VSync,
	}, nil, log.Named("window"))
	if err != nil {
		return err
	}
	backend, err := gui.NewBackend(th, log.Named("gui"))
	if err != nil {
		_ = win.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector("framelab")
	app := core.New(win, backend,
		core.WithLogger(log),
		core.WithClock(platform.Time),
		core.WithMetrics(collector),
		core.WithContext(ctx),
	)
	go func() {
		<-ctx.Done()
		app.Stop()
	}()

	app.PushLayer(NewDockspaceLayer(cfg.Window.Width, cfg.Window.Height))
	app.PushOverlay(NewDebugLayer(cfg.Profiler.Output, backend))

	log.Info("sandbox running", zap.String("title", cfg.Window.Title), zap.String("theme", th.Name))
	app.Run()

	if sum, err := collector.Summary(); err == nil {
		fields := make([]zap.Field, 0, len(sum))
		for name, v := range sum {
			fields = append(fields, zap.Float64(name, v))
		}
		log.Info("sandbox metrics", fields...)
	}
	return app.Close()
}
