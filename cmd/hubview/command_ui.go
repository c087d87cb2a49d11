package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"hubview/internal/app"
	"hubview/internal/config"
	"hubview/internal/logging"
	"hubview/internal/syncer"
)

type uiRunner func(ctx context.Context, engine app.Engine, opts app.Options) error

type UICommand struct {
	stderr  io.Writer
	runUI   uiRunner
	version string
}

func NewUICommand(stderr io.Writer, runUI uiRunner, version string) *UICommand {
	return &UICommand{
		stderr:  stderr,
		runUI:   runUI,
		version: version,
	}
}

func (c *UICommand) Run(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	showIDs := fs.Bool("ids", false, "show entity ids next to each row")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal; use hubview dump for plain output")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logPath, err := config.LogPath()
	if err != nil {
		return err
	}
	logger, closer, err := logging.NewFile(logPath, logging.ParseLevel(cfg.LogLevel()))
	if err != nil {
		return err
	}
	defer closer.Close()
	logger = logger.With(logging.F("version", c.version))

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runWithUI(ctx, engine, c.runUI, app.Options{
		ShowIDs: cfg.ShowIDs() || *showIDs,
		Logger:  logger,
	})
}

// runWithUI runs the engine and the UI side by side. Quitting the UI stops
// the engine; a failing engine publishes its final update, which ends the UI.
// The engine's error is the command's result.
func runWithUI(ctx context.Context, engine *syncer.Engine, runUI uiRunner, opts app.Options) error {
	g, gctx := errgroup.WithContext(ctx)
	engineCtx, stopEngine := context.WithCancel(gctx)
	defer stopEngine()

	g.Go(func() error {
		return engine.Run(engineCtx)
	})
	g.Go(func() error {
		defer stopEngine()
		return runUI(gctx, engine, opts)
	})
	return g.Wait()
}
