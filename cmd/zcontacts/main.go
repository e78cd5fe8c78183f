package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zapp"
	"github.com/zarlcorp/zcontacts/internal/cli"
	"github.com/zarlcorp/zcontacts/internal/config"
	"github.com/zarlcorp/zcontacts/internal/tui"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	app := zapp.New(zapp.WithName("zcontacts"))

	ctx, cancel := zapp.SignalContext(context.Background())
	defer cancel()

	err := run(ctx)
	if cerr := app.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "zcontacts: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// the tui owns the terminal, so logs go to a file in the data dir
	logger := config.NewLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if f, err := config.OpenLogFile(cfg.DataDir); err == nil {
		defer f.Close()
		logger = config.NewLogger(f, cfg.LogFormat, cfg.LogLevel)
	}
	slog.SetDefault(logger)

	env := &cli.Env{
		Config:  cfg,
		Logger:  logger,
		Version: version,
	}
	env.RunTUI = func(ctx context.Context) error {
		return runTUI(ctx, env)
	}

	return cli.NewRootCommand(env).ExecuteContext(ctx)
}

func runTUI(ctx context.Context, env *cli.Env) error {
	cfg := env.Config

	m := tui.New(version, cfg.DataDir, config.IsFirstRun(cfg.DataDir), tui.Deps{
		Postal:        env.Postal,
		NewGeocoder:   env.NewGeocoder,
		DefaultAPIKey: cfg.GoogleAPIKey,
		Logger:        env.Logger,
	})

	p := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(tui.Model); ok {
		fm.Close()
	}
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
