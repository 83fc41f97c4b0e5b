package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/idilsaglam/tada/internal/auth"
	"github.com/idilsaglam/tada/internal/cli"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	configPath := flag.String("config", "", "config file (default: user config dir, then ./tada.toml)")
	apiURL := flag.String("api-url", "", "base URL of the todo API")
	theme := flag.String("theme", "", "output theme: classic, neon or mono")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	groupPending := flag.Bool("group", false, "group output by pending/done")
	flag.Parse()

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		ui.Fail("config: " + err.Error())
		os.Exit(2)
	}
	if err := cfg.ApplyFlags(config.Flags{APIURL: *apiURL, Theme: *theme, LogLevel: *logLevel}); err != nil {
		ui.Fail("config: " + err.Error())
		os.Exit(2)
	}
	ui.SetTheme(cfg.Theme)

	logger, err := cli.NewLogger(os.Stderr, cfg)
	if err != nil {
		ui.Fail("config: " + err.Error())
		os.Exit(2)
	}
	store, err := auth.DefaultStore()
	if err != nil {
		logger.Warn("credentials unavailable", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Run(ctx, args, cli.Options{
		Group:  *groupPending,
		Config: cfg,
		Logger: logger,
		Auth:   store,
		Stdin:  os.Stdin,
	})
	stop()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
