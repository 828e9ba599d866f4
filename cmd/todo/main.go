package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/idilsaglam/todoclient/internal/api"
	"github.com/idilsaglam/todoclient/internal/auth"
	"github.com/idilsaglam/todoclient/internal/cli"
	"github.com/idilsaglam/todoclient/internal/config"
	"github.com/idilsaglam/todoclient/internal/logging"
	"github.com/idilsaglam/todoclient/internal/ui"
	"github.com/idilsaglam/todoclient/internal/view"
)

func main() {
	// Root flags (apply to every subcommand)
	apiURL := flag.String("api", "", "server root URL (overrides api_url)")
	timeoutMS := flag.Int("timeout", 0, "request timeout in milliseconds")
	theme := flag.String("theme", "", "output theme: classic|neon|mono")
	groupPending := flag.Bool("group", false, "group output by pending/done")
	flag.Usage = func() { cli.PrintHelp(os.Stderr) }
	flag.Parse()

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp(os.Stdout)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(1)
	}
	cfg.Override(*apiURL, *timeoutMS, *theme)
	if err := cfg.Validate(); err != nil {
		ui.Fail(os.Stderr, "config: "+err.Error())
		os.Exit(1)
	}
	ui.SetTheme(cfg.Theme)
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CLICOLOR_FORCE") != "" {
		ui.SetColorForcing(os.Getenv("CLICOLOR_FORCE") != "", os.Getenv("NO_COLOR") != "")
	}

	logger := logging.New(logging.Options{
		Enabled: cfg.LogErrors,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
	if cfg.File != "" {
		logger.Debug("config loaded", "file", cfg.File)
	}

	token, err := auth.Bearer()
	if err != nil {
		logger.Warn("ignoring stored credentials", "err", err)
	}
	client, err := api.New(api.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout(),
		Token:   token,
		Logger:  logger,
	})
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Run(ctx, view.New(client, logger), args, cli.Options{
		Group:   *groupPending,
		Logger:  logger,
		LogFile: cfg.LogFile,
	})
	stop()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
