package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DillanDevs/linkedin-scraping/internal/cli"
	"github.com/DillanDevs/linkedin-scraping/internal/config"
	"github.com/DillanDevs/linkedin-scraping/internal/logging"

	"github.com/alecthomas/kong"
)

func main() {
	var root cli.CLI
	parser, err := kong.New(&root,
		kong.Name("automation"),
		kong.Description("LinkedIn job scraping automation: scrape, load, backup, cleanup, schedule."),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		parser.FatalIfErrorf(err)
	}

	cfg, err := config.Load(root.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level := cfg.Log.Level
	if root.Verbose {
		level = "debug"
	}
	logger := logging.New(level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx := &cli.Context{
		Ctx:    ctx,
		Out:    os.Stdout,
		Config: cfg,
		Logger: logger,
	}
	if err := kctx.Run(runCtx); err != nil {
		logger.Error().Err(err).Str("command", kctx.Command()).Msg("❌ Command failed")
		stop()
		os.Exit(1)
	}
}
