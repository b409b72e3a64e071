package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"econdash/internal/config"
	"econdash/internal/logger"
)

const usage = `usage: econdash [flags] <command> [args]

commands:
  summary <country>                 print the latest value of every indicator
  chart <country> <code> <out.png>  render one indicator with its overlays
  export <country>                  archive a summary to the snapshot database
  serve                             run the web API

flags:
`

func main() {
	os.Exit(realMain())
}

func realMain() int {
	flags := config.Flags()
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	// Load configuration
	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log, closer, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return 1
	}
	defer closer.Close()

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("received interrupt signal, shutting down")
		cancel()
	}()

	app := newApp(cfg, log, os.Stdout)
	defer app.Close()

	if err := app.Run(ctx, flags.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			flags.Usage()
			return 2
		}
		log.Error().Err(err).Msg("command failed")
		return 1
	}
	return 0
}
