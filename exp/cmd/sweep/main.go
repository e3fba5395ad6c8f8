package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"exp/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `Usage: sweep <command> [flags]

Commands:
  run     load the weblog, sweep K, store the results and render charts
  serve   run, then serve the charts and /metrics over HTTP

Flags:
`

func main() {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	configPath := fs.String("config", "sweep.toml", "Path to TOML config file")
	source := fs.String("source", "", "Weblog CSV path or URL (overrides input.source)")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	if len(os.Args) < 2 {
		fs.Usage()
		os.Exit(2)
	}
	command := os.Args[1]
	fs.Parse(os.Args[2:])

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := loadConfig(*configPath, *source)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("Failed to load config")
	}
	lvl, _ := cfg.LogLevel()
	zerolog.SetGlobalLevel(lvl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "run":
		if _, err := runSweep(ctx, cfg, nil); err != nil {
			log.Fatal().Err(err).Msg("Sweep failed")
		}
	case "serve":
		if err := serve(ctx, cfg); err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	default:
		fs.Usage()
		os.Exit(2)
	}
}

func loadConfig(path, source string) (config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && source != "" {
		cfg := config.Default()
		cfg.Input.Source = source
		return cfg, cfg.Validate()
	}
	cfg, err := config.Load(path)
	if source != "" {
		cfg.Input.Source = source
		return cfg, cfg.Validate()
	}
	return cfg, err
}
