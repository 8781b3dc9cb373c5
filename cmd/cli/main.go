package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/scubelic/llmwatcher/internal/buildinfo"
	"github.com/scubelic/llmwatcher/internal/client/cli"
	"github.com/scubelic/llmwatcher/internal/client/config"
	"github.com/scubelic/llmwatcher/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "cli stopped", "error", err)
		os.Exit(1)
	}
}

// loadConfig turns the loader's panics into an error.
func loadConfig() (cfg *config.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return config.LoadConfig(), nil
}
