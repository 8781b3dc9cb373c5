package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	envPrefix  = "WATCHER_"
	dotEnvFile = ".env"
)

// loadDotEnv exports the variables from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err := godotenv.Load(path); err != nil {
		panic(err)
	}
}

// parseEnv overlays Config with WATCHER_* environment variables. Unset
// variables leave the field alone.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		panic(err)
	}
}
