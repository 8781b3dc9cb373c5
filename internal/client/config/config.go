package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/scubelic/llmwatcher/internal/client/theme"
)

// Config holds runtime settings for the watcher CLI.
//
// Fields:
//   - ServerURL: base URL of the backend HTTP API.
//   - DBPath: SQLite file holding the persisted session.
//   - RequestTimeout: upper bound for a single backend request.
//   - CloseDelay: how long the API keys success message stays up.
//   - Theme: initial palette, "dark" or "light".
//   - LogLevel, LogFormat: slog level and handler ("text" or "json").
type Config struct {
	ServerURL      string        `env:"SERVER_URL"`
	DBPath         string        `env:"DB_PATH"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	CloseDelay     time.Duration `env:"CLOSE_DELAY"`
	Theme          string        `env:"THEME"`
	LogLevel       string        `env:"LOG_LEVEL"`
	LogFormat      string        `env:"LOG_FORMAT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000"
	c.DBPath = "watcher.db"
	c.RequestTimeout = 10 * time.Second
	c.CloseDelay = time.Second
	c.Theme = string(theme.Dark)
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.ServerURL)
	}
	if c.DBPath == "" {
		return errors.New("db path must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.CloseDelay < 0 {
		return fmt.Errorf("close delay must not be negative, got %s", c.CloseDelay)
	}
	if _, err := theme.Parse(c.Theme); err != nil {
		return err
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q: must be text or json", c.LogFormat)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a .env file, JSON (if present), WATCHER_* environment variables and
// command-line flags. Later sources take precedence over earlier ones.
// It panics on malformed input; callers recover at startup.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	loadDotEnv(dotEnvFile)
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
