package config

import (
	"flag"
	"io"
	"os"

	"github.com/scubelic/llmwatcher/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string          backend base URL
//	-d string          session database file
//	-t duration        request timeout (e.g. 5s)
//	-theme string      dark or light
//	-log-level string  debug, info, warn or error
//
// os.Args is filtered with flagx.FilterArgs so -c/-config and other
// loaders' flags do not trip the parser.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-theme", "-log-level"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "backend base URL")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "session database file")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "color theme (dark|light)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
