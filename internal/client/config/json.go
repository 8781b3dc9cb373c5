package config

import (
	"encoding/json"
	"os"

	"github.com/scubelic/llmwatcher/internal/flagx"
	"github.com/scubelic/llmwatcher/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// go through timex.Duration so the file may use "5s" or nanoseconds.
// Absent keys leave the current value untouched.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	DBPath         *string         `json:"db_path"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	CloseDelay     *timex.Duration `json:"close_delay"`
	Theme          *string         `json:"theme"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without either flag nothing is loaded. Read and decode
// errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.Theme, jc.Theme)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.CloseDelay != nil {
		cfg.CloseDelay = jc.CloseDelay.Duration
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
