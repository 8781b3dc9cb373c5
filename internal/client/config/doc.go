// Package config loads runtime configuration for the watcher CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional .env file in the working directory (godotenv); variables
//     already present in the environment are kept.
//  3. Optional JSON file selected with -c or -config.
//  4. WATCHER_* environment variables (caarlos0/env).
//  5. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string          backend base URL
//	-d string          session database file
//	-t duration        request timeout
//	-theme string      dark or light
//	-log-level string  debug, info, warn or error
//
// # JSON schema
//
//	{
//	  "server_url": "http://localhost:8000",
//	  "db_path": "watcher.db",
//	  "request_timeout": "10s",
//	  "close_delay": "1s",
//	  "theme": "dark",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
//
// # Environment
//
//	WATCHER_SERVER_URL, WATCHER_DB_PATH, WATCHER_REQUEST_TIMEOUT,
//	WATCHER_CLOSE_DELAY, WATCHER_THEME, WATCHER_LOG_LEVEL, WATCHER_LOG_FORMAT
package config
