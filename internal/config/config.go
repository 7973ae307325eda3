// Package config loads application settings from environment variables.
// Every field has a default, and Load validates the result so the server
// fails fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Catalog source kinds.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Catalog CatalogConfig
	Session SessionConfig
	Import  ImportConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envAlt:"PORT" default:"8050"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// CatalogConfig selects where the reference catalog is read from.
type CatalogConfig struct {
	// Source is "csv" (default) or "postgres".
	Source string `env:"CATALOG_SOURCE" default:"csv"`

	// Path is the CSV export of the combined dataset.
	Path string `env:"CATALOG_PATH" envAlt:"DATA_PATH" default:"data/combined_data.csv"`

	// DatabaseURL and Table are used when Source is "postgres".
	DatabaseURL string `env:"CATALOG_DATABASE_URL" envAlt:"DATABASE_URL"`
	Table       string `env:"CATALOG_TABLE" default:"combined_data"`
}

// SessionConfig holds editing session settings.
type SessionConfig struct {
	CookieName    string        `env:"SESSION_COOKIE_NAME" default:"exposure_session"`
	TTL           time.Duration `env:"SESSION_TTL" default:"12h"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"10m"`
	SecureCookie  bool          `env:"SESSION_SECURE_COOKIE" default:"false"`
}

// ImportConfig limits uploaded import files.
type ImportConfig struct {
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"1048576"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
