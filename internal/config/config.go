// Package config provides centralized configuration management for the dashboard.
// Settings come from struct-tag defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in increasing order of precedence.
// All settings are validated on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"

	"github.com/JonMunkholm/airsat/internal/core"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Data     DataConfig      `yaml:"data"`
	Database DatabaseConfig  `yaml:"database"`
	Filters  FilterConfig    `yaml:"filters"`
	Export   ExportConfig    `yaml:"export"`
	Session  SessionConfig   `yaml:"session"`
	Rate     RateLimitConfig `yaml:"rate"`
	Security SecurityConfig  `yaml:"security"`
	Logging  LoggingConfig   `yaml:"logging"`
	Metrics  MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `yaml:"host" env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `yaml:"port" env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DataConfig selects the survey source.
type DataConfig struct {
	// Path is a delimited text file, or a workbook when it ends in .xlsx
	Path string `yaml:"path" env:"DATA_PATH" default:"data/airline_passenger_satisfaction.csv"`

	// Sheet is the workbook sheet to read (default: first sheet)
	Sheet string `yaml:"sheet" env:"DATA_SHEET"`

	// Delimiter is the single-character field separator for text files (default: ,)
	Delimiter string `yaml:"delimiter" env:"DATA_DELIMITER" default:","`

	// Table is a database table to read instead of Path; requires DATABASE_URL
	Table string `yaml:"table" env:"DATA_TABLE"`

	// OrderBy is the table column that fixes row order; empty keeps the database's order
	OrderBy string `yaml:"order_by" env:"DATA_ORDER_BY"`

	// LoadTimeout bounds reading and cleaning the dataset at startup (default: 2m)
	LoadTimeout time.Duration `yaml:"load_timeout" env:"DATA_LOAD_TIMEOUT" default:"2m"`
}

// DelimiterRune returns the configured delimiter as a rune, or ',' if unset.
func (c DataConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}

// DatabaseConfig holds database connection settings for a table source.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `yaml:"url" env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of pooled connections used while loading (default: 2)
	MaxConns int `yaml:"max_conns" env:"DB_MAX_CONNS" default:"2"`
}

// FilterConfig holds the initial dashboard filter ranges and table paging.
// Ranges are clamped to the observed data before use.
type FilterConfig struct {
	AgeMin         int `yaml:"age_min" env:"FILTER_AGE_MIN" default:"20"`
	AgeMax         int `yaml:"age_max" env:"FILTER_AGE_MAX" default:"60"`
	DistanceMin    int `yaml:"distance_min" env:"FILTER_DISTANCE_MIN" default:"100"`
	DistanceMax    int `yaml:"distance_max" env:"FILTER_DISTANCE_MAX" default:"5000"`
	SeatComfortMin int `yaml:"seat_comfort_min" env:"FILTER_SEAT_COMFORT_MIN" default:"0"`
	SeatComfortMax int `yaml:"seat_comfort_max" env:"FILTER_SEAT_COMFORT_MAX" default:"5"`

	// PageSize is the number of table rows per page (default: 25)
	PageSize int `yaml:"page_size" env:"TABLE_PAGE_SIZE" default:"25"`

	// MaxPageSize caps the page_size query parameter (default: 500)
	MaxPageSize int `yaml:"max_page_size" env:"TABLE_MAX_PAGE_SIZE" default:"500"`
}

// Defaults returns the configured initial ranges.
func (c FilterConfig) Defaults() core.DefaultRanges {
	return core.DefaultRanges{
		Age:         core.IntRange{Min: c.AgeMin, Max: c.AgeMax},
		Distance:    core.IntRange{Min: c.DistanceMin, Max: c.DistanceMax},
		SeatComfort: core.IntRange{Min: c.SeatComfortMin, Max: c.SeatComfortMax},
	}
}

// ExportConfig holds filtered-download settings.
type ExportConfig struct {
	// MaxConcurrent is the maximum number of parallel exports (default: 2)
	MaxConcurrent int `yaml:"max_concurrent" env:"EXPORT_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long to wait for an export slot (default: 10s)
	MaxWaitTime time.Duration `yaml:"max_wait_time" env:"EXPORT_MAX_WAIT_TIME" default:"10s"`
}

// SessionConfig holds dashboard session settings.
type SessionConfig struct {
	CookieName string        `yaml:"cookie_name" env:"SESSION_COOKIE" default:"airsat_session"`
	TTL        time.Duration `yaml:"ttl" env:"SESSION_TTL" default:"30m"`
	Secure     bool          `yaml:"secure" env:"SESSION_SECURE" default:"false"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `yaml:"requests_per_minute" env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// ExportLimit is requests per minute for export endpoints (default: 10)
	ExportLimit int `yaml:"export_limit" env:"RATE_LIMIT_EXPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `yaml:"enable_csp" env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level" env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `yaml:"format" env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" default:"true"`
	Path    string `yaml:"path" env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
