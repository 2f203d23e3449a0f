package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable holding an optional YAML config file.
const FileEnv = "CONFIG_FILE"

// Load builds the configuration from defaults, the optional YAML file named by
// CONFIG_FILE, and environment variables, then validates the result.
// Environment variables win over the file; the file wins over defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	root := reflect.ValueOf(cfg).Elem()

	if err := walk(root, applyDefault); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path := os.Getenv(FileEnv); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	if err := walk(root, applyEnv); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadFile overlays the YAML document at path onto cfg.
// Keys absent from the file leave the current value untouched.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// fieldFunc is applied to every tagged leaf field.
type fieldFunc func(field reflect.StructField, value reflect.Value) error

// walk recursively visits struct fields that carry an env tag.
func walk(v reflect.Value, fn fieldFunc) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := walk(fieldVal, fn); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("env") == "" {
			continue
		}
		if err := fn(field, fieldVal); err != nil {
			return err
		}
	}

	return nil
}

func applyDefault(field reflect.StructField, value reflect.Value) error {
	def := field.Tag.Get("default")
	if def == "" {
		return nil
	}
	if err := setField(value, def); err != nil {
		return fmt.Errorf("invalid default for %s=%q: %w", field.Tag.Get("env"), def, err)
	}
	return nil
}

func applyEnv(field reflect.StructField, value reflect.Value) error {
	envName := field.Tag.Get("env")

	// Try primary env var, then alternate
	raw := os.Getenv(envName)
	if raw == "" {
		if alt := field.Tag.Get("envAlt"); alt != "" {
			raw = os.Getenv(alt)
		}
	}
	if raw == "" {
		return nil
	}

	if err := setField(value, raw); err != nil {
		return fmt.Errorf("invalid value for %s=%q: %w", envName, raw, err)
	}
	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Split comma-separated values, trim whitespace
			parts := strings.Split(value, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
			field.Set(reflect.ValueOf(result))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Data source validation
	if c.Data.Path == "" && c.Data.Table == "" {
		errs = append(errs, "one of DATA_PATH or DATA_TABLE is required")
	}
	if c.Data.Table != "" && c.Database.URL == "" {
		errs = append(errs, "DATA_TABLE requires DATABASE_URL")
	}
	if c.Data.Delimiter != "" && utf8.RuneCountInString(c.Data.Delimiter) != 1 {
		errs = append(errs, fmt.Sprintf("DATA_DELIMITER (%q) must be a single character", c.Data.Delimiter))
	}
	if c.Data.LoadTimeout <= 0 {
		errs = append(errs, "DATA_LOAD_TIMEOUT must be positive")
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}

	// Filter default validation
	ranges := []struct {
		name     string
		min, max int
	}{
		{"FILTER_AGE", c.Filters.AgeMin, c.Filters.AgeMax},
		{"FILTER_DISTANCE", c.Filters.DistanceMin, c.Filters.DistanceMax},
		{"FILTER_SEAT_COMFORT", c.Filters.SeatComfortMin, c.Filters.SeatComfortMax},
	}
	for _, r := range ranges {
		if r.min > r.max {
			errs = append(errs, fmt.Sprintf("%s_MIN (%d) must be <= %s_MAX (%d)", r.name, r.min, r.name, r.max))
		}
	}
	if c.Filters.PageSize <= 0 {
		errs = append(errs, "TABLE_PAGE_SIZE must be positive")
	}
	if c.Filters.MaxPageSize < c.Filters.PageSize {
		errs = append(errs, fmt.Sprintf("TABLE_MAX_PAGE_SIZE (%d) must be >= TABLE_PAGE_SIZE (%d)",
			c.Filters.MaxPageSize, c.Filters.PageSize))
	}

	// Export validation
	if c.Export.MaxConcurrent <= 0 {
		errs = append(errs, "EXPORT_MAX_CONCURRENT must be positive")
	}
	if c.Export.MaxWaitTime <= 0 {
		errs = append(errs, "EXPORT_MAX_WAIT_TIME must be positive")
	}

	// Session validation
	if c.Session.CookieName == "" {
		errs = append(errs, "SESSION_COOKIE must not be empty")
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.ExportLimit <= 0 {
		errs = append(errs, "RATE_LIMIT_EXPORT must be positive when rate limiting is enabled")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	// Metrics validation
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Sprintf("METRICS_PATH (%q) must start with /", c.Metrics.Path))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs are masked.
func (c *Config) String() string {
	dbURL := ""
	if c.Database.URL != "" {
		dbURL = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Data: {Path: %q, Sheet: %q, Table: %q}, ", c.Data.Path, c.Data.Sheet, c.Data.Table))
	b.WriteString(fmt.Sprintf("Database: {URL: %s, MaxConns: %d}, ", dbURL, c.Database.MaxConns))
	b.WriteString(fmt.Sprintf("Filters: {Age: %d-%d, Distance: %d-%d, SeatComfort: %d-%d}, ",
		c.Filters.AgeMin, c.Filters.AgeMax, c.Filters.DistanceMin, c.Filters.DistanceMax,
		c.Filters.SeatComfortMin, c.Filters.SeatComfortMax))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}, ",
		c.Logging.Level, c.Logging.Format))
	b.WriteString(fmt.Sprintf("Metrics: {Enabled: %v, Path: %q}", c.Metrics.Enabled, c.Metrics.Path))
	b.WriteString("}")
	return b.String()
}
