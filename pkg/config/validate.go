package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ValidationError reports one rejected configuration key.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks the run settings and the section of the selected backend.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch {
	case c.DB == "":
		add("db", "required, one of %s", strings.Join(Backends, ", "))
	case !slices.Contains(Backends, c.DB):
		add("db", "%q is not one of %s", c.DB, strings.Join(Backends, ", "))
	}
	if c.Interval < 0 {
		add("interval", "must not be negative, got %v", c.Interval)
	}
	if c.Period <= 0 {
		add("period", "must be positive, got %d", c.Period)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		add("log_level", "%q is not one of debug, info, warn, error", c.LogLevel)
	}

	switch c.DB {
	case "oracle":
		if c.Oracle.ConnectString == "" {
			add("oracle.connect_string", "required")
		}
	case "postgresql":
		if c.PostgreSQL.Host == "" {
			add("postgresql.host", "required")
		}
		validPort(add, "postgresql.port", c.PostgreSQL.Port)
	case "mysql":
		if c.MySQL.Host == "" {
			add("mysql.host", "required")
		}
		validPort(add, "mysql.port", c.MySQL.Port)
	case "sqlserver":
		if c.SQLServer.Host == "" {
			add("sqlserver.host", "required")
		}
		validPort(add, "sqlserver.port", c.SQLServer.Port)
	case "url":
		if strings.TrimSpace(c.URL.Target) == "" {
			add("url.target", "required")
		}
	}

	for i, o := range c.Outputs {
		if o.Type == "" {
			add(fmt.Sprintf("outputs[%d].type", i), "required")
		}
	}

	return errors.Join(errs...)
}

func validPort(add func(string, string, ...any), field string, port int) {
	if port <= 0 || port > 65535 {
		add(field, "must be between 1 and 65535, got %d", port)
	}
}
