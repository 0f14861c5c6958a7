package codegen

import (
	"log/slog"
	"time"

	"github.com/relgenhq/relgen/dialect"
)

// Config collects everything Generate needs beyond the schema history and
// query list: which dialect to emit for, the emitted file's package name,
// how long the emitted Migrate function waits between lock retries, and
// the hooks a caller can override (logger, output formatter).
type Config struct {
	Dialect         string
	Package         string
	Header          string
	LockTimeout     time.Duration
	LockRetryDelay  time.Duration
	Logger          *slog.Logger
	OutputFormatter func([]byte) ([]byte, error)
}

// Option configures a Config.
type Option func(*Config) error

// WithDialect sets the target dialect (dialect.Postgres or
// dialect.SQLite). Required.
func WithDialect(name string) Option {
	return func(c *Config) error {
		if !dialect.Supported(name) {
			return NewConfigError("Dialect", name, "unsupported dialect; use postgres or sqlite")
		}
		c.Dialect = name
		return nil
	}
}

// WithPackage sets the emitted file's package name. Required.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithHeader sets a comment prepended to the emitted file, above the
// package clause.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithLockTimeout sets how long the emitted Migrate function waits to
// acquire the migration lock before giving up. Zero means wait forever.
func WithLockTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d < 0 {
			return NewConfigError("LockTimeout", d, "lock timeout cannot be negative")
		}
		c.LockTimeout = d
		return nil
	}
}

// WithLockRetryDelay overrides the emitted Migrate function's retry
// interval between failed lock attempts. Defaults to five seconds.
func WithLockRetryDelay(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return NewConfigError("LockRetryDelay", d, "lock retry delay must be positive")
		}
		c.LockRetryDelay = d
		return nil
	}
}

// WithLogger sets the *slog.Logger the generator reports its own
// diagnostics through: one Info record per Generate call once planning
// and checking have succeeded. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = logger
		return nil
	}
}

// WithOutputFormatter overrides how the emitted source is formatted
// before Generate returns it. Defaults to Format, which wraps
// golang.org/x/tools/imports.Process.
func WithOutputFormatter(f func([]byte) ([]byte, error)) Option {
	return func(c *Config) error {
		if f == nil {
			return NewConfigError("OutputFormatter", nil, "output formatter cannot be nil")
		}
		c.OutputFormatter = f
		return nil
	}
}

// newConfig builds a Config from opts, filling in defaults for anything
// left unset.
func newConfig(opts ...Option) (*Config, error) {
	c := &Config{
		LockRetryDelay:  5 * time.Second,
		Logger:          slog.Default(),
		OutputFormatter: Format,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.Dialect == "" {
		return nil, NewConfigError("Dialect", nil, "dialect is required")
	}
	if c.Package == "" {
		return nil, NewConfigError("Package", nil, "package is required")
	}
	return c, nil
}
