// Package config loads the rpcftpd server configuration from YAML.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the rpcftpd configuration file. The zero value of every field
// means "use the default".
type Config struct {
	// Addr is the control listen address.
	Addr string `yaml:"addr"`
	// Root is the directory exported to clients.
	Root string `yaml:"root"`
	// PassiveHost is the address passive listeners bind to.
	PassiveHost string `yaml:"passive_host"`
	// BufferSize is the transfer copy buffer size in bytes.
	BufferSize int `yaml:"buffer_size"`
	// MaxConnections limits simultaneous bindings, 0 for no limit.
	MaxConnections int `yaml:"max_connections"`
	// MaxIdleTime closes control connections idle for longer, e.g. "5m".
	MaxIdleTime time.Duration `yaml:"max_idle_time"`

	Log LogConfig `yaml:"log"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:        ":1099",
		Root:        ".",
		BufferSize:  1024,
		MaxIdleTime: 5 * time.Minute,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fills empty fields with defaults and rejects invalid values.
func (c *Config) Validate() error {
	def := Default()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.Root == "" {
		c.Root = def.Root
	}
	if c.BufferSize == 0 {
		c.BufferSize = def.BufferSize
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("buffer_size must be > 0")
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("max_connections must be >= 0")
	}
	if c.MaxIdleTime < 0 {
		return fmt.Errorf("max_idle_time must be >= 0")
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "":
		c.Log.Format = def.Log.Format
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger builds the logger described by the log section, writing to w.
func (l LogConfig) Logger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
