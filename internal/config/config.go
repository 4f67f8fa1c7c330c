// Package config loads and saves tripbudget settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all tripbudget configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Estimator  EstimatorConfig  `toml:"estimator"`
	Session    SessionConfig    `toml:"session"`
	Auth       AuthConfig       `toml:"auth"`
	Planner    PlannerConfig    `toml:"planner"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
	Logging    LoggingConfig    `toml:"logging"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DefaultMonth string `toml:"default_month,omitempty"`
}

// EstimatorConfig tunes the budget estimator.
type EstimatorConfig struct {
	// Seed fixes the random source when non-zero.
	Seed  uint64                  `toml:"seed,omitempty"`
	Rates map[string]RateOverride `toml:"rates,omitempty"`
}

// RateOverride replaces the daily range of one category.
type RateOverride struct {
	Min *float64 `toml:"min,omitempty"`
	Max *float64 `toml:"max,omitempty"`
}

// SessionConfig selects where the mock session user is persisted.
type SessionConfig struct {
	Backend   string `toml:"backend"`
	Path      string `toml:"path,omitempty"`
	RedisAddr string `toml:"redis_addr,omitempty"`
	RedisDB   int    `toml:"redis_db,omitempty"`
	KeyPrefix string `toml:"key_prefix,omitempty"`
}

// AuthConfig holds mock authentication settings.
type AuthConfig struct {
	DelayMs int `toml:"delay_ms"`
}

// PlannerConfig holds settings for the interactive planner.
type PlannerConfig struct {
	ProcessingDelayMs int `toml:"processing_delay_ms"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr          string   `toml:"addr"`
	CORSOrigins   []string `toml:"cors_origins"`
	TokenSecret   string   `toml:"token_secret,omitempty"`
	TokenTTLHours int      `toml:"token_ttl_hours"`
	EventsBuffer  int      `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LoggingConfig holds log level and output format.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Session backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			Backend:   BackendSQLite,
			KeyPrefix: "tripbudget:",
		},
		Auth: AuthConfig{
			DelayMs: 1000,
		},
		Planner: PlannerConfig{
			ProcessingDelayMs: 1500,
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:8787",
			CORSOrigins:   []string{"*"},
			TokenTTLHours: 24,
			EventsBuffer:  200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tripbudget")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tripbudget")
}

// Path returns the full path to the default config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory for the session store.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "tripbudget")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "tripbudget")
}

// SessionPath returns the SQLite session database path.
func (c Config) SessionPath() string {
	if c.Session.Path != "" {
		return c.Session.Path
	}
	return filepath.Join(DataDir(), "session.db")
}

// Load reads the default config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the local user
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is chosen by the local user
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// AuthDelay is the simulated latency of mock sign-in calls.
func (c Config) AuthDelay() time.Duration {
	return time.Duration(c.Auth.DelayMs) * time.Millisecond
}

// ProcessingDelay is the simulated analysis time shown by the planner.
func (c Config) ProcessingDelay() time.Duration {
	return time.Duration(c.Planner.ProcessingDelayMs) * time.Millisecond
}

// TokenTTL is the lifetime of API session tokens.
func (c Config) TokenTTL() time.Duration {
	if c.Server.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Server.TokenTTLHours) * time.Hour
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Session.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("session.backend: unknown backend %q", c.Session.Backend))
	}
	if c.Session.Backend == BackendRedis && c.Session.RedisAddr == "" {
		errs = append(errs, errors.New("session.redis_addr: required for redis backend"))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}

	if c.Auth.DelayMs < 0 {
		errs = append(errs, errors.New("auth.delay_ms: must not be negative"))
	}
	if c.Planner.ProcessingDelayMs < 0 {
		errs = append(errs, errors.New("planner.processing_delay_ms: must not be negative"))
	}

	errs = append(errs, c.validateRates()...)

	return errors.Join(errs...)
}
