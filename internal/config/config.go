package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables that override file values.
const (
	EnvConfigPath   = "WAR_RECORD_CONFIG"
	EnvDBPath       = "WAR_RECORD_DB_PATH"
	EnvSourceCSV    = "WAR_RECORD_SOURCE_CSV"
	EnvPort         = "WAR_RECORD_PORT"
	EnvPasswordHash = "WAR_RECORD_PASSWORD_HASH"
	EnvLogLevel     = "WAR_RECORD_LOG_LEVEL"
	EnvLogFormat    = "WAR_RECORD_LOG_FORMAT"
)

// Config represents the application configuration.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Source   SourceConfig   `toml:"source"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`

	path string
}

// DatabaseConfig contains the sqlite store settings.
type DatabaseConfig struct {
	Path        string `toml:"path"`         // sqlite file, or ":memory:"
	AutoMigrate bool   `toml:"auto_migrate"` // Run migrations on open

	// Scheduled backups run while the API server is up. An empty interval
	// disables them.
	BackupInterval string `toml:"backup_interval"` // e.g. "24h"
	BackupDir      string `toml:"backup_dir"`
	BackupKeep     int    `toml:"backup_keep"` // Newest backups kept, 0 keeps all
}

// SourceConfig points at the spreadsheet exports records are imported from.
type SourceConfig struct {
	RecordsCSV string `toml:"records_csv"`
	PlayersCSV string `toml:"players_csv"`
	ResultsCSV string `toml:"results_csv"`
	Watch      bool   `toml:"watch"`    // Re-import RecordsCSV when it changes
	Debounce   string `toml:"debounce"` // e.g. "500ms"
	Lenient    bool   `toml:"lenient"`  // Skip invalid record rows instead of rejecting the file
}

// ServerConfig contains API server settings.
type ServerConfig struct {
	Port           int      `toml:"port"`
	PasswordHash   string   `toml:"password_hash"` // bcrypt; empty disables auth
	RateLimit      float64  `toml:"rate_limit"`    // Requests per second per client, 0 disables
	RateBurst      int      `toml:"rate_burst"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RequestTimeout string   `toml:"request_timeout"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `toml:"level"`  // debug | info | warn | error
	Format string `toml:"format"` // json | console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        defaultDBPath(),
			AutoMigrate: true,
			BackupKeep:  7,
		},
		Source: SourceConfig{
			Watch:    false,
			Debounce: "500ms",
		},
		Server: ServerConfig{
			Port:           8080,
			RateLimit:      20,
			RateBurst:      40,
			AllowedOrigins: []string{"*"},
			RequestTimeout: "60s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func defaultDBPath() string {
	dir, err := configDir()
	if err != nil {
		return "war-record.db"
	}
	return filepath.Join(dir, "war-record.db")
}

func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".war-record"), nil
}

// DefaultPath returns the configuration file path, honoring WAR_RECORD_CONFIG.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads .env, then the default config file, then environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the file at path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides replaces file values with environment variables when set.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv(EnvSourceCSV); v != "" {
		cfg.Source.RecordsCSV = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvPasswordHash); v != "" {
		cfg.Server.PasswordHash = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// SaveTo writes the configuration to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	c.path = path
	return nil
}

// Save writes the configuration back to where it was loaded from, or to the
// default path.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	return c.SaveTo(path)
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Database.BackupInterval != "" {
		d, err := time.ParseDuration(c.Database.BackupInterval)
		if err != nil {
			return fmt.Errorf("invalid backup interval %q: %w", c.Database.BackupInterval, err)
		}
		if d < time.Minute {
			return fmt.Errorf("backup interval must be at least 1m: %s", d)
		}
	}
	if c.Database.BackupKeep < 0 {
		return fmt.Errorf("backup keep cannot be negative: %d", c.Database.BackupKeep)
	}

	if _, err := time.ParseDuration(c.Source.Debounce); err != nil {
		return fmt.Errorf("invalid debounce %q: %w", c.Source.Debounce, err)
	}
	if c.Source.Watch && c.Source.RecordsCSV == "" {
		return errors.New("source watch requires records_csv")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative: %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1 when rate limiting: %d", c.Server.RateBurst)
	}
	if _, err := time.ParseDuration(c.Server.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request timeout %q: %w", c.Server.RequestTimeout, err)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}

	return nil
}

// GetDebounce returns the watcher debounce as a duration.
func (c *Config) GetDebounce() (time.Duration, error) {
	return time.ParseDuration(c.Source.Debounce)
}

// GetBackupInterval returns the backup interval, 0 when backups are off.
func (c *Config) GetBackupInterval() (time.Duration, error) {
	if c.Database.BackupInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Database.BackupInterval)
}

// BackupDirectory returns where scheduled backups go, by default a
// "backups" directory next to the database.
func (c *Config) BackupDirectory() string {
	if c.Database.BackupDir != "" {
		return c.Database.BackupDir
	}
	return filepath.Join(filepath.Dir(c.Database.Path), "backups")
}

// GetRequestTimeout returns the server request timeout as a duration.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.RequestTimeout)
}
