// Package config loads service settings from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when neither a flag nor RECS_CONFIG names a file.
	DefaultConfigPath = "config.yaml"
	// DefaultDSN stores data in a local SQLite file.
	DefaultDSN = "file:data/recommendations.db"
	// DefaultMaxBodyBytes caps request bodies at 1 MiB.
	DefaultMaxBodyBytes int64 = 1 << 20
)

// AppConfig carries process-level options supplied on the command line.
type AppConfig struct {
	ConfigPath string
}

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// DatabaseConfig selects the backing store.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// LogConfig controls logrus output and file rotation.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // text or json
	File       string `yaml:"file"`   // empty disables file output
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Database: DatabaseConfig{
			DSN: DefaultDSN,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
	}
}

// ResolveConfigPath returns the config path from the flag, RECS_CONFIG, or the default.
func ResolveConfigPath(flagPath string) string {
	if p := strings.TrimSpace(flagPath); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv("RECS_CONFIG")); p != "" {
		return p
	}
	return DefaultConfigPath
}

// Load reads path on top of the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if errEnv := godotenv.Load(); errEnv != nil && !errors.Is(errEnv, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", errEnv)
	}

	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, errRead := os.ReadFile(path)
		switch {
		case errRead == nil:
			if errParse := yaml.Unmarshal(data, &cfg); errParse != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, errParse)
			}
		case errors.Is(errRead, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, errRead)
		}
	}

	if errOverride := applyEnv(&cfg); errOverride != nil {
		return nil, errOverride
	}
	cfg.normalize()
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URI")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		port, errPort := strconv.Atoi(v)
		if errPort != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("config: invalid PORT %q", v)
		}
		cfg.Server.Addr = ":" + strconv.Itoa(port)
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FILE")); v != "" {
		cfg.Log.File = v
	}
	return nil
}

func (c *Config) normalize() {
	defaults := Default()
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		c.Database.DSN = defaults.Database.DSN
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = defaults.Log.Level
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}
