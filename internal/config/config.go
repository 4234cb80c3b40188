// Package config loads the agent configuration from a YAML file with
// environment-variable overrides for secrets.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreBackendSQLite = "sqlite"
	StoreBackendRedis  = "redis"
)

// Config is the on-disk configuration for marketing-agent.
//
// Secrets (provider API key, search API key, SMTP password) should come from
// the environment rather than the file; file values act as defaults.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	// LogFormat is "json" or "text".
	LogFormat string `yaml:"log_format"`
	// LogLevel is "debug|info|warn|error".
	LogLevel string `yaml:"log_level"`

	// TurnTimeoutSeconds bounds one full orchestrator invocation, including
	// all oracle calls it issues. Zero means the default of 90s.
	TurnTimeoutSeconds int `yaml:"turn_timeout_seconds"`

	Provider ProviderConfig `yaml:"provider"`
	Search   SearchConfig   `yaml:"search"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Store    StoreConfig    `yaml:"store"`
}

type ProviderConfig struct {
	// Type is "openai", "openai_compatible", or "anthropic".
	Type    string `yaml:"type"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

type SearchConfig struct {
	APIKey string `yaml:"api_key"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type StoreConfig struct {
	// Backend is "sqlite" or "redis".
	Backend string `yaml:"backend"`

	// Path is the sqlite database file (sqlite backend).
	Path string `yaml:"path"`

	// Redis settings (redis backend).
	RedisAddr       string `yaml:"redis_addr"`
	RedisPassword   string `yaml:"redis_password"`
	RedisDB         int    `yaml:"redis_db"`
	RedisTTLSeconds int    `yaml:"redis_ttl_seconds"`
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if strings.TrimSpace(c.Provider.Type) == "" {
		return errors.New("missing provider.type")
	}
	if strings.TrimSpace(c.Provider.APIKey) == "" {
		return errors.New("missing provider.api_key (or MARKETING_AGENT_PROVIDER_API_KEY)")
	}
	if strings.TrimSpace(c.Provider.Model) == "" {
		return errors.New("missing provider.model")
	}
	if strings.TrimSpace(c.Search.APIKey) == "" {
		return errors.New("missing search.api_key (or MARKETING_AGENT_SEARCH_API_KEY)")
	}
	switch strings.TrimSpace(c.Store.Backend) {
	case StoreBackendSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return errors.New("missing store.path for sqlite backend")
		}
	case StoreBackendRedis:
		if strings.TrimSpace(c.Store.RedisAddr) == "" {
			return errors.New("missing store.redis_addr for redis backend")
		}
	default:
		return fmt.Errorf("unsupported store.backend %q", c.Store.Backend)
	}
	return nil
}

// DefaultConfigPath returns ~/.marketing-agent/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return "marketing-agent.config.yaml"
	}
	return filepath.Join(home, ".marketing-agent", "config.yaml")
}

// Load reads the file, applies defaults and env overrides, and validates.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.ListenAddr) == "" {
		c.ListenAddr = "127.0.0.1:8480"
	}
	if strings.TrimSpace(c.LogFormat) == "" {
		c.LogFormat = "text"
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = "info"
	}
	if c.TurnTimeoutSeconds <= 0 {
		c.TurnTimeoutSeconds = 90
	}
	if strings.TrimSpace(c.Store.Backend) == "" {
		c.Store.Backend = StoreBackendSQLite
	}
	if c.Store.Backend == StoreBackendSQLite && strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = filepath.Join(filepath.Dir(DefaultConfigPath()), "sessions.db")
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("MARKETING_AGENT_PROVIDER_API_KEY")); v != "" {
		c.Provider.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("MARKETING_AGENT_SEARCH_API_KEY")); v != "" {
		c.Search.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("MARKETING_AGENT_SMTP_PASSWORD")); v != "" {
		c.SMTP.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("MARKETING_AGENT_REDIS_PASSWORD")); v != "" {
		c.Store.RedisPassword = v
	}
}

// TurnTimeout returns the per-invocation deadline.
func (c *Config) TurnTimeout() time.Duration {
	return time.Duration(c.TurnTimeoutSeconds) * time.Second
}

// NewLogger builds the process logger from config.
func NewLogger(format, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
