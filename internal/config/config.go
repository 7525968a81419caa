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

// Store drivers accepted by Config.StoreDriver.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSupabase = "supabase"
)

// Config is the resolved runtime configuration.
type Config struct {
	ServiceName string
	HTTPPort    int

	LogLevel  string
	LogFormat string

	StoreDriver  string
	HistoryLimit int
	RedisURL     string

	SupabaseURL       string
	SupabaseKey       string
	SupabaseJWTSecret string

	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// configFile mirrors configs/default.yaml.
type configFile struct {
	Service struct {
		Name     string `yaml:"name"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Store struct {
		Driver       string `yaml:"driver"`
		HistoryLimit int    `yaml:"history_limit"`
		RedisURL     string `yaml:"redis_url"`
	} `yaml:"store"`
	Supabase struct {
		URL       string `yaml:"url"`
		Key       string `yaml:"key"`
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"supabase"`
	WebSocket struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"websocket"`
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`
}

// Load resolves configuration in priority order: defaults -> YAML file ->
// environment. A .env file next to the process is loaded first but never
// overrides variables already set. A missing YAML file is not an error.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		ServiceName:     "morsechat",
		HTTPPort:        12345,
		LogLevel:        "info",
		LogFormat:       "json",
		StoreDriver:     DriverMemory,
		HistoryLimit:    100,
		AllowedOrigins:  []string{"*"},
		ShutdownTimeout: 10 * time.Second,
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := applyFile(&cfg, raw); err != nil {
				return Config{}, err
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.ServiceName = envOrDefault("SERVICE_NAME", cfg.ServiceName)
	cfg.LogLevel = strings.ToLower(envOrDefault("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(envOrDefault("LOG_FORMAT", cfg.LogFormat))
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(envOrDefault("STORE_DRIVER", cfg.StoreDriver)))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.SupabaseURL = envOrDefault("SUPABASE_URL", cfg.SupabaseURL)
	cfg.SupabaseKey = envOrDefault("SUPABASE_KEY", cfg.SupabaseKey)
	cfg.SupabaseJWTSecret = envOrDefault("SUPABASE_JWT_SECRET", cfg.SupabaseJWTSecret)
	cfg.AllowedOrigins = envCSV("ALLOWED_ORIGINS", cfg.AllowedOrigins)

	var err error
	if cfg.HTTPPort, err = envInt("HTTP_PORT", cfg.HTTPPort); err != nil {
		return Config{}, err
	}
	if cfg.HistoryLimit, err = envInt("HISTORY_LIMIT", cfg.HistoryLimit); err != nil {
		return Config{}, err
	}
	shutdownSeconds, err := envInt("SHUTDOWN_TIMEOUT_SECONDS", int(cfg.ShutdownTimeout.Seconds()))
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout = time.Duration(shutdownSeconds) * time.Second

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// AuthEnabled reports whether JWT verification is configured.
func (c Config) AuthEnabled() bool {
	return c.SupabaseJWTSecret != ""
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if f.Service.Name != "" {
		cfg.ServiceName = f.Service.Name
	}
	if f.Service.HTTPPort > 0 {
		cfg.HTTPPort = f.Service.HTTPPort
	}
	if f.Log.Level != "" {
		cfg.LogLevel = f.Log.Level
	}
	if f.Log.Format != "" {
		cfg.LogFormat = f.Log.Format
	}
	if f.Store.Driver != "" {
		cfg.StoreDriver = f.Store.Driver
	}
	if f.Store.HistoryLimit > 0 {
		cfg.HistoryLimit = f.Store.HistoryLimit
	}
	if f.Store.RedisURL != "" {
		cfg.RedisURL = f.Store.RedisURL
	}
	if f.Supabase.URL != "" {
		cfg.SupabaseURL = f.Supabase.URL
	}
	if f.Supabase.Key != "" {
		cfg.SupabaseKey = f.Supabase.Key
	}
	if f.Supabase.JWTSecret != "" {
		cfg.SupabaseJWTSecret = f.Supabase.JWTSecret
	}
	if len(f.WebSocket.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = f.WebSocket.AllowedOrigins
	}
	if f.ShutdownTimeoutSeconds > 0 {
		cfg.ShutdownTimeout = time.Duration(f.ShutdownTimeoutSeconds) * time.Second
	}
	return nil
}

func (c Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	switch c.StoreDriver {
	case DriverMemory:
	case DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("missing REDIS_URL for store driver %q", c.StoreDriver)
		}
	case DriverSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("missing SUPABASE_URL or SUPABASE_KEY for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	return nil
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return n, nil
}

func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
