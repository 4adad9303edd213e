package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coatline/boothlag/internal/engine"
)

// Config captures the settings required to boot the lag engine.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
	Cache   CacheConfig   `yaml:"cache"`
}

// ServerConfig controls listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	HTTPAddress     string        `yaml:"httpAddress"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LedgerConfig selects the ledger store.
type LedgerConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// EngineConfig tunes frontier learning. It is the only section applied on
// hot reload.
type EngineConfig struct {
	WindowDays    int     `yaml:"windowDays"`
	BufferMinutes float64 `yaml:"bufferMinutes"`
	MinSupport    int     `yaml:"minSupport"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CacheConfig controls the idempotency-key store.
type CacheConfig struct {
	Mode           string        `yaml:"mode"`
	Addr           string        `yaml:"addr"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	DialTimeout    time.Duration `yaml:"dialTimeout"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	MaxRetries     int           `yaml:"maxRetries"`
	IdempotencyTTL time.Duration `yaml:"idempotencyTTL"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("BOOTHLAG_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	cfg.Ledger.Driver = strings.ToLower(strings.TrimSpace(cfg.Ledger.Driver))
	cfg.Cache.Mode = strings.ToLower(strings.TrimSpace(cfg.Cache.Mode))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Ledger.Driver) {
	case "csv", "sqlite", "memory":
	default:
		return fmt.Errorf("ledger.driver %q must be csv, sqlite or memory", c.Ledger.Driver)
	}
	if !strings.EqualFold(c.Ledger.Driver, "memory") && c.Ledger.Path == "" {
		return errors.New("ledger.path is required")
	}
	switch strings.ToLower(c.Cache.Mode) {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("cache.mode %q must be none, memory or redis", c.Cache.Mode)
	}
	if strings.EqualFold(c.Cache.Mode, "redis") && c.Cache.Addr == "" {
		return errors.New("cache.addr is required in redis mode")
	}
	if c.Engine.WindowDays <= 0 {
		return fmt.Errorf("engine.windowDays must be positive, got %d", c.Engine.WindowDays)
	}
	if c.Engine.BufferMinutes < 0 {
		return fmt.Errorf("engine.bufferMinutes must not be negative, got %v", c.Engine.BufferMinutes)
	}
	if c.Engine.MinSupport < engine.MinHullSupport {
		return fmt.Errorf("engine.minSupport must be at least %d, got %d", engine.MinHullSupport, c.Engine.MinSupport)
	}
	return nil
}

// EngineParams converts the engine section into pipeline tuning.
func (c *Config) EngineParams() engine.Params {
	return engine.Params{
		Window:     time.Duration(c.Engine.WindowDays) * 24 * time.Hour,
		Buffer:     c.Engine.BufferMinutes / 60,
		MinSupport: c.Engine.MinSupport,
	}
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":50051",
			HTTPAddress:     ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Ledger: LedgerConfig{Driver: "csv", Path: "data/paint_records.csv"},
		Engine: EngineConfig{
			WindowDays:    40,
			BufferMinutes: 5,
			MinSupport:    engine.MinHullSupport,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Cache: CacheConfig{
			Mode:           "memory",
			IdempotencyTTL: 10 * time.Minute,
			DialTimeout:    2 * time.Second,
			ReadTimeout:    500 * time.Millisecond,
			WriteTimeout:   500 * time.Millisecond,
			MaxRetries:     2,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BOOTHLAG_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("BOOTHLAG_HTTP_ADDRESS"); v != "" {
		cfg.Server.HTTPAddress = v
	}
	if v := os.Getenv("BOOTHLAG_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("BOOTHLAG_LEDGER_DRIVER"); v != "" {
		cfg.Ledger.Driver = v
	}
	if v := os.Getenv("BOOTHLAG_LEDGER_PATH"); v != "" {
		cfg.Ledger.Path = v
	}
	if v := os.Getenv("BOOTHLAG_WINDOW_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Engine.WindowDays = days
		}
	}
	if v := os.Getenv("BOOTHLAG_BUFFER_MINUTES"); v != "" {
		if minutes, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.BufferMinutes = minutes
		}
	}
	if v := os.Getenv("BOOTHLAG_MIN_SUPPORT"); v != "" {
		if support, err := strconv.Atoi(v); err == nil {
			cfg.Engine.MinSupport = support
		}
	}
	if v := os.Getenv("BOOTHLAG_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BOOTHLAG_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("BOOTHLAG_CACHE_MODE"); v != "" {
		cfg.Cache.Mode = v
	}
	if v := os.Getenv("BOOTHLAG_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("BOOTHLAG_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("BOOTHLAG_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("BOOTHLAG_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("BOOTHLAG_CACHE_DIAL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.DialTimeout = d
		}
	}
	if v := os.Getenv("BOOTHLAG_CACHE_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.ReadTimeout = d
		}
	}
	if v := os.Getenv("BOOTHLAG_CACHE_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.WriteTimeout = d
		}
	}
	if v := os.Getenv("BOOTHLAG_CACHE_MAX_RETRIES"); v != "" {
		if retry, err := strconv.Atoi(v); err == nil {
			cfg.Cache.MaxRetries = retry
		}
	}
	if v := os.Getenv("BOOTHLAG_IDEMPOTENCY_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.IdempotencyTTL = d
		}
	}
}
