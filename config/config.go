// Package config provides configuration loading for learnmesh.
//
// Configuration is read from a TOML or YAML file (chosen by extension),
// then overlaid with environment variables. A .env file in the working
// directory is loaded first when present. Credentials are only ever read
// from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/learnmesh/logging"
	"github.com/hupe1980/learnmesh/retry"
)

// Environment variable names.
const (
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	EnvTavilyAPIKey = "TAVILY_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvRedisURL     = "LEARNMESH_REDIS_URL"
	EnvLogLevel     = "LEARNMESH_LOG_LEVEL"
	EnvArtifactPath = "LEARNMESH_ARTIFACT_PATH"
)

var (
	// ErrMissingCredential is returned when a required credential is unset.
	ErrMissingCredential = errors.New("missing required credential")
	// ErrUnsupportedFormat is returned for config files that are neither TOML nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// Config represents the learnmesh configuration.
type Config struct {
	Log       LogConfig       `toml:"log" yaml:"log"`
	Primary   PrimaryConfig   `toml:"primary" yaml:"primary"`
	Secondary SecondaryConfig `toml:"secondary" yaml:"secondary"`
	Fetcher   FetcherConfig   `toml:"fetcher" yaml:"fetcher"`
	Retry     RetryConfig     `toml:"retry" yaml:"retry"`
	Session   SessionConfig   `toml:"session" yaml:"session"`
	Artifacts ArtifactConfig  `toml:"artifacts" yaml:"artifacts"`
	Metrics   MetricsConfig   `toml:"metrics" yaml:"metrics"`

	// Credentials are populated from the environment only.
	Credentials Credentials `toml:"-" yaml:"-"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`   // debug, info, warn, error
	Format string `toml:"format" yaml:"format"` // json, text, console or zap
}

// PrimaryConfig selects the primary image backend.
type PrimaryConfig struct {
	Provider string `toml:"provider" yaml:"provider"` // imagen or openai
	Model    string `toml:"model" yaml:"model"`
}

// SecondaryConfig configures the fallback image backend.
type SecondaryConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	BaseURL string `toml:"base_url" yaml:"base_url"`
	Model   string `toml:"model" yaml:"model"`
}

// FetcherConfig bounds image acquisition.
type FetcherConfig struct {
	AttemptTimeout time.Duration `toml:"attempt_timeout" yaml:"attempt_timeout"`
	MaxConcurrent  int64         `toml:"max_concurrent" yaml:"max_concurrent"`
}

// RetryConfig mirrors retry.Policy.
type RetryConfig struct {
	Attempts     uint          `toml:"attempts" yaml:"attempts"`
	InitialDelay time.Duration `toml:"initial_delay" yaml:"initial_delay"`
	Multiplier   float64       `toml:"multiplier" yaml:"multiplier"`
	MaxDelay     time.Duration `toml:"max_delay" yaml:"max_delay"`
	StatusCodes  []int         `toml:"status_codes" yaml:"status_codes"`
}

// SessionConfig contains session storage settings.
type SessionConfig struct {
	Store     string        `toml:"store" yaml:"store"` // memory or redis
	RedisURL  string        `toml:"redis_url" yaml:"redis_url"`
	KeyPrefix string        `toml:"key_prefix" yaml:"key_prefix"`
	TTL       time.Duration `toml:"ttl" yaml:"ttl"`
}

// ArtifactConfig contains artifact storage settings.
type ArtifactConfig struct {
	Store string `toml:"store" yaml:"store"` // memory or sqlite
	Path  string `toml:"path" yaml:"path"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `toml:"addr" yaml:"addr"` // empty disables
}

// Credentials holds secrets read from the environment.
type Credentials struct {
	GoogleAPIKey string
	TavilyAPIKey string
	OpenAIAPIKey string
}

// New creates a new config with defaults.
func New() *Config {
	p := retry.DefaultPolicy()
	return &Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Primary: PrimaryConfig{
			Provider: "imagen",
			Model:    "imagen-4.0-generate-001",
		},
		Secondary: SecondaryConfig{
			Enabled: true,
			BaseURL: "https://image.pollinations.ai",
			Model:   "flux",
		},
		Fetcher: FetcherConfig{
			AttemptTimeout: 60 * time.Second,
			MaxConcurrent:  4,
		},
		Retry: RetryConfig{
			Attempts:     p.Attempts,
			InitialDelay: p.InitialDelay,
			Multiplier:   p.Multiplier,
			MaxDelay:     p.MaxDelay,
			StatusCodes:  p.StatusCodes,
		},
		Session:   SessionConfig{Store: "memory", KeyPrefix: "learnmesh:session:"},
		Artifacts: ArtifactConfig{Store: "memory", Path: filepath.Join(".learnmesh", "artifacts.db")},
	}
}

// LoadFile loads configuration from a TOML (.toml) or YAML (.yaml, .yml) file
// on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return cfg, nil
}

// Load reads .env (if present), the optional config file and the environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := New()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto c.
func (c *Config) ApplyEnv() {
	c.Credentials = Credentials{
		GoogleAPIKey: os.Getenv(EnvGoogleAPIKey),
		TavilyAPIKey: os.Getenv(EnvTavilyAPIKey),
		OpenAIAPIKey: os.Getenv(EnvOpenAIAPIKey),
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Session.Store = "redis"
		c.Session.RedisURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvArtifactPath); v != "" {
		c.Artifacts.Store = "sqlite"
		c.Artifacts.Path = v
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.Primary.Provider {
	case "imagen", "openai":
	default:
		errs = append(errs, fmt.Errorf("unknown primary provider %q", c.Primary.Provider))
	}
	switch c.Session.Store {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			errs = append(errs, errors.New("session.redis_url is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session store %q", c.Session.Store))
	}
	switch c.Artifacts.Store {
	case "memory":
	case "sqlite":
		if c.Artifacts.Path == "" {
			errs = append(errs, errors.New("artifacts.path is required for the sqlite store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown artifact store %q", c.Artifacts.Store))
	}
	if c.Fetcher.AttemptTimeout <= 0 {
		errs = append(errs, errors.New("fetcher.attempt_timeout must be positive"))
	}
	if c.Fetcher.MaxConcurrent < 1 {
		errs = append(errs, errors.New("fetcher.max_concurrent must be positive"))
	}
	return errors.Join(errs...)
}

// RequireCredentials reports every required credential that is unset. The
// primary model and web search credentials are always required; the OpenAI
// key only when it is the primary provider.
func (c *Config) RequireCredentials() error {
	var errs []error
	if c.Credentials.GoogleAPIKey == "" {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingCredential, EnvGoogleAPIKey))
	}
	if c.Credentials.TavilyAPIKey == "" {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingCredential, EnvTavilyAPIKey))
	}
	if c.Primary.Provider == "openai" && c.Credentials.OpenAIAPIKey == "" {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingCredential, EnvOpenAIAPIKey))
	}
	return errors.Join(errs...)
}

// RetryPolicy returns the configured retry policy.
func (c *Config) RetryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.Attempts = c.Retry.Attempts
	p.InitialDelay = c.Retry.InitialDelay
	p.Multiplier = c.Retry.Multiplier
	p.MaxDelay = c.Retry.MaxDelay
	if len(c.Retry.StatusCodes) > 0 {
		p.StatusCodes = c.Retry.StatusCodes
	}
	return p
}

// Logger builds the configured logger.
func (c *Config) Logger() (logging.Logger, error) {
	level := logging.ParseLevel(c.Log.Level)
	if c.Log.Format == "zap" {
		z, err := logging.NewZapProduction(level)
		if err != nil {
			return nil, fmt.Errorf("failed to create zap logger: %w", err)
		}
		return z, nil
	}
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = level
	if c.Log.Format != "" {
		cfg.Format = c.Log.Format
	}
	cfg.Output = os.Stderr
	return logging.NewLogger(cfg), nil
}
