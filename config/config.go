// Package config loads taskrag settings from an optional file and
// TASKRAG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/taskrag/ai"
	"github.com/poiesic/taskrag/index"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TASKRAG"

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Storage configuration
	Storage StorageConfig `mapstructure:"storage"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Search configuration
	Search SearchConfig `mapstructure:"search"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Import configuration
	Import ImportConfig `mapstructure:"import"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// StorageConfig locates the task store and the lexical index.
type StorageConfig struct {
	Path        string `mapstructure:"path"`
	LexicalPath string `mapstructure:"lexical_path"` // defaults to <path>/lexical.db
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Host         string        `mapstructure:"host"`
	Model        string        `mapstructure:"model"`
	Dimension    int           `mapstructure:"dimension"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// SearchConfig tunes hybrid search.
type SearchConfig struct {
	BranchTimeout time.Duration `mapstructure:"branch_timeout"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// ImportConfig tunes task import.
type ImportConfig struct {
	Workers int `mapstructure:"workers"`
}

// Load reads configuration from path, when non-empty, and from the
// environment. TASKRAG_EMBEDDING_HOST sets embedding.host, and so on.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	config := &Config{}
	// Defaults always decode.
	_ = v.Unmarshal(config)
	return config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	aiDefaults := ai.DefaultConfig()
	breaker := index.DefaultBreakerConfig()

	v.SetDefault("log.level", "info")

	v.SetDefault("storage.path", "./taskrag_db")
	v.SetDefault("storage.lexical_path", "")

	v.SetDefault("embedding.host", aiDefaults.EmbeddingHost)
	v.SetDefault("embedding.model", aiDefaults.EmbeddingModel)
	v.SetDefault("embedding.dimension", aiDefaults.Dimension)
	v.SetDefault("embedding.probe_timeout", aiDefaults.ProbeTimeout)

	v.SetDefault("search.branch_timeout", 2*time.Second)

	v.SetDefault("circuit_breaker.enabled", true)
	v.SetDefault("circuit_breaker.max_requests", breaker.MaxRequests)
	v.SetDefault("circuit_breaker.interval", breaker.Interval)
	v.SetDefault("circuit_breaker.timeout", breaker.Timeout)
	v.SetDefault("circuit_breaker.min_requests", breaker.MinRequests)
	v.SetDefault("circuit_breaker.failure_ratio", breaker.FailureRatio)

	v.SetDefault("import.workers", 4)
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("config: storage.path is required")
	}
	if c.Embedding.Dimension <= 0 {
		return errors.New("config: embedding.dimension must be positive")
	}
	if c.Search.BranchTimeout <= 0 {
		return errors.New("config: search.branch_timeout must be positive")
	}
	if c.CircuitBreaker.FailureRatio < 0 || c.CircuitBreaker.FailureRatio > 1 {
		return errors.New("config: circuit_breaker.failure_ratio must be within 0..1")
	}
	return nil
}

// AIConfig converts the embedding section into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithDimension(c.Embedding.Dimension),
		ai.WithProbeTimeout(c.Embedding.ProbeTimeout),
	)
}

// BreakerConfig converts the circuit breaker section. The second result is
// false when breakers are disabled.
func (c *Config) BreakerConfig() (index.BreakerConfig, bool) {
	cb := c.CircuitBreaker
	return index.BreakerConfig{
		MaxRequests:  cb.MaxRequests,
		Interval:     cb.Interval,
		Timeout:      cb.Timeout,
		MinRequests:  cb.MinRequests,
		FailureRatio: cb.FailureRatio,
	}, cb.Enabled
}
