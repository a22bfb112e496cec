// Package config loads and persists the aide workspace configuration.
//
// The configuration lives at .aide/config.json in the workspace root. The
// schema is fixed: only the keys this core consumes exist, and dynamic
// access through Get/Set validates key names and value ranges instead of
// accepting arbitrary entries.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	aideerrors "aide/internal/errors"
)

// ConfigVersion is the current config schema version
const ConfigVersion = 1

// AideDir is the workspace state directory name
const AideDir = ".aide"

// Config represents the complete aide configuration
type Config struct {
	Version   int             `json:"version" mapstructure:"version"`
	Retrieval RetrievalConfig `json:"retrieval" mapstructure:"retrieval"`
	Embedding EmbeddingConfig `json:"embedding" mapstructure:"embedding"`
	Index     IndexConfig     `json:"index" mapstructure:"index"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// RetrievalConfig controls search and context selection
type RetrievalConfig struct {
	// MaxTokens is the default context token budget
	MaxTokens int `json:"maxTokens" mapstructure:"maxTokens"`
	// Alpha is the lexical/semantic fusion weight in [0,1];
	// 1 means lexical only, 0 means semantic only.
	Alpha float64 `json:"alpha" mapstructure:"alpha"`
	// CandidateFactor controls how many ranked candidates the context
	// selector requests per file it expects to include.
	CandidateFactor int `json:"candidateFactor" mapstructure:"candidateFactor"`
}

// EmbeddingConfig controls the hash embedding model
type EmbeddingConfig struct {
	Dimensions int `json:"dimensions" mapstructure:"dimensions"`
}

// IndexConfig controls file enumeration during index builds
type IndexConfig struct {
	Ignore           []string `json:"ignore" mapstructure:"ignore"`
	MaxFileSizeBytes int64    `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
	Workers          int      `json:"workers" mapstructure:"workers"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: ConfigVersion,
		Retrieval: RetrievalConfig{
			MaxTokens:       4000,
			Alpha:           0.5,
			CandidateFactor: 4,
		},
		Embedding: EmbeddingConfig{
			Dimensions: 256,
		},
		Index: IndexConfig{
			Ignore:           []string{".git", ".aide", "node_modules", "vendor", "dist", "build", "__pycache__"},
			MaxFileSizeBytes: 1000000,
			Workers:          4,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads configuration from <root>/.aide/config.json.
// A missing config file yields the defaults, not an error.
func Load(root string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, AideDir))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, aideerrors.New(aideerrors.ConfigInvalid, "reading config", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, aideerrors.New(aideerrors.ConfigInvalid, "parsing config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to <root>/.aide/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, AideDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s directory: %w", AideDir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks the configuration for out-of-range values
func (c *Config) Validate() error {
	if c.Retrieval.MaxTokens <= 0 {
		return aideerrors.New(aideerrors.ConfigInvalid,
			fmt.Sprintf("retrieval.max_tokens must be positive, got %d", c.Retrieval.MaxTokens), nil)
	}
	if c.Retrieval.Alpha < 0 || c.Retrieval.Alpha > 1 {
		return aideerrors.New(aideerrors.ConfigInvalid,
			fmt.Sprintf("retrieval.alpha must be in [0,1], got %g", c.Retrieval.Alpha), nil)
	}
	if c.Embedding.Dimensions <= 0 {
		return aideerrors.New(aideerrors.ConfigInvalid,
			fmt.Sprintf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions), nil)
	}
	if c.Index.Workers <= 0 {
		c.Index.Workers = 1
	}
	return nil
}

// Dotted keys accepted by Get and Set.
const (
	KeyMaxTokens = "retrieval.max_tokens"
	KeyAlpha     = "retrieval.alpha"
	KeyLogFormat = "logging.format"
	KeyLogLevel  = "logging.level"
)

// Get returns the value for a known dotted key, or def for unknown keys.
func (c *Config) Get(key string, def interface{}) interface{} {
	switch key {
	case KeyMaxTokens:
		return c.Retrieval.MaxTokens
	case KeyAlpha:
		return c.Retrieval.Alpha
	case KeyLogFormat:
		return c.Logging.Format
	case KeyLogLevel:
		return c.Logging.Level
	default:
		return def
	}
}

// Set updates the value for a known dotted key. Unknown keys and
// out-of-range values are rejected.
func (c *Config) Set(key, value string) error {
	switch key {
	case KeyMaxTokens:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return aideerrors.New(aideerrors.ConfigInvalid,
				fmt.Sprintf("%s requires a positive integer, got %q", key, value), nil)
		}
		c.Retrieval.MaxTokens = n
	case KeyAlpha:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 1 {
			return aideerrors.New(aideerrors.ConfigInvalid,
				fmt.Sprintf("%s requires a float in [0,1], got %q", key, value), nil)
		}
		c.Retrieval.Alpha = f
	case KeyLogFormat:
		if value != "json" && value != "human" {
			return aideerrors.New(aideerrors.ConfigInvalid,
				fmt.Sprintf("%s must be json or human, got %q", key, value), nil)
		}
		c.Logging.Format = value
	case KeyLogLevel:
		switch value {
		case "debug", "info", "warn", "error":
		default:
			return aideerrors.New(aideerrors.ConfigInvalid,
				fmt.Sprintf("%s must be debug, info, warn or error, got %q", key, value), nil)
		}
		c.Logging.Level = value
	default:
		return aideerrors.New(aideerrors.ConfigInvalid,
			fmt.Sprintf("unknown config key %q", key), nil)
	}
	return nil
}
