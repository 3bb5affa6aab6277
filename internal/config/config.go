package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/adilg123/lzw-compression-tool/internal/compression/algorithms/lzw"
	"github.com/adilg123/lzw-compression-tool/internal/derrors"
)

// Config holds the application configuration
type Config struct {
	Port               string `yaml:"port"`
	Environment        string `yaml:"environment"`
	MaxFileSize        int64  `yaml:"max_file_size"`   // in bytes
	MaxOutputSize      int64  `yaml:"max_output_size"` // in bytes, caps decompressed responses
	DictionaryCapacity int    `yaml:"dictionary_capacity"`
	LogLevel           string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Port:               "8080",
		Environment:        "development",
		MaxFileSize:        50 * 1024 * 1024,  // 50MB default
		MaxOutputSize:      512 * 1024 * 1024, // 512MB default
		DictionaryCapacity: lzw.DefaultDictionaryCapacity,
		LogLevel:           "info",
	}
}

// Load loads configuration from environment variables with defaults.  If
// LZW_CONFIG names a YAML file, its values replace the defaults before the
// environment is applied.
func Load() (_ *Config, err error) {
	defer derrors.Wrap(&err, "config.Load")

	cfg := Default()
	if path := os.Getenv("LZW_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("GO_ENV", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	if cfg.MaxFileSize, err = getEnvInt("MAX_FILE_SIZE", cfg.MaxFileSize); err != nil {
		return nil, err
	}
	if cfg.MaxOutputSize, err = getEnvInt("MAX_OUTPUT_SIZE", cfg.MaxOutputSize); err != nil {
		return nil, err
	}
	capacity, err := getEnvInt("LZW_DICTIONARY_CAPACITY", int64(cfg.DictionaryCapacity))
	if err != nil {
		return nil, err
	}
	cfg.DictionaryCapacity = int(capacity)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Validate reports settings the server cannot run with.
func (c *Config) Validate() error {
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size %d must be positive: %w", c.MaxFileSize, derrors.InvalidArgument)
	}
	if c.MaxOutputSize <= 0 {
		return fmt.Errorf("max output size %d must be positive: %w", c.MaxOutputSize, derrors.InvalidArgument)
	}
	if c.DictionaryCapacity < lzw.MinDictionaryCapacity || c.DictionaryCapacity > lzw.MaxDictionaryCapacity {
		return fmt.Errorf("dictionary capacity %d outside [%d, %d]: %w",
			c.DictionaryCapacity, lzw.MinDictionaryCapacity, lzw.MaxDictionaryCapacity, derrors.InvalidArgument)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, value, derrors.InvalidArgument)
	}
	return n, nil
}
