package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/iwvelando/commerce-analytics/internal/config"
	"github.com/iwvelando/commerce-analytics/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address     string               `yaml:"address"`
	MaxBodySize string               `yaml:"maxBodySize"`
	RateLimit   float64              `yaml:"rateLimit"`
	RateBurst   int                  `yaml:"rateBurst"`
	Logging     config.LoggingConfig `yaml:"logging"`
	bodyBytes   int64
}

// DefaultConfig returns the server defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:     constants.DefaultServerAddress,
		MaxBodySize: humanize.IBytes(uint64(constants.DefaultMaxBodySizeBytes)),
		RateLimit:   constants.DefaultRateLimit,
		RateBurst:   constants.DefaultRateBurst,
		bodyBytes:   constants.DefaultMaxBodySizeBytes,
	}
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BodySizeBytes returns the maximum request body size in bytes.
func (c *Config) BodySizeBytes() int64 {
	if c.bodyBytes <= 0 {
		return constants.DefaultMaxBodySizeBytes
	}
	return c.bodyBytes
}

// SetBodySizeBytes overrides the configured body size.
func (c *Config) SetBodySizeBytes(size int64) {
	if size > 0 {
		c.bodyBytes = size
		c.MaxBodySize = humanize.IBytes(uint64(size))
	}
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.RateBurst <= 0 {
		c.RateBurst = constants.DefaultRateBurst
	}

	size := strings.TrimSpace(c.MaxBodySize)
	if size == "" {
		c.bodyBytes = constants.DefaultMaxBodySizeBytes
		c.MaxBodySize = humanize.IBytes(uint64(constants.DefaultMaxBodySizeBytes))
		return nil
	}

	bytes, err := humanize.ParseBytes(size)
	if err != nil {
		return fmt.Errorf("invalid maxBodySize %q: %w", c.MaxBodySize, err)
	}
	if bytes == 0 {
		bytes = uint64(constants.DefaultMaxBodySizeBytes)
	}
	c.bodyBytes = int64(bytes)
	return nil
}
