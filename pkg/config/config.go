package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	FMP struct {
		APIKey        string        `yaml:"api_key"`
		BaseURL       string        `yaml:"base_url"`
		Timeout       time.Duration `yaml:"timeout"`
		ExtendedHours bool          `yaml:"extended_hours"`
		RateLimit     struct {
			Capacity     float64 `yaml:"capacity"`
			RefillPerSec float64 `yaml:"refill_per_sec"`
		} `yaml:"rate_limit"`
	} `yaml:"fmp"`
	Retrieval struct {
		Mode    string `yaml:"mode"`    // "chunked" or "direct"
		Workers int    `yaml:"workers"` // concurrent window fetches
	} `yaml:"retrieval"`
	Symbols struct {
		Resolve  bool          `yaml:"resolve"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
		Redis    struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"symbols"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables. The API key ends up injected into the client constructor;
// nothing reads the environment past this point.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FMP_API_KEY"); v != "" {
		c.FMP.APIKey = v
	}
	if v := os.Getenv("RETRIEVAL_MODE"); v != "" {
		c.Retrieval.Mode = v
	}
	if v := os.Getenv("RETRIEVAL_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Retrieval.Workers = n
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.FMP.BaseURL == "" {
		c.FMP.BaseURL = "https://financialmodelingprep.com/api/v3"
	}
	if c.FMP.Timeout == 0 {
		c.FMP.Timeout = 30 * time.Second
	}
	if c.Retrieval.Mode == "" {
		c.Retrieval.Mode = "chunked"
	}
	if c.Retrieval.Workers == 0 {
		c.Retrieval.Workers = 10
	}
	if c.Symbols.CacheTTL == 0 {
		c.Symbols.CacheTTL = 24 * time.Hour
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.FMP.APIKey == "" {
		return fmt.Errorf("fmp.api_key is required (config or FMP_API_KEY)")
	}
	if c.Retrieval.Mode != "chunked" && c.Retrieval.Mode != "direct" {
		return fmt.Errorf("retrieval.mode must be 'chunked' or 'direct', got '%s'", c.Retrieval.Mode)
	}
	if c.Retrieval.Workers < 1 {
		return fmt.Errorf("retrieval.workers must be positive")
	}
	return nil
}
