package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the SparkBytes terminal client.
type Config struct {
	ServerURL           string
	OnlineCheckInterval time.Duration
	CacheDSN            string
	ListLimit           int
	RequestTimeout      time.Duration
	LogLevel            string
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000"
	c.OnlineCheckInterval = 3 * time.Second
	c.CacheDSN = "sparkbytes.db"
	c.ListLimit = 100
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// command-line flags. Later sources win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server url is empty")
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	}
	if c.ListLimit < 1 || c.ListLimit > 100 {
		return fmt.Errorf("list limit must be within 1..100, got %d", c.ListLimit)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
