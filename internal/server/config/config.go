// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the SparkBytes backend.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty means in-memory storage.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration: session token lifetime.
//   - AllowedOrigins: browser origins allowed to send credentialed requests.
//   - SeedUser / SeedPassword: account created at startup when missing.
//   - LoginRate / LoginBurst: per-client login attempts per second and burst.
//   - TrustProxyHeaders: take the client address from X-Forwarded-For /
//     X-Real-IP. Enable only behind a reverse proxy that sets them.
type Config struct {
	EndpointAddr                string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	AllowedOrigins              []string
	SeedUser                    string
	SeedPassword                string
	LoginRate                   float64
	LoginBurst                  int
	TrustProxyHeaders           bool
	ShutdownTimeout             time.Duration
	LogLevel                    string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8000"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.AllowedOrigins = []string{"http://localhost:3000"}
	c.SeedUser = "student"
	c.SeedPassword = "student"
	c.LoginRate = 1
	c.LoginBurst = 5
	c.TrustProxyHeaders = false
	c.ShutdownTimeout = 5 * time.Second
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
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
	var errs []error
	if c.EndpointAddr == "" {
		errs = append(errs, errors.New("endpoint address is empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("access token validity must be positive, got %s", c.AccessTokenValidityDuration))
	}
	if c.LoginRate <= 0 || c.LoginBurst < 1 {
		errs = append(errs, fmt.Errorf("login rate limit must be positive, got %v/%d", c.LoginRate, c.LoginBurst))
	}
	return errors.Join(errs...)
}
