package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sparkbytes/internal/flagx"
	"github.com/dmitrijs2005/sparkbytes/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. Durations use timex.Duration, so both "30m" and integer nanoseconds
// are accepted. Zero values leave the current setting alone.
type JsonConfig struct {
	EndpointAddr                string         `json:"endpoint_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	AllowedOrigins              []string       `json:"allowed_origins"`
	SeedUser                    string         `json:"seed_user"`
	SeedPassword                string         `json:"seed_password"`
	LoginRate                   float64        `json:"login_rate"`
	LoginBurst                  int            `json:"login_burst"`
	TrustProxyHeaders           bool           `json:"trust_proxy_headers"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson loads the file named by -c or -config, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.SeedUser != "" {
		config.SeedUser = c.SeedUser
	}
	if c.SeedPassword != "" {
		config.SeedPassword = c.SeedPassword
	}
	if c.LoginRate != 0 {
		config.LoginRate = c.LoginRate
	}
	if c.LoginBurst != 0 {
		config.LoginBurst = c.LoginBurst
	}
	if c.TrustProxyHeaders {
		config.TrustProxyHeaders = true
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	return nil
}
