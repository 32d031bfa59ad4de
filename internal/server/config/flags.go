package config

import (
	"flag"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/sparkbytes/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-d string   PostgreSQL DSN; empty keeps data in memory
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-o string   allowed CORS origins, comma separated
//	-u string   seed user name
//	-p string   seed user password
//	-v string   log level
//	-x          trust X-Forwarded-For / X-Real-IP (behind a reverse proxy)
//
// Duration flags are accepted as integers in minutes.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-o", "-u", "-p", "-v", "-x"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed CORS origins")
	fs.StringVar(&config.SeedUser, "u", config.SeedUser, "seed user")
	fs.StringVar(&config.SeedPassword, "p", config.SeedPassword, "seed user password")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.BoolVar(&config.TrustProxyHeaders, "x", config.TrustProxyHeaders, "trust proxy address headers")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.AllowedOrigins = flagx.SplitList(*origins)
	return nil
}
