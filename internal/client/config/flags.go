package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/sparkbytes/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-a string   backend base URL
//	-i int      online check interval (seconds)
//	-d string   offline snapshot SQLite file
//	-l int      events fetched per list (1..100)
//	-t int      request timeout (seconds)
//	-v string   log level (debug, info, warn, error)
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-d", "-l", "-t", "-v"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "backend base URL")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.CacheDSN, "d", cfg.CacheDSN, "offline snapshot database file")
	fs.IntVar(&cfg.ListLimit, "l", cfg.ListLimit, "events fetched per list")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
