// Package config loads runtime configuration for the SparkBytes client.
//
// Sources, in increasing precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. An optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// Example JSON:
//
//	{
//	  "server_url": "http://localhost:8000",
//	  "online_check_interval": "3s",
//	  "cache_dsn": "sparkbytes.db",
//	  "list_limit": 100,
//	  "request_timeout": "10s",
//	  "log_level": "info"
//	}
package config
