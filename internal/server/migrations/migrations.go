// Package migrations embeds the backend's Postgres schema for goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
