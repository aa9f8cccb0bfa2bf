// Package migrations embeds the PostgreSQL schema so binaries can migrate on start.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
