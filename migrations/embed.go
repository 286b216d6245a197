// Package migrations embeds the SQL schema migrations of every storage backend.
package migrations

import "embed"

// FS holds one directory of goose migrations per backend.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
