// Package migrations embeds SQL migration scripts for the arcade SQLite store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
