// Package migrations embeds the SQL schema applied at startup.
package migrations

import "embed"

// FS holds the numbered golang-migrate files.
//
//go:embed *.sql
var FS embed.FS
