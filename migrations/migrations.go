// Package migrations embeds the SQL schema migrations so the server binary
// can apply them at startup without shipping the files separately.
package migrations

import "embed"

// FS holds the goose migration files.
//
//go:embed *.sql
var FS embed.FS
