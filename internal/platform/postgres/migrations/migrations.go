// Package migrations embeds the goose SQL migrations so the server binary
// can bring a database up to date without shipping files alongside it.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
