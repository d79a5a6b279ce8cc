// Package migrations embeds the postgres schema migrations for the server
// database, applied with goose at startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
