// Package migrations embeds the SQL schema migrations applied at server
// startup via goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
