// Package migrations embeds the SQL migration files into the binary.
//
//	db.Migrate(ctx, migrations.FS)
package migrations

import "embed"

// FS holds every *.sql file in this directory at its root.
//
//go:embed *.sql
var FS embed.FS
