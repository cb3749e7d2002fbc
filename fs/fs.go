// Package appfs embeds the files shipped with the binaries.
package appfs

import "embed"

//go:embed migrations/*.sql
var FS embed.FS

// MigrationsDir is the directory of the SQL migrations inside FS.
const MigrationsDir = "migrations"
