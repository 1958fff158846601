// Package migrations embeds the goose SQL migrations, one directory per dialect.
package migrations

import "embed"

//go:embed postgres/*.sql mysql/*.sql sqlite/*.sql
var FS embed.FS
