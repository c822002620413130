// Package migrations embeds the SQL schema and the storage-level
// authorization policy, applied at startup by the db migration runner.
package migrations

import "embed"

// Files embeds the ordered migration scripts.
//
//go:embed *.sql
var Files embed.FS
