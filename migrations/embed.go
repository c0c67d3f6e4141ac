// Package migrations embeds the SQL schema migrations so the migrator and
// the integration-test harness run the same schema without a migrations
// directory on disk.
package migrations

import "embed"

// Files holds every migration pair, named NNN_name.(up|down).sql.
//
//go:embed *.sql
var Files embed.FS
