package migrations

import "embed"

// PostgresFS holds the wallet transaction schema migrations.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the resolved price point schema migrations.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
