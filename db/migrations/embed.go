// Package migrations embeds the medialedger schema migrations applied by
// golang-migrate at startup.
package migrations

import "embed"

// Files holds the *.up.sql / *.down.sql pairs.
//
//go:embed *.sql
var Files embed.FS
