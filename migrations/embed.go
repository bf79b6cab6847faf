// Package migrations holds the goose SQL migrations for the trips, days,
// plans and collaborators tables.
package migrations

import "embed"

// FS is handed to goose.NewProvider by db.Migrate and the integration tests.
//
//go:embed *.sql
var FS embed.FS
