package database

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	SequenceTable   = "quote_sequences"
	ConditionsTable = "condiciones_especificas"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ` + SequenceTable + ` (
		year INTEGER PRIMARY KEY,
		last_value INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ` + ConditionsTable + ` (
		id TEXT PRIMARY KEY,
		texto TEXT NOT NULL,
		categoria TEXT NOT NULL DEFAULT '',
		orden INTEGER NOT NULL DEFAULT 0,
		activo BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the tables the quote service reads and writes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
