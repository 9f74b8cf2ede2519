// Package db provides SQLite persistence for recipe data.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

// SchemaVersion is stored in PRAGMA user_version once the tables exist.
const SchemaVersion = 1

//go:embed schema.sql
var schemaSQL string

// Schema returns the SQL schema for the database.
func Schema() string {
	return schemaSQL
}

// InitSchema creates all tables if they don't exist and stamps the schema
// version. A database stamped with a newer version is rejected.
func InitSchema(ctx context.Context, db *sql.DB) error {
	version, err := UserVersion(ctx, db)
	if err != nil {
		return err
	}
	if version > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, SchemaVersion)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	if version < SchemaVersion {
		// PRAGMA does not accept bound parameters
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
			return fmt.Errorf("setting schema version: %w", err)
		}
	}
	return nil
}

// UserVersion reads the schema version stamp.
func UserVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}
