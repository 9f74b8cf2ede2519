package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Keys the recipe importer records in sync_metadata.
const (
	MetaRecipesLastSync = "recipes_last_sync"
	MetaRecipesCount    = "recipes_count"
)

// DB is the recipe database: stored recipes, the item names they mention and
// bookkeeping about the last import.
type DB struct {
	*sql.DB
}

// recipeDSN builds the modernc connection string for path. Foreign keys are
// on so deleting a recipe removes its component rows.
func recipeDSN(path string) string {
	pragmas := []string{"_pragma=foreign_keys(1)"}
	if path != MemoryPath {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	return path + "?" + strings.Join(pragmas, "&")
}

// Open opens the recipe database at path, or a throwaway one for MemoryPath.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", recipeDSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening recipe database %s: %w", path, err)
	}

	// Each connection to :memory: would see its own empty database
	if path == MemoryPath {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("pinging recipe database %s: %w", path, err)
	}

	return &DB{DB: sqlDB}, nil
}

// OpenAndInit opens the recipe database and brings its schema up to date.
func OpenAndInit(ctx context.Context, path string) (*DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}

	if err := InitSchema(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// InTransaction runs fn in one transaction, so an import either lands whole
// or not at all. The transaction is rolled back when fn fails.
func (db *DB) InTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetSyncMetadata returns the import bookkeeping value for key, or "" when
// no import has recorded it.
func (db *DB) GetSyncMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM sync_metadata WHERE key = ?`, key,
	).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("reading sync metadata %s: %w", key, err)
	}
	return value, nil
}

// SetSyncMetadata records an import bookkeeping value, replacing any earlier one.
func (db *DB) SetSyncMetadata(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_metadata (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing sync metadata %s: %w", key, err)
	}
	return nil
}
