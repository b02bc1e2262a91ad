package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, basePath string) error {
	schemaPath := filepath.Join(basePath, "db", "schema.sql")
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	_, err = pool.Exec(ctx, string(content))
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS notified_roles (
	identity_key TEXT PRIMARY KEY,
	company TEXT NOT NULL,
	title TEXT NOT NULL,
	url TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT 1,
	notified_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// OpenSQLite opens (creating if needed) the SQLite state database and
// ensures its schema.
func OpenSQLite(path string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return sqlDB, nil
}
