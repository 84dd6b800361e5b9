// Package sqlite provides the SQLite storage dialect on the pure Go
// modernc.org/sqlite driver. It is the default engine and the one tests run on.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/giftregistry/internal/storage"
)

// Ensure Dialect implements storage.Dialect
var _ storage.Dialect = Dialect{}

// Dialect implements storage.Dialect for SQLite.
type Dialect struct{}

func (Dialect) Name() string { return "sqlite" }

// Rebind is the identity: SQLite accepts ? placeholders natively.
func (Dialect) Rebind(query string) string { return query }

// IsUniqueViolation matches the extended result codes SQLite reports for
// UNIQUE and PRIMARY KEY constraint failures.
func (Dialect) IsUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

// Open creates a pool over the SQLite database at dbPath.
// It creates the parent directories and runs migrations automatically.
func Open(ctx context.Context, dbPath string, opts storage.PoolOptions) (*storage.Pool, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return storage.NewPool(db, Dialect{}, opts), nil
}

// PathFromURL extracts the file path from a sqlite:// or file: URL.
// Anything else is returned unchanged and treated as a path.
func PathFromURL(raw string) string {
	for _, prefix := range []string{"sqlite://", "sqlite:", "file:"} {
		if strings.HasPrefix(raw, prefix) {
			path := strings.TrimPrefix(raw, prefix)
			if i := strings.IndexByte(path, '?'); i >= 0 {
				path = path[:i]
			}
			return path
		}
	}
	return raw
}

// dsn applies the per-connection pragmas. Pragmas set with db.Exec would
// only reach one pooled connection.
func dsn(dbPath string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_txlock", "immediate")
	return "file:" + dbPath + "?" + q.Encode()
}
