package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DefaultDBPath returns the default Traitline DB location.
func DefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".traitline.db"), nil
}

// ResolveDBPath returns override when set, otherwise the default path.
// A leading "~/" is expanded.
func ResolveDBPath(override string) (string, error) {
	override = strings.TrimSpace(override)
	if override == "" {
		return DefaultDBPath()
	}
	if strings.HasPrefix(override, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		override = filepath.Join(homeDir, override[2:])
	}
	return override, nil
}

// OpenSQLite opens (and creates if missing) the SQLite database at the provided path.
// Writers are serialized on one connection; concurrent remote writes queue behind it.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	return db, nil
}

// Open opens the local database and applies the local schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenRemote opens a SQLite file acting as the remote store and applies the
// remote schema.
func OpenRemote(ctx context.Context, path string) (*sql.DB, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := MigrateRemote(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
