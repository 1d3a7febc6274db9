package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate creates the local tables: the offline snapshot blob and settings.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshot (
			key TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	return execAll(ctx, db, stmts)
}

// MigrateRemote creates the multi-user tables. Every relation row carries
// its owning user and is unique on its composite key.
func MigrateRemote(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS characters (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			theme TEXT NOT NULL DEFAULT 'dark',
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trait_progress (
			user_id TEXT NOT NULL,
			profile_id TEXT NOT NULL,
			section TEXT NOT NULL,
			item TEXT NOT NULL,
			trait TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (profile_id, section, item, trait)
		);`,
		`CREATE TABLE IF NOT EXISTS item_notes (
			user_id TEXT NOT NULL,
			profile_id TEXT NOT NULL,
			section TEXT NOT NULL,
			item TEXT NOT NULL,
			note TEXT NOT NULL,
			PRIMARY KEY (profile_id, section, item)
		);`,
		`CREATE TABLE IF NOT EXISTS bank_status (
			user_id TEXT NOT NULL,
			profile_id TEXT NOT NULL,
			section TEXT NOT NULL,
			item TEXT NOT NULL,
			in_bank INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (profile_id, section, item)
		);`,
		`CREATE TABLE IF NOT EXISTS research_timers (
			user_id TEXT NOT NULL,
			profile_id TEXT NOT NULL,
			section TEXT NOT NULL,
			item TEXT NOT NULL,
			trait TEXT NOT NULL,
			end_time DATETIME NOT NULL,
			PRIMARY KEY (profile_id, section, item, trait)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_characters_user_id ON characters(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_trait_progress_user_id ON trait_progress(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_item_notes_user_id ON item_notes(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_bank_status_user_id ON bank_status(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_research_timers_user_id ON research_timers(user_id);`,
	}
	if err := execAll(ctx, db, stmts); err != nil {
		return err
	}

	// Early remote databases stored characters without a theme.
	alterStmts := []string{
		`ALTER TABLE characters ADD COLUMN theme TEXT NOT NULL DEFAULT 'dark';`,
	}
	for _, stmt := range alterStmts {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("migrate alter: %w", err)
		}
	}
	return nil
}

func execAll(ctx context.Context, db *sql.DB, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
