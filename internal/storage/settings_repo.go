package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	SettingActiveProfile = "active_profile"
	SettingUserID        = "user_id"
)

// SettingsRepo is a small key/value table for device-local preferences.
type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get returns "" for missing keys.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("settings get: %w", err)
	}
	return v, nil
}

// Set stores value, or deletes the key when value is empty.
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	if value == "" {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
			return fmt.Errorf("settings delete: %w", err)
		}
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("settings set: %w", err)
	}
	return nil
}
