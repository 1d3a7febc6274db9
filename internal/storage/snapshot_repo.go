package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const appStateKey = "app_state"

// SnapshotRepo persists the offline AppState as a single JSON blob.
type SnapshotRepo struct {
	db *sql.DB
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Load returns nil when no snapshot was ever saved.
func (r *SnapshotRepo) Load(ctx context.Context) (*AppState, error) {
	row := r.db.QueryRowContext(ctx, `SELECT data FROM snapshot WHERE key = ?`, appStateKey)
	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot get: %w", err)
	}
	var st AppState
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &st, nil
}

func (r *SnapshotRepo) Save(ctx context.Context, st *AppState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshot (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, appStateKey, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("snapshot save: %w", err)
	}
	return nil
}

func (r *SnapshotRepo) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM snapshot WHERE key = ?`, appStateKey); err != nil {
		return fmt.Errorf("snapshot delete: %w", err)
	}
	return nil
}
