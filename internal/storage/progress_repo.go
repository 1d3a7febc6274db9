package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// ProgressRepo stores completed traits. Incomplete traits have no row.
type ProgressRepo struct {
	db *sql.DB
}

func NewProgressRepo(db *sql.DB) *ProgressRepo {
	return &ProgressRepo{db: db}
}

func (r *ProgressRepo) ListByUser(ctx context.Context, userID string) ([]TraitProgress, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT profile_id, section, item, trait, completed
		FROM trait_progress
		WHERE user_id = ?
		ORDER BY profile_id, section, item, trait
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("progress list: %w", err)
	}
	defer rows.Close()

	var out []TraitProgress
	for rows.Next() {
		var p TraitProgress
		var completed int
		if err := rows.Scan(&p.ProfileID, &p.Section, &p.Item, &p.Trait, &completed); err != nil {
			return nil, fmt.Errorf("progress scan: %w", err)
		}
		p.Completed = completed != 0
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("progress rows: %w", err)
	}
	return out, nil
}

func (r *ProgressRepo) Upsert(ctx context.Context, userID string, p TraitProgress) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO trait_progress (user_id, profile_id, section, item, trait, completed)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM characters WHERE id = ? AND user_id = ?)
		ON CONFLICT(profile_id, section, item, trait) DO UPDATE SET
			completed = excluded.completed
		WHERE trait_progress.user_id = excluded.user_id
	`, userID, p.ProfileID, p.Section, p.Item, p.Trait, boolToInt(p.Completed), p.ProfileID, userID)
	return ownedWrite("progress upsert", res, err)
}

func (r *ProgressRepo) Delete(ctx context.Context, userID string, k TraitKey) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM trait_progress
		WHERE user_id = ? AND profile_id = ? AND section = ? AND item = ? AND trait = ?
	`, userID, k.ProfileID, k.Section, k.Item, k.Trait)
	if err != nil {
		return fmt.Errorf("progress delete: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
