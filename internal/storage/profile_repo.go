package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// ProfileRepo stores character profiles in the characters table.
type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) ListByUser(ctx context.Context, userID string) ([]Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, theme, created_at
		FROM characters
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("profile list: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		var theme string
		if err := rows.Scan(&p.ID, &p.Name, &theme, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("profile scan: %w", err)
		}
		p.Theme = Theme(theme)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profile rows: %w", err)
	}
	return out, nil
}

func (r *ProfileRepo) Upsert(ctx context.Context, userID string, p Profile) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO characters (id, user_id, name, theme, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, theme = excluded.theme
		WHERE characters.user_id = excluded.user_id
	`, p.ID, userID, p.Name, string(p.Theme), p.CreatedAt.UTC())
	return ownedWrite("profile upsert", res, err)
}

// Delete removes the profile and all of its relation rows in one transaction.
func (r *ProfileRepo) Delete(ctx context.Context, userID, profileID string) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := deleteProfileRows(ctx, tx, userID, profileID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM characters WHERE user_id = ? AND id = ?`, userID, profileID); err != nil {
			return fmt.Errorf("profile delete: %w", err)
		}
		return nil
	})
}

// ResetProgress removes the relation rows of a profile but keeps the profile.
func (r *ProfileRepo) ResetProgress(ctx context.Context, userID, profileID string) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return deleteProfileRows(ctx, tx, userID, profileID)
	})
}
