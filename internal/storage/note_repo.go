package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type NoteRepo struct {
	db *sql.DB
}

func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

func (r *NoteRepo) ListByUser(ctx context.Context, userID string) ([]ItemNote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT profile_id, section, item, note
		FROM item_notes
		WHERE user_id = ?
		ORDER BY profile_id, section, item
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("note list: %w", err)
	}
	defer rows.Close()

	var out []ItemNote
	for rows.Next() {
		var n ItemNote
		if err := rows.Scan(&n.ProfileID, &n.Section, &n.Item, &n.Note); err != nil {
			return nil, fmt.Errorf("note scan: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("note rows: %w", err)
	}
	return out, nil
}

func (r *NoteRepo) Upsert(ctx context.Context, userID string, n ItemNote) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO item_notes (user_id, profile_id, section, item, note)
		SELECT ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM characters WHERE id = ? AND user_id = ?)
		ON CONFLICT(profile_id, section, item) DO UPDATE SET
			note = excluded.note
		WHERE item_notes.user_id = excluded.user_id
	`, userID, n.ProfileID, n.Section, n.Item, n.Note, n.ProfileID, userID)
	return ownedWrite("note upsert", res, err)
}

func (r *NoteRepo) Delete(ctx context.Context, userID string, k ItemKey) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM item_notes
		WHERE user_id = ? AND profile_id = ? AND section = ? AND item = ?
	`, userID, k.ProfileID, k.Section, k.Item)
	if err != nil {
		return fmt.Errorf("note delete: %w", err)
	}
	return nil
}
