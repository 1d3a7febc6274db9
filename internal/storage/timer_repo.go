package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type TimerRepo struct {
	db *sql.DB
}

func NewTimerRepo(db *sql.DB) *TimerRepo {
	return &TimerRepo{db: db}
}

func (r *TimerRepo) ListByUser(ctx context.Context, userID string) ([]ResearchTimer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT profile_id, section, item, trait, end_time
		FROM research_timers
		WHERE user_id = ?
		ORDER BY end_time ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("timer list: %w", err)
	}
	defer rows.Close()

	var out []ResearchTimer
	for rows.Next() {
		var t ResearchTimer
		if err := rows.Scan(&t.ProfileID, &t.Section, &t.Item, &t.Trait, &t.EndTime); err != nil {
			return nil, fmt.Errorf("timer scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("timer rows: %w", err)
	}
	return out, nil
}

func (r *TimerRepo) Upsert(ctx context.Context, userID string, t ResearchTimer) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO research_timers (user_id, profile_id, section, item, trait, end_time)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM characters WHERE id = ? AND user_id = ?)
		ON CONFLICT(profile_id, section, item, trait) DO UPDATE SET
			end_time = excluded.end_time
		WHERE research_timers.user_id = excluded.user_id
	`, userID, t.ProfileID, t.Section, t.Item, t.Trait, t.EndTime.UTC(), t.ProfileID, userID)
	return ownedWrite("timer upsert", res, err)
}

func (r *TimerRepo) Delete(ctx context.Context, userID string, k TraitKey) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM research_timers
		WHERE user_id = ? AND profile_id = ? AND section = ? AND item = ? AND trait = ?
	`, userID, k.ProfileID, k.Section, k.Item, k.Trait)
	if err != nil {
		return fmt.Errorf("timer delete: %w", err)
	}
	return nil
}
