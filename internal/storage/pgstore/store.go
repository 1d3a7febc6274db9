// Package pgstore implements the remote multi-user store on Postgres.
package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"traitline/internal/storage"
)

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres, pings it and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := New(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
	}
	return nil
}

func (s *Store) ListProfiles(ctx context.Context, userID string) ([]storage.Profile, error) {
	op := "pgstore ListProfiles"

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, theme, created_at
		FROM characters
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []storage.Profile{}
	for rows.Next() {
		var p storage.Profile
		var theme string
		if err := rows.Scan(&p.ID, &p.Name, &theme, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		p.Theme = storage.Theme(theme)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", op, err)
	}
	return out, nil
}

func (s *Store) UpsertProfile(ctx context.Context, userID string, p storage.Profile) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO characters (id, user_id, name, theme, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, theme = EXCLUDED.theme
		WHERE characters.user_id = EXCLUDED.user_id
	`, p.ID, userID, p.Name, string(p.Theme), p.CreatedAt.UTC())
	return ownedWrite("pgstore UpsertProfile", tag, err)
}

// ownedWrite maps an upsert that touched no row to storage.ErrNotOwned.
func ownedWrite(op string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotOwned)
	}
	return nil
}

// DeleteProfile removes a character and its relation rows in one transaction.
func (s *Store) DeleteProfile(ctx context.Context, userID, profileID string) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := deleteProfileRows(ctx, tx, userID, profileID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM characters WHERE user_id = $1 AND id = $2`, userID, profileID)
		return err
	})
	if err != nil {
		return fmt.Errorf("pgstore DeleteProfile: %w", err)
	}
	return nil
}

func (s *Store) ResetProfile(ctx context.Context, userID, profileID string) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return deleteProfileRows(ctx, tx, userID, profileID)
	})
	if err != nil {
		return fmt.Errorf("pgstore ResetProfile: %w", err)
	}
	return nil
}

func deleteProfileRows(ctx context.Context, tx pgx.Tx, userID, profileID string) error {
	for _, table := range []string{"trait_progress", "item_notes", "bank_status", "research_timers"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1 AND profile_id = $2`, userID, profileID); err != nil {
			return fmt.Errorf("%s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) ListProgress(ctx context.Context, userID string) ([]storage.TraitProgress, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT profile_id, section, item, trait, completed
		FROM trait_progress
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("pgstore ListProgress: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.TraitProgress, error) {
		var p storage.TraitProgress
		err := row.Scan(&p.ProfileID, &p.Section, &p.Item, &p.Trait, &p.Completed)
		return p, err
	})
}

func (s *Store) UpsertProgress(ctx context.Context, userID string, p storage.TraitProgress) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO trait_progress (user_id, profile_id, section, item, trait, completed)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::text, $6::boolean
		WHERE EXISTS (SELECT 1 FROM characters WHERE id = $2::text AND user_id = $1::text)
		ON CONFLICT (profile_id, section, item, trait) DO UPDATE SET
			completed = EXCLUDED.completed
		WHERE trait_progress.user_id = EXCLUDED.user_id
	`, userID, p.ProfileID, p.Section, p.Item, p.Trait, p.Completed)
	return ownedWrite("pgstore UpsertProgress", tag, err)
}

func (s *Store) DeleteProgress(ctx context.Context, userID string, k storage.TraitKey) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM trait_progress
		WHERE user_id = $1 AND profile_id = $2 AND section = $3 AND item = $4 AND trait = $5
	`, userID, k.ProfileID, k.Section, k.Item, k.Trait)
	if err != nil {
		return fmt.Errorf("pgstore DeleteProgress: %w", err)
	}
	return nil
}

func (s *Store) ListNotes(ctx context.Context, userID string) ([]storage.ItemNote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT profile_id, section, item, note
		FROM item_notes
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("pgstore ListNotes: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.ItemNote, error) {
		var n storage.ItemNote
		err := row.Scan(&n.ProfileID, &n.Section, &n.Item, &n.Note)
		return n, err
	})
}

func (s *Store) UpsertNote(ctx context.Context, userID string, n storage.ItemNote) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO item_notes (user_id, profile_id, section, item, note)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::text
		WHERE EXISTS (SELECT 1 FROM characters WHERE id = $2::text AND user_id = $1::text)
		ON CONFLICT (profile_id, section, item) DO UPDATE SET
			note = EXCLUDED.note
		WHERE item_notes.user_id = EXCLUDED.user_id
	`, userID, n.ProfileID, n.Section, n.Item, n.Note)
	return ownedWrite("pgstore UpsertNote", tag, err)
}

func (s *Store) DeleteNote(ctx context.Context, userID string, k storage.ItemKey) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM item_notes
		WHERE user_id = $1 AND profile_id = $2 AND section = $3 AND item = $4
	`, userID, k.ProfileID, k.Section, k.Item)
	if err != nil {
		return fmt.Errorf("pgstore DeleteNote: %w", err)
	}
	return nil
}

func (s *Store) ListBank(ctx context.Context, userID string) ([]storage.ItemBankStatus, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT profile_id, section, item, in_bank
		FROM bank_status
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("pgstore ListBank: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.ItemBankStatus, error) {
		var b storage.ItemBankStatus
		err := row.Scan(&b.ProfileID, &b.Section, &b.Item, &b.InBank)
		return b, err
	})
}

func (s *Store) UpsertBank(ctx context.Context, userID string, b storage.ItemBankStatus) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO bank_status (user_id, profile_id, section, item, in_bank)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::boolean
		WHERE EXISTS (SELECT 1 FROM characters WHERE id = $2::text AND user_id = $1::text)
		ON CONFLICT (profile_id, section, item) DO UPDATE SET
			in_bank = EXCLUDED.in_bank
		WHERE bank_status.user_id = EXCLUDED.user_id
	`, userID, b.ProfileID, b.Section, b.Item, b.InBank)
	return ownedWrite("pgstore UpsertBank", tag, err)
}

func (s *Store) DeleteBank(ctx context.Context, userID string, k storage.ItemKey) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM bank_status
		WHERE user_id = $1 AND profile_id = $2 AND section = $3 AND item = $4
	`, userID, k.ProfileID, k.Section, k.Item)
	if err != nil {
		return fmt.Errorf("pgstore DeleteBank: %w", err)
	}
	return nil
}

func (s *Store) ListTimers(ctx context.Context, userID string) ([]storage.ResearchTimer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT profile_id, section, item, trait, end_time
		FROM research_timers
		WHERE user_id = $1
		ORDER BY end_time ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("pgstore ListTimers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.ResearchTimer, error) {
		var t storage.ResearchTimer
		err := row.Scan(&t.ProfileID, &t.Section, &t.Item, &t.Trait, &t.EndTime)
		return t, err
	})
}

func (s *Store) UpsertTimer(ctx context.Context, userID string, t storage.ResearchTimer) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO research_timers (user_id, profile_id, section, item, trait, end_time)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::text, $6::timestamptz
		WHERE EXISTS (SELECT 1 FROM characters WHERE id = $2::text AND user_id = $1::text)
		ON CONFLICT (profile_id, section, item, trait) DO UPDATE SET
			end_time = EXCLUDED.end_time
		WHERE research_timers.user_id = EXCLUDED.user_id
	`, userID, t.ProfileID, t.Section, t.Item, t.Trait, t.EndTime.UTC())
	return ownedWrite("pgstore UpsertTimer", tag, err)
}

func (s *Store) DeleteTimer(ctx context.Context, userID string, k storage.TraitKey) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM research_timers
		WHERE user_id = $1 AND profile_id = $2 AND section = $3 AND item = $4 AND trait = $5
	`, userID, k.ProfileID, k.Section, k.Item, k.Trait)
	if err != nil {
		return fmt.Errorf("pgstore DeleteTimer: %w", err)
	}
	return nil
}
