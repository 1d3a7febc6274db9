package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotOwned reports a write aimed at a profile or row that belongs to a
// different user. Such writes leave the store unchanged.
var ErrNotOwned = errors.New("record belongs to another user")

// ownedWrite turns an upsert that touched no row into ErrNotOwned. Upserts
// only skip a row when the ownership guard rejects it.
func ownedWrite(op string, res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotOwned)
	}
	return nil
}

// SQLRemote is the multi-user store backed by a SQLite database. It mirrors
// the Postgres store so development and tests need no server.
type SQLRemote struct {
	db       *sql.DB
	profiles *ProfileRepo
	progress *ProgressRepo
	notes    *NoteRepo
	bank     *BankRepo
	timers   *TimerRepo
}

func NewSQLRemote(db *sql.DB) *SQLRemote {
	return &SQLRemote{
		db:       db,
		profiles: NewProfileRepo(db),
		progress: NewProgressRepo(db),
		notes:    NewNoteRepo(db),
		bank:     NewBankRepo(db),
		timers:   NewTimerRepo(db),
	}
}

func (s *SQLRemote) Close() error { return s.db.Close() }

func (s *SQLRemote) ListProfiles(ctx context.Context, userID string) ([]Profile, error) {
	return s.profiles.ListByUser(ctx, userID)
}

func (s *SQLRemote) UpsertProfile(ctx context.Context, userID string, p Profile) error {
	return s.profiles.Upsert(ctx, userID, p)
}

func (s *SQLRemote) DeleteProfile(ctx context.Context, userID, profileID string) error {
	return s.profiles.Delete(ctx, userID, profileID)
}

func (s *SQLRemote) ResetProfile(ctx context.Context, userID, profileID string) error {
	return s.profiles.ResetProgress(ctx, userID, profileID)
}

func (s *SQLRemote) ListProgress(ctx context.Context, userID string) ([]TraitProgress, error) {
	return s.progress.ListByUser(ctx, userID)
}

func (s *SQLRemote) UpsertProgress(ctx context.Context, userID string, p TraitProgress) error {
	return s.progress.Upsert(ctx, userID, p)
}

func (s *SQLRemote) DeleteProgress(ctx context.Context, userID string, k TraitKey) error {
	return s.progress.Delete(ctx, userID, k)
}

func (s *SQLRemote) ListNotes(ctx context.Context, userID string) ([]ItemNote, error) {
	return s.notes.ListByUser(ctx, userID)
}

func (s *SQLRemote) UpsertNote(ctx context.Context, userID string, n ItemNote) error {
	return s.notes.Upsert(ctx, userID, n)
}

func (s *SQLRemote) DeleteNote(ctx context.Context, userID string, k ItemKey) error {
	return s.notes.Delete(ctx, userID, k)
}

func (s *SQLRemote) ListBank(ctx context.Context, userID string) ([]ItemBankStatus, error) {
	return s.bank.ListByUser(ctx, userID)
}

func (s *SQLRemote) UpsertBank(ctx context.Context, userID string, b ItemBankStatus) error {
	return s.bank.Upsert(ctx, userID, b)
}

func (s *SQLRemote) DeleteBank(ctx context.Context, userID string, k ItemKey) error {
	return s.bank.Delete(ctx, userID, k)
}

func (s *SQLRemote) ListTimers(ctx context.Context, userID string) ([]ResearchTimer, error) {
	return s.timers.ListByUser(ctx, userID)
}

func (s *SQLRemote) UpsertTimer(ctx context.Context, userID string, t ResearchTimer) error {
	return s.timers.Upsert(ctx, userID, t)
}

func (s *SQLRemote) DeleteTimer(ctx context.Context, userID string, k TraitKey) error {
	return s.timers.Delete(ctx, userID, k)
}
