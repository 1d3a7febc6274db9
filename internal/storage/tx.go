package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTx runs fn inside a SQL transaction.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// relationTables are the per-profile tables, in cascade order.
var relationTables = []string{"trait_progress", "item_notes", "bank_status", "research_timers"}

// deleteProfileRows removes every relation row of one profile owned by userID.
func deleteProfileRows(ctx context.Context, tx *sql.Tx, userID, profileID string) error {
	for _, table := range relationTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = ? AND profile_id = ?`, userID, profileID); err != nil {
			return fmt.Errorf("%s delete profile rows: %w", table, err)
		}
	}
	return nil
}
