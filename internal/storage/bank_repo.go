package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// BankRepo stores banked items. Unbanked items have no row.
type BankRepo struct {
	db *sql.DB
}

func NewBankRepo(db *sql.DB) *BankRepo {
	return &BankRepo{db: db}
}

func (r *BankRepo) ListByUser(ctx context.Context, userID string) ([]ItemBankStatus, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT profile_id, section, item, in_bank
		FROM bank_status
		WHERE user_id = ?
		ORDER BY profile_id, section, item
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("bank list: %w", err)
	}
	defer rows.Close()

	var out []ItemBankStatus
	for rows.Next() {
		var b ItemBankStatus
		var inBank int
		if err := rows.Scan(&b.ProfileID, &b.Section, &b.Item, &inBank); err != nil {
			return nil, fmt.Errorf("bank scan: %w", err)
		}
		b.InBank = inBank != 0
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bank rows: %w", err)
	}
	return out, nil
}

func (r *BankRepo) Upsert(ctx context.Context, userID string, b ItemBankStatus) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO bank_status (user_id, profile_id, section, item, in_bank)
		SELECT ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM characters WHERE id = ? AND user_id = ?)
		ON CONFLICT(profile_id, section, item) DO UPDATE SET
			in_bank = excluded.in_bank
		WHERE bank_status.user_id = excluded.user_id
	`, userID, b.ProfileID, b.Section, b.Item, boolToInt(b.InBank), b.ProfileID, userID)
	return ownedWrite("bank upsert", res, err)
}

func (r *BankRepo) Delete(ctx context.Context, userID string, k ItemKey) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM bank_status
		WHERE user_id = ? AND profile_id = ? AND section = ? AND item = ?
	`, userID, k.ProfileID, k.Section, k.Item)
	if err != nil {
		return fmt.Errorf("bank delete: %w", err)
	}
	return nil
}
