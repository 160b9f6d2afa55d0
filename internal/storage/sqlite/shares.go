package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/expensesplit/internal/errs"
	"github.com/mmynk/expensesplit/internal/models"
)

// ReplaceShares deletes the existing shares of an expense and stores the new
// ones in a single transaction, recording the split method on the expense.
func (s *SQLiteStore) ReplaceShares(ctx context.Context, expenseID string, method models.SplitMethod, shares []models.Share) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE expenses SET split_method = ? WHERE id = ?",
		string(method), expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return errs.NotFound("expense", expenseID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_shares WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete shares: %w", err)
	}

	for i, share := range shares {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, user_id, position, amount) VALUES (?, ?, ?, ?)",
			expenseID, share.UserID, i, share.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListShares retrieves persisted shares joined with user names.
// If userID is empty, shares of all users are returned.
func (s *SQLiteStore) ListShares(ctx context.Context, userID string) ([]models.ShareRecord, error) {
	query := `
		SELECT s.expense_id, s.user_id, s.amount, u.name
		FROM expense_shares s
		JOIN users u ON u.id = s.user_id`
	var args []any
	if userID != "" {
		query += " WHERE s.user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY s.expense_id, s.position"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer rows.Close()

	var records []models.ShareRecord
	for rows.Next() {
		var r models.ShareRecord
		if err := rows.Scan(&r.ExpenseID, &r.UserID, &r.Amount, &r.UserName); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	return records, nil
}
