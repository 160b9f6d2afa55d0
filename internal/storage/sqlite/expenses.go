package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/expensesplit/internal/errs"
	"github.com/mmynk/expensesplit/internal/models"
)

// CreateExpense persists a new expense and its participants.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses (id, description, amount, split_method, created_at) VALUES (?, ?, ?, ?, ?)",
		expense.ID, expense.Description, expense.Amount, string(expense.SplitMethod), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, userID := range expense.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, user_id, position) VALUES (?, ?, ?)",
			expense.ID, userID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including participants and shares
// in the order they were recorded.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	expense := &models.Expense{}
	var method string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, description, amount, split_method, created_at FROM expenses WHERE id = ?",
		id,
	).Scan(&expense.ID, &expense.Description, &expense.Amount, &method, &expense.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("expense", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.SplitMethod = models.SplitMethod(method)

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM expense_participants WHERE expense_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		expense.Participants = append(expense.Participants, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	shareRows, err := s.db.QueryContext(ctx,
		"SELECT user_id, amount FROM expense_shares WHERE expense_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		share := models.Share{ExpenseID: id}
		if err := shareRows.Scan(&share.UserID, &share.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		expense.Shares = append(expense.Shares, share)
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	return expense, nil
}

// ListExpenses retrieves all expenses, newest first. Participants and shares
// are not loaded.
func (s *SQLiteStore) ListExpenses(ctx context.Context) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, description, amount, split_method, created_at FROM expenses ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		var method string
		if err := rows.Scan(&expense.ID, &expense.Description, &expense.Amount, &method, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.SplitMethod = models.SplitMethod(method)
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}
