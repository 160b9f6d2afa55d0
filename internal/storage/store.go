// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/expensesplit/internal/models"
)

// Store defines the record store used by the service layer.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Lookups of missing records return an error wrapping errs.ErrNotFound.
type Store interface {
	// CreateUser persists a new user. The user.ID and user.CreatedAt fields
	// are populated by the store. A duplicate email returns errs.ErrAlreadyExists.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail retrieves a user by email (case-insensitive).
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUsersByIDs returns the users that exist among ids, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// UserEmailExists reports whether a user with the email exists.
	UserEmailExists(ctx context.Context, email string) (bool, error)

	// CreateExpense persists a new expense and its participant list.
	// The expense.ID and expense.CreatedAt fields are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its participants and shares.
	GetExpense(ctx context.Context, id string) (*models.Expense, error)

	// ListExpenses returns all expenses, newest first, without shares.
	ListExpenses(ctx context.Context) ([]*models.Expense, error)

	// ReplaceShares atomically replaces the shares of an expense and records
	// the split method used to compute them.
	ReplaceShares(ctx context.Context, expenseID string, method models.SplitMethod, shares []models.Share) error

	// ListShares returns persisted shares joined with user names.
	// An empty userID returns the shares of every user.
	ListShares(ctx context.Context, userID string) ([]models.ShareRecord, error)

	// Close releases any resources held by the store.
	Close() error
}
