package models

import "github.com/shopspring/decimal"

// SplitMethod is the strategy used to divide an expense among participants.
type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitExact      SplitMethod = "exact"
	SplitPercentage SplitMethod = "percentage"
)

// Expense represents a recorded cost that can be split among users.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Description is free text describing the expense (e.g., "Dinner").
	Description string

	// Amount is the expense total. Always positive.
	Amount decimal.Decimal

	// Participants is the list of user IDs the expense was recorded for.
	Participants []string

	// SplitMethod is the method of the most recent split, empty if the
	// expense was never split.
	SplitMethod SplitMethod

	// Shares holds the owed amount per participant from the most recent split.
	Shares []Share

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64
}

// Share represents one participant's owed amount for a split expense.
type Share struct {
	ExpenseID string
	UserID    string
	Amount    decimal.Decimal
}
