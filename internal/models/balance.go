package models

import "github.com/shopspring/decimal"

// BalanceRow is the total one user owes across all split expenses.
type BalanceRow struct {
	UserID string
	Name   string
	Amount decimal.Decimal
}

// BalanceSheet is an ordered list of balance rows plus their sum.
type BalanceSheet struct {
	Rows  []BalanceRow
	Total decimal.Decimal
}

// ShareRecord is a persisted share joined with its user's name, as needed
// for balance aggregation.
type ShareRecord struct {
	Share
	UserName string
}
