// Package models defines the core domain models for the expense splitter.
//
// # Models
//
//   - User: a person who can take part in expenses (unique email)
//   - Expense: a recorded cost with a positive total
//   - Share: one participant's owed amount for a split expense
//   - BalanceRow / BalanceSheet: aggregated amounts owed per user
//
// # Design Principles
//
// 1. **Exact money**: amounts are decimal.Decimal, never float64
// 2. **Avoid circular references**: relationships use ID strings, not pointers
// 3. **Storage agnostic**: no persistence or transport tags live here
package models
