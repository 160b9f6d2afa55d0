package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/expensesplit/internal/models"
)

// CalculateBalances aggregates persisted shares into one row per user.
//
// Algorithm:
// - For each share: the user's row accumulates the share amount
// - Rows are ordered by user name, then user ID
// - Total is the sum of all rows
func CalculateBalances(shares []models.ShareRecord) models.BalanceSheet {
	balances := make(map[string]*models.BalanceRow)

	for _, s := range shares {
		row, exists := balances[s.UserID]
		if !exists {
			row = &models.BalanceRow{UserID: s.UserID, Name: s.UserName, Amount: decimal.Zero}
			balances[s.UserID] = row
		}
		row.Amount = row.Amount.Add(s.Amount)
	}

	rows := make([]models.BalanceRow, 0, len(balances))
	for _, row := range balances {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].UserID < rows[j].UserID
	})

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}

	return models.BalanceSheet{Rows: rows, Total: total}
}
