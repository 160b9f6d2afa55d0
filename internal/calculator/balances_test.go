package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmynk/expensesplit/internal/models"
)

func share(expenseID, userID, name, amount string) models.ShareRecord {
	return models.ShareRecord{
		Share:    models.Share{ExpenseID: expenseID, UserID: userID, Amount: dec(amount)},
		UserName: name,
	}
}

func TestCalculateBalances(t *testing.T) {
	tests := []struct {
		name      string
		shares    []models.ShareRecord
		wantRows  []models.BalanceRow
		wantTotal string
	}{
		{
			name:      "no shares",
			shares:    nil,
			wantRows:  []models.BalanceRow{},
			wantTotal: "0",
		},
		{
			name: "aggregates per user across expenses",
			shares: []models.ShareRecord{
				share("e1", "u2", "Bob", "33.33"),
				share("e1", "u1", "Alice", "33.34"),
				share("e1", "u3", "Charlie", "33.33"),
				share("e2", "u1", "Alice", "20.00"),
				share("e2", "u2", "Bob", "60.00"),
			},
			wantRows: []models.BalanceRow{
				{UserID: "u1", Name: "Alice", Amount: dec("53.34")},
				{UserID: "u2", Name: "Bob", Amount: dec("93.33")},
				{UserID: "u3", Name: "Charlie", Amount: dec("33.33")},
			},
			wantTotal: "180",
		},
		{
			name: "same name ordered by user id",
			shares: []models.ShareRecord{
				share("e1", "u9", "Sam", "1"),
				share("e1", "u4", "Sam", "2"),
			},
			wantRows: []models.BalanceRow{
				{UserID: "u4", Name: "Sam", Amount: dec("2")},
				{UserID: "u9", Name: "Sam", Amount: dec("1")},
			},
			wantTotal: "3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := CalculateBalances(tt.shares)

			assert.Len(t, sheet.Rows, len(tt.wantRows))
			for i, want := range tt.wantRows {
				got := sheet.Rows[i]
				assert.Equal(t, want.UserID, got.UserID)
				assert.Equal(t, want.Name, got.Name)
				assert.True(t, want.Amount.Equal(got.Amount), "%s: got %s, want %s", want.Name, got.Amount, want.Amount)
			}
			assert.True(t, sheet.Total.Equal(dec(tt.wantTotal)), "total = %s, want %s", sheet.Total, tt.wantTotal)
		})
	}
}
