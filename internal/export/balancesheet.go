// Package export renders balance sheets as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/expensesplit/internal/models"
)

const (
	// ContentType is the MIME type sent with exported workbooks.
	ContentType = "application/vnd.ms-excel"

	// FileName is the attachment name of the balance sheet.
	FileName = "balance_sheet.xlsx"

	// SheetName is the worksheet holding the balance rows.
	SheetName = "Balance Sheet"
)

// numFmtTwoDecimals is the built-in "0.00" number format.
const numFmtTwoDecimals = 2

// WriteBalanceSheet writes a workbook with a "User | Amount Owed" header row,
// one row per balance row and the grand total in D1:E1.
func WriteBalanceSheet(w io.Writer, rows []models.BalanceRow, total decimal.Decimal) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}

	cells := []struct {
		cell  string
		value any
	}{
		{"A1", "User"},
		{"B1", "Amount Owed"},
		{"D1", "Total"},
		{"E1", total.InexactFloat64()},
	}
	for _, c := range cells {
		if err := f.SetCellValue(SheetName, c.cell, c.value); err != nil {
			return fmt.Errorf("failed to write %s: %w", c.cell, err)
		}
	}

	for i, row := range rows {
		r := i + 2
		if err := f.SetCellValue(SheetName, fmt.Sprintf("A%d", r), row.Name); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
		if err := f.SetCellValue(SheetName, fmt.Sprintf("B%d", r), row.Amount.InexactFloat64()); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	if err := f.SetCellStyle(SheetName, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "D1", "D1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "E1", "E1", amountStyle); err != nil {
		return fmt.Errorf("failed to style total: %w", err)
	}
	if len(rows) > 0 {
		last := fmt.Sprintf("B%d", len(rows)+1)
		if err := f.SetCellStyle(SheetName, "B2", last, amountStyle); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}
	if err := f.SetColWidth(SheetName, "A", "A", 30); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
