package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"fintrack/internal/analytics"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

const expenseSheet = "Expenses"

var exportHeaders = []string{"Date", "Category", "Description", "Payment Method", "Amount"}

// exportService renders a month of expenses as CSV or XLSX.
type exportService struct {
	expenses ExpenseServicer
	loc      *time.Location
}

// NewExportService creates a new ExportServicer. Dates are written in loc.
func NewExportService(expenses ExpenseServicer, loc *time.Location) ExportServicer {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{expenses: expenses, loc: loc}
}

func (s *exportService) monthExpenses(userID string, year, month int) ([]models.Expense, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.Validation("month", "must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return nil, apperrors.Validation("year", "must be between 1 and 9999")
	}
	w := analytics.MonthWindow(year, time.Month(month), s.loc)
	return s.expenses.GetExpensesInRange(userID, w.Start, w.End)
}

// ExpensesCSV writes the month's expenses, oldest first, followed by a total row.
func (s *exportService) ExpensesCSV(w io.Writer, userID string, year, month int) error {
	expenses, err := s.monthExpenses(userID, year, month)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeaders); err != nil {
		return err
	}

	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
		if err := writer.Write([]string{
			e.Date.In(s.loc).Format("2006-01-02 15:04"),
			e.Category.Name,
			e.Description,
			string(e.PaymentMethod),
			e.Amount.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{"", "", "", "Total", total.StringFixed(2)}); err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

// ExpensesXLSX writes the month's expenses as a single-sheet workbook with
// numeric amount cells and a SUM formula for the total.
func (s *exportService) ExpensesXLSX(w io.Writer, userID string, year, month int) error {
	expenses, err := s.monthExpenses(userID, year, month)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", expenseSheet); err != nil {
		return err
	}

	for i, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(expenseSheet, cell, h); err != nil {
			return err
		}
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}

	for idx, e := range expenses {
		row := idx + 2
		values := []interface{}{
			e.Date.In(s.loc).Format("2006-01-02 15:04"),
			e.Category.Name,
			e.Description,
			string(e.PaymentMethod),
			e.Amount.InexactFloat64(),
		}
		if err := f.SetSheetRow(expenseSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
	}

	totalRow := len(expenses) + 2
	if err := f.SetCellValue(expenseSheet, fmt.Sprintf("D%d", totalRow), "Total"); err != nil {
		return err
	}
	totalCell := fmt.Sprintf("E%d", totalRow)
	if len(expenses) > 0 {
		if err := f.SetCellFormula(expenseSheet, totalCell, fmt.Sprintf("SUM(E2:E%d)", totalRow-1)); err != nil {
			return err
		}
	} else if err := f.SetCellValue(expenseSheet, totalCell, 0); err != nil {
		return err
	}
	if err := f.SetCellStyle(expenseSheet, "E2", totalCell, moneyStyle); err != nil {
		return err
	}

	_ = f.SetColWidth(expenseSheet, "A", "A", 18)
	_ = f.SetColWidth(expenseSheet, "B", "B", 20)
	_ = f.SetColWidth(expenseSheet, "C", "C", 40)
	_ = f.SetColWidth(expenseSheet, "D", "D", 16)
	_ = f.SetColWidth(expenseSheet, "E", "E", 14)

	_, err = f.WriteTo(w)
	return err
}
