// Package analytics derives aggregate financial views for one user:
// monthly category breakdowns, month-to-date totals, budget progress and
// multi-month trends. It reads through the Repository capability only and
// keeps every amount in exact decimal arithmetic.
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// ExpenseRow is one owner-filtered expense with its category name resolved.
type ExpenseRow struct {
	ExpenseID    string
	CategoryID   string
	CategoryName string
	Amount       decimal.Decimal
	Date         time.Time
}

// BudgetWithCategory pairs a budget with its category. Category is nil when
// the category row no longer exists.
type BudgetWithCategory struct {
	Budget   models.Budget
	Category *models.Category
}

// Repository is the read capability the engine aggregates over. Every call
// filters on userID, and [start, end] bounds are inclusive on both ends.
// A sum over no rows is zero.
type Repository interface {
	FindExpensesInRange(ctx context.Context, userID string, start, end time.Time) ([]ExpenseRow, error)
	SumExpenses(ctx context.Context, userID string, start, end time.Time, categoryID *string) (decimal.Decimal, error)
	SumIncome(ctx context.Context, userID string, start, end time.Time) (decimal.Decimal, error)
	ListBudgetsWithCategory(ctx context.Context, userID string) ([]BudgetWithCategory, error)
}
