package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

type fakeExpense struct {
	id           string
	userID       string
	categoryID   string
	categoryName string
	amount       string
	date         time.Time
}

type fakeIncome struct {
	userID string
	amount string
	date   time.Time
}

// fakeRepository filters in memory with the same inclusive bounds as the
// SQL implementation.
type fakeRepository struct {
	expenses []fakeExpense
	income   []fakeIncome
	budgets  map[string][]BudgetWithCategory

	findErr    error
	sumErr     error
	incomeErr  error
	budgetsErr error

	// failCategory makes SumExpenses fail for one category only.
	failCategory string

	mu       sync.Mutex
	sumCalls int
}

var _ Repository = (*fakeRepository)(nil)

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func (f *fakeRepository) FindExpensesInRange(_ context.Context, userID string, start, end time.Time) ([]ExpenseRow, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var rows []ExpenseRow
	for _, e := range f.expenses {
		if e.userID != userID || !inRange(e.date, start, end) {
			continue
		}
		rows = append(rows, ExpenseRow{
			ExpenseID:    e.id,
			CategoryID:   e.categoryID,
			CategoryName: e.categoryName,
			Amount:       decimal.RequireFromString(e.amount),
			Date:         e.date,
		})
	}
	return rows, nil
}

func (f *fakeRepository) SumExpenses(_ context.Context, userID string, start, end time.Time, categoryID *string) (decimal.Decimal, error) {
	f.mu.Lock()
	f.sumCalls++
	f.mu.Unlock()

	if f.sumErr != nil {
		return decimal.Zero, f.sumErr
	}
	if categoryID != nil && *categoryID == f.failCategory {
		return decimal.Zero, errBoom
	}
	sum := decimal.Zero
	for _, e := range f.expenses {
		if e.userID != userID || !inRange(e.date, start, end) {
			continue
		}
		if categoryID != nil && e.categoryID != *categoryID {
			continue
		}
		sum = sum.Add(decimal.RequireFromString(e.amount))
	}
	return sum, nil
}

func (f *fakeRepository) SumIncome(_ context.Context, userID string, start, end time.Time) (decimal.Decimal, error) {
	if f.incomeErr != nil {
		return decimal.Zero, f.incomeErr
	}
	sum := decimal.Zero
	for _, i := range f.income {
		if i.userID == userID && inRange(i.date, start, end) {
			sum = sum.Add(decimal.RequireFromString(i.amount))
		}
	}
	return sum, nil
}

func (f *fakeRepository) ListBudgetsWithCategory(_ context.Context, userID string) ([]BudgetWithCategory, error) {
	if f.budgetsErr != nil {
		return nil, f.budgetsErr
	}
	return f.budgets[userID], nil
}

func budgetFor(id string, category *models.Category, amount string, period models.BudgetPeriod) BudgetWithCategory {
	b := models.Budget{
		UserID:    "alice@example.com",
		Amount:    decimal.RequireFromString(amount),
		Period:    period,
		StartDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	b.ID = id
	if category != nil {
		b.CategoryID = category.ID
	} else {
		b.CategoryID = "deleted-category"
	}
	return BudgetWithCategory{Budget: b, Category: category}
}

func category(id, name string) *models.Category {
	c := &models.Category{UserID: "alice@example.com", Name: name}
	c.ID = id
	return c
}
