// Package repository implements the analytics read capability on GORM.
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fintrack/internal/analytics"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates an analytics.Repository backed by db.
//
// Amounts are loaded as decimals and summed in Go: SQLite's SUM over a
// NUMERIC column returns REAL, so summing in SQL would not be exact there.
func NewAnalyticsRepository(db *gorm.DB) analytics.Repository {
	return &analyticsRepository{db: db}
}

// FindExpensesInRange returns the user's expenses dated within [start, end],
// newest first, with category names joined in.
func (r *analyticsRepository) FindExpensesInRange(ctx context.Context, userID string, start, end time.Time) ([]analytics.ExpenseRow, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		InnerJoins("Category").
		Where("expenses.user_id = ? AND expenses.date BETWEEN ? AND ?", userID, start.UTC(), end.UTC()).
		Order("expenses.date DESC").
		Find(&expenses).Error
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	rows := make([]analytics.ExpenseRow, len(expenses))
	for i, e := range expenses {
		rows[i] = analytics.ExpenseRow{
			ExpenseID:    e.ID,
			CategoryID:   e.CategoryID,
			CategoryName: e.Category.Name,
			Amount:       e.Amount,
			Date:         e.Date,
		}
	}
	return rows, nil
}

// SumExpenses totals the user's expenses within [start, end], optionally
// restricted to one category.
func (r *analyticsRepository) SumExpenses(ctx context.Context, userID string, start, end time.Time, categoryID *string) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&models.Expense{}).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start.UTC(), end.UTC())
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var amounts []decimal.Decimal
	if err := query.Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, apperrors.Storage(err)
	}
	return sum(amounts), nil
}

// SumIncome totals the user's income within [start, end].
func (r *analyticsRepository) SumIncome(ctx context.Context, userID string, start, end time.Time) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.Income{}).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start.UTC(), end.UTC()).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, apperrors.Storage(err)
	}
	return sum(amounts), nil
}

// ListBudgetsWithCategory returns the user's budgets in creation order. A
// budget whose category row is gone comes back with a nil Category.
func (r *analyticsRepository) ListBudgetsWithCategory(ctx context.Context, userID string) ([]analytics.BudgetWithCategory, error) {
	var budgets []models.Budget
	err := r.db.WithContext(ctx).
		Joins("Category").
		Where("budgets.user_id = ?", userID).
		Order("budgets.created_at ASC, budgets.id ASC").
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	result := make([]analytics.BudgetWithCategory, len(budgets))
	for i := range budgets {
		result[i].Budget = budgets[i]
		if budgets[i].Category.ID != "" {
			category := budgets[i].Category
			result[i].Category = &category
		}
	}
	return result, nil
}

func sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
