package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// CreateExpense records an expense in one of the user's categories.
func (s *expenseService) CreateExpense(userID string, in ExpenseInput) (*models.Expense, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperrors.Validation("description", "is required")
	}
	method := in.PaymentMethod
	if method == "" {
		method = models.PaymentMethodCash
	}
	if !method.Valid() {
		return nil, apperrors.Validation("payment_method", "must be one of cash, creditCard, debitCard, digitalWallet, bankTransfer")
	}
	if in.Date.IsZero() {
		return nil, apperrors.Validation("date", "is required")
	}

	if err := ensureCategoryOwned(s.db, userID, in.CategoryID); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		UserID:        userID,
		CategoryID:    in.CategoryID,
		Amount:        in.Amount,
		Description:   description,
		PaymentMethod: method,
		Date:          in.Date.UTC(),
	}
	if err := s.db.Omit(clause.Associations).Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	return s.GetExpenseByID(userID, expense.ID)
}

// GetUserExpenses lists the user's most recent expenses with their
// categories, newest first.
func (s *expenseService) GetUserExpenses(userID string, limit int) ([]models.Expense, error) {
	expenses := make([]models.Expense, 0)
	if err := s.db.InnerJoins("Category").
		Where("expenses.user_id = ?", userID).
		Order("expenses.date DESC, expenses.id DESC").
		Scopes(pagination.Limit(limit)).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return expenses, nil
}

// GetExpensesInRange lists the user's expenses dated within [start, end],
// oldest first.
func (s *expenseService) GetExpensesInRange(userID string, start, end time.Time) ([]models.Expense, error) {
	expenses := make([]models.Expense, 0)
	if err := s.db.InnerJoins("Category").
		Where("expenses.user_id = ? AND expenses.date BETWEEN ? AND ?", userID, start.UTC(), end.UTC()).
		Order("expenses.date ASC, expenses.id ASC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return expenses, nil
}

// GetExpenseByID retrieves an expense by ID for a specific user
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.InnerJoins("Category").
		Where("expenses.id = ? AND expenses.user_id = ?", expenseID, userID).
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return &expense, nil
}

// UpdateExpense applies a partial update. Moving an expense to another
// category requires that category to belong to the user too.
func (s *expenseService) UpdateExpense(userID, expenseID string, in ExpenseUpdate) (*models.Expense, error) {
	updates := make(map[string]interface{})
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, apperrors.Validation("description", "is required")
		}
		updates["description"] = description
	}
	if in.PaymentMethod != nil {
		if !in.PaymentMethod.Valid() {
			return nil, apperrors.Validation("payment_method", "must be one of cash, creditCard, debitCard, digitalWallet, bankTransfer")
		}
		updates["payment_method"] = *in.PaymentMethod
	}
	if in.Amount != nil {
		updates["amount"] = *in.Amount
	}
	if in.Date != nil {
		if in.Date.IsZero() {
			return nil, apperrors.Validation("date", "is required")
		}
		updates["date"] = in.Date.UTC()
	}

	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	if in.CategoryID != nil && *in.CategoryID != expense.CategoryID {
		if err := ensureCategoryOwned(s.db, userID, *in.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *in.CategoryID
	}

	if len(updates) == 0 {
		return expense, nil
	}

	if err := s.db.Model(&models.Expense{}).
		Where("id = ? AND user_id = ?", expenseID, userID).
		Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return s.GetExpenseByID(userID, expenseID)
}

// DeleteExpense permanently deletes an expense.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	result := s.db.Where("id = ? AND user_id = ?", expenseID, userID).Delete(&models.Expense{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}
