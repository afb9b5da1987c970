package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a budget for one of the user's categories.
func (s *budgetService) CreateBudget(userID string, in BudgetInput) (*models.Budget, error) {
	period := in.Period
	if period == "" {
		period = models.BudgetPeriodMonthly
	}
	if !period.Valid() {
		return nil, apperrors.Validation("period", "must be one of weekly, monthly, quarterly, yearly")
	}
	if in.StartDate.IsZero() {
		return nil, apperrors.Validation("start_date", "is required")
	}

	if err := ensureCategoryOwned(s.db, userID, in.CategoryID); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: in.CategoryID,
		Amount:     in.Amount,
		Period:     period,
		StartDate:  in.StartDate.UTC(),
	}
	if err := s.db.Omit(clause.Associations).Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	return s.GetBudgetByID(userID, budget.ID)
}

// GetUserBudgets lists the user's budgets with their categories, in
// creation order.
func (s *budgetService) GetUserBudgets(userID string) ([]models.Budget, error) {
	budgets := make([]models.Budget, 0)
	if err := s.db.InnerJoins("Category").
		Where("budgets.user_id = ?", userID).
		Order("budgets.created_at ASC, budgets.id ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return budgets, nil
}

// GetBudgetByID retrieves a budget by ID for a specific user
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.InnerJoins("Category").
		Where("budgets.id = ? AND budgets.user_id = ?", budgetID, userID).
		First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return &budget, nil
}

// UpdateBudget applies a partial update to an existing budget.
func (s *budgetService) UpdateBudget(userID, budgetID string, in BudgetUpdate) (*models.Budget, error) {
	updates := make(map[string]interface{})
	if in.Amount != nil {
		updates["amount"] = *in.Amount
	}
	if in.Period != nil {
		if !in.Period.Valid() {
			return nil, apperrors.Validation("period", "must be one of weekly, monthly, quarterly, yearly")
		}
		updates["period"] = *in.Period
	}
	if in.StartDate != nil {
		if in.StartDate.IsZero() {
			return nil, apperrors.Validation("start_date", "is required")
		}
		updates["start_date"] = in.StartDate.UTC()
	}

	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	if in.CategoryID != nil && *in.CategoryID != budget.CategoryID {
		if err := ensureCategoryOwned(s.db, userID, *in.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *in.CategoryID
	}

	if len(updates) == 0 {
		return budget, nil
	}

	if err := s.db.Model(&models.Budget{}).
		Where("id = ? AND user_id = ?", budgetID, userID).
		Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return s.GetBudgetByID(userID, budgetID)
}

// DeleteBudget deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	result := s.db.Where("id = ? AND user_id = ?", budgetID, userID).Delete(&models.Budget{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrBudgetNotFound
	}
	return nil
}
