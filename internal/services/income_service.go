package services

import (
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

const maxIncomeSource = 100

// incomeService handles income-related business logic.
type incomeService struct {
	db *gorm.DB
}

// NewIncomeService creates a new IncomeServicer.
func NewIncomeService(db *gorm.DB) IncomeServicer {
	return &incomeService{db: db}
}

// CreateIncome records an income entry.
func (s *incomeService) CreateIncome(userID string, in IncomeInput) (*models.Income, error) {
	source := strings.TrimSpace(in.Source)
	if source == "" {
		return nil, apperrors.Validation("source", "is required")
	}
	if utf8.RuneCountInString(source) > maxIncomeSource {
		return nil, apperrors.Validation("source", "must be at most 100 characters")
	}
	if in.Date.IsZero() {
		return nil, apperrors.Validation("date", "is required")
	}

	income := &models.Income{
		UserID:      userID,
		Amount:      in.Amount,
		Source:      source,
		Description: trimmed(in.Description),
		Date:        in.Date.UTC(),
	}
	if err := s.db.Omit(clause.Associations).Create(income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return income, nil
}

// GetUserIncome lists the user's most recent income, newest first.
func (s *incomeService) GetUserIncome(userID string, limit int) ([]models.Income, error) {
	income := make([]models.Income, 0)
	if err := s.db.Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Scopes(pagination.Limit(limit)).
		Find(&income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return income, nil
}

// DeleteIncome permanently deletes an income entry.
func (s *incomeService) DeleteIncome(userID, incomeID string) error {
	result := s.db.Where("id = ? AND user_id = ?", incomeID, userID).Delete(&models.Income{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrIncomeNotFound
	}
	return nil
}
