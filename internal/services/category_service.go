package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/validator"
)

const (
	maxCategoryName = 100
	maxCategoryIcon = 50
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category. Names need not be unique.
func (s *categoryService) CreateCategory(userID string, in CategoryInput) (*models.Category, error) {
	name, err := categoryName(in.Name)
	if err != nil {
		return nil, err
	}

	icon := strings.TrimSpace(in.Icon)
	if icon == "" {
		icon = models.DefaultCategoryIcon
	}
	if err := checkIcon(icon); err != nil {
		return nil, err
	}

	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = models.DefaultCategoryColor
	}
	if !validator.IsHexColor(color) {
		return nil, apperrors.Validation("color", "must be a hex color such as #3B82F6")
	}

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Icon:   icon,
		Color:  color,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	return category, nil
}

// GetUserCategories lists a user's categories ordered by name.
func (s *categoryService) GetUserCategories(userID string) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := s.db.Where("user_id = ?", userID).
		Order("name ASC, id ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return &category, nil
}

// UpdateCategory applies a partial update to an existing category.
func (s *categoryService) UpdateCategory(userID, categoryID string, in CategoryUpdate) (*models.Category, error) {
	updates := make(map[string]interface{})
	if in.Name != nil {
		name, err := categoryName(*in.Name)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if in.Icon != nil {
		icon := strings.TrimSpace(*in.Icon)
		if icon == "" {
			icon = models.DefaultCategoryIcon
		}
		if err := checkIcon(icon); err != nil {
			return nil, err
		}
		updates["icon"] = icon
	}
	if in.Color != nil {
		color := strings.TrimSpace(*in.Color)
		if !validator.IsHexColor(color) {
			return nil, apperrors.Validation("color", "must be a hex color such as #3B82F6")
		}
		updates["color"] = color
	}

	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Category{}).
			Where("id = ? AND user_id = ?", categoryID, userID).
			Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorage, err)
		}
		return s.GetCategoryByID(userID, categoryID)
	}

	return category, nil
}

// DeleteCategory deletes a category together with its expenses and budgets.
// Default categories cannot be deleted.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}
	if category.Protected() {
		return apperrors.ErrCategoryIsDefault
	}

	// Expenses and budgets go with it through ON DELETE CASCADE.
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).
		Delete(&models.Category{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return nil
}

func categoryName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", apperrors.Validation("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxCategoryName {
		return "", apperrors.Validation("name", "must be at most 100 characters")
	}
	return name, nil
}

func checkIcon(icon string) error {
	if utf8.RuneCountInString(icon) > maxCategoryIcon {
		return apperrors.Validation("icon", "must be at most 50 characters")
	}
	return nil
}

// ensureCategoryOwned returns ErrCategoryNotFound unless categoryID is one
// of userID's categories.
func ensureCategoryOwned(db *gorm.DB, userID, categoryID string) error {
	var count int64
	if err := db.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrStorage, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}
