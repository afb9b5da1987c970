package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// NormalizeEmail returns the identity form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpsertUser creates the user on first login and refreshes its profile on
// later logins. The normalized email is the user ID. Nil profile fields
// leave stored values untouched.
func (s *userService) UpsertUser(email string, firstName, lastName, profileImageURL *string) (*models.User, error) {
	id := NormalizeEmail(email)
	if id == "" {
		return nil, apperrors.Validation("email", "is required")
	}

	user := &models.User{
		ID:              id,
		Email:           &id,
		FirstName:       trimmed(firstName),
		LastName:        trimmed(lastName),
		ProfileImageURL: trimmed(profileImageURL),
	}

	update := map[string]interface{}{
		"email":      id,
		"updated_at": time.Now(),
	}
	if user.FirstName != nil {
		update["first_name"] = *user.FirstName
	}
	if user.LastName != nil {
		update["last_name"] = *user.LastName
	}
	if user.ProfileImageURL != nil {
		update["profile_image_url"] = *user.ProfileImageURL
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(update),
	}).Create(user).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	return s.GetUserByID(id)
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}
	return &user, nil
}

// trimmed returns nil for nil or blank input and the trimmed value otherwise.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
