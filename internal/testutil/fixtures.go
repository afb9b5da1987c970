package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fintrack/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a unique email identity.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user whose ID and email are email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{ID: email, Email: &email}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, userID, fmt.Sprintf("Test Category %d", nextID()))
}

// CreateTestCategoryNamed creates a category with the given name.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, userID, name string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Icon:   models.DefaultCategoryIcon,
		Color:  models.DefaultCategoryColor,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestExpense creates a cash expense. amount is a decimal literal.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, categoryID, amount string, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:        userID,
		CategoryID:    categoryID,
		Amount:        decimal.RequireFromString(amount),
		Description:   fmt.Sprintf("Test Expense %d", nextID()),
		PaymentMethod: models.PaymentMethodCash,
		Date:          date.UTC(),
	}
	if err := db.Omit(clause.Associations).Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestIncome creates an income record. amount is a decimal literal.
func CreateTestIncome(t *testing.T, db *gorm.DB, userID, amount string, date time.Time) *models.Income {
	t.Helper()

	income := &models.Income{
		UserID: userID,
		Amount: decimal.RequireFromString(amount),
		Source: fmt.Sprintf("Test Source %d", nextID()),
		Date:   date.UTC(),
	}
	if err := db.Omit(clause.Associations).Create(income).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return income
}

// CreateTestBudget creates a monthly budget for the given category.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID, amount string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     decimal.RequireFromString(amount),
		Period:     models.BudgetPeriodMonthly,
		StartDate:  time.Now().UTC().Truncate(24 * time.Hour),
	}
	if err := db.Omit(clause.Associations).Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
