package services

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/analytics"
	"fintrack/internal/models"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	UpsertUser(email string, firstName, lastName, profileImageURL *string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
}

// SessionServicer stores login sessions. It is the only session state the
// HTTP boundary consults.
type SessionServicer interface {
	CreateSession(userID string) (*models.Session, error)
	GetSession(sessionID string) (*models.Session, error)
	DeleteSession(sessionID string) error
	DeleteExpiredSessions() (int64, error)
}

// CategoryInput holds the fields of a new category. Empty icon and color
// select the defaults.
type CategoryInput struct {
	Name  string
	Icon  string
	Color string
}

// CategoryUpdate holds a partial category update. Nil fields are unchanged.
type CategoryUpdate struct {
	Name  *string
	Icon  *string
	Color *string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID string, in CategoryInput) (*models.Category, error)
	GetUserCategories(userID string) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, in CategoryUpdate) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// ExpenseInput holds the normalized fields of a new expense.
type ExpenseInput struct {
	CategoryID    string
	Amount        decimal.Decimal
	Description   string
	PaymentMethod models.PaymentMethod
	Date          time.Time
}

// ExpenseUpdate holds a partial expense update. Nil fields are unchanged.
type ExpenseUpdate struct {
	CategoryID    *string
	Amount        *decimal.Decimal
	Description   *string
	PaymentMethod *models.PaymentMethod
	Date          *time.Time
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(userID string, in ExpenseInput) (*models.Expense, error)
	GetUserExpenses(userID string, limit int) ([]models.Expense, error)
	GetExpensesInRange(userID string, start, end time.Time) ([]models.Expense, error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	UpdateExpense(userID, expenseID string, in ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
}

// IncomeInput holds the normalized fields of a new income record.
type IncomeInput struct {
	Amount      decimal.Decimal
	Source      string
	Description *string
	Date        time.Time
}

// IncomeServicer defines the contract for income-related business logic.
type IncomeServicer interface {
	CreateIncome(userID string, in IncomeInput) (*models.Income, error)
	GetUserIncome(userID string, limit int) ([]models.Income, error)
	DeleteIncome(userID, incomeID string) error
}

// BudgetInput holds the normalized fields of a new budget.
type BudgetInput struct {
	CategoryID string
	Amount     decimal.Decimal
	Period     models.BudgetPeriod
	StartDate  time.Time
}

// BudgetUpdate holds a partial budget update. Nil fields are unchanged.
type BudgetUpdate struct {
	CategoryID *string
	Amount     *decimal.Decimal
	Period     *models.BudgetPeriod
	StartDate  *time.Time
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, in BudgetInput) (*models.Budget, error)
	GetUserBudgets(userID string) ([]models.Budget, error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, in BudgetUpdate) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
}

// AnalyticsServicer is the aggregation surface the HTTP layer consumes.
// *analytics.Engine implements it.
type AnalyticsServicer interface {
	MonthlyBreakdown(ctx context.Context, userID string, year, month int) ([]analytics.CategoryTotal, error)
	TotalsForCurrentMonth(ctx context.Context, userID string) (analytics.Totals, error)
	BudgetProgress(ctx context.Context, userID string) ([]analytics.BudgetProgress, error)
	MonthlyTrend(ctx context.Context, userID string, months int) ([]analytics.MonthTotals, error)
	CurrentMonth() (int, time.Month)
}

var _ AnalyticsServicer = (*analytics.Engine)(nil)

// ExportServicer writes a month of expenses as a downloadable file.
type ExportServicer interface {
	ExpensesCSV(w io.Writer, userID string, year, month int) error
	ExpensesXLSX(w io.Writer, userID string, year, month int) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
