package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/analytics"
	"fintrack/internal/models"
	"fintrack/internal/services"
	"fintrack/internal/validator"
)

const (
	testUserID = "alice@example.com"
	testID     = "0190a6c4-7a51-7cc0-8a4e-2f1e1e5e8d11"
	otherID    = "0190a6c4-7a51-7cc0-8a4e-2f1e1e5e8d22"
)

// --- mock services ---

type mockUserService struct {
	upsertUserFn  func(email string, firstName, lastName, profileImageURL *string) (*models.User, error)
	getUserByIDFn func(id string) (*models.User, error)
}

func (m *mockUserService) UpsertUser(email string, firstName, lastName, profileImageURL *string) (*models.User, error) {
	if m.upsertUserFn != nil {
		return m.upsertUserFn(email, firstName, lastName, profileImageURL)
	}
	return &models.User{ID: email}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{ID: id}, nil
}

type mockSessionService struct {
	createSessionFn func(userID string) (*models.Session, error)
	getSessionFn    func(sessionID string) (*models.Session, error)
	deleteSessionFn func(sessionID string) error
}

func (m *mockSessionService) CreateSession(userID string) (*models.Session, error) {
	if m.createSessionFn != nil {
		return m.createSessionFn(userID)
	}
	return &models.Session{Base: models.Base{ID: testID}, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (m *mockSessionService) GetSession(sessionID string) (*models.Session, error) {
	if m.getSessionFn != nil {
		return m.getSessionFn(sessionID)
	}
	return &models.Session{Base: models.Base{ID: sessionID}, UserID: testUserID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (m *mockSessionService) DeleteSession(sessionID string) error {
	if m.deleteSessionFn != nil {
		return m.deleteSessionFn(sessionID)
	}
	return nil
}

func (m *mockSessionService) DeleteExpiredSessions() (int64, error) {
	return 0, nil
}

type mockCategoryService struct {
	createCategoryFn    func(userID string, in services.CategoryInput) (*models.Category, error)
	getUserCategoriesFn func(userID string) ([]models.Category, error)
	getCategoryByIDFn   func(userID, categoryID string) (*models.Category, error)
	updateCategoryFn    func(userID, categoryID string, in services.CategoryUpdate) (*models.Category, error)
	deleteCategoryFn    func(userID, categoryID string) error
}

func (m *mockCategoryService) CreateCategory(userID string, in services.CategoryInput) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, in)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetUserCategories(userID string) ([]models.Category, error) {
	if m.getUserCategoriesFn != nil {
		return m.getUserCategoriesFn(userID)
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(userID, categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(userID, categoryID string, in services.CategoryUpdate) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, categoryID, in)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

type mockExpenseService struct {
	createExpenseFn      func(userID string, in services.ExpenseInput) (*models.Expense, error)
	getUserExpensesFn    func(userID string, limit int) ([]models.Expense, error)
	getExpensesInRangeFn func(userID string, start, end time.Time) ([]models.Expense, error)
	getExpenseByIDFn     func(userID, expenseID string) (*models.Expense, error)
	updateExpenseFn      func(userID, expenseID string, in services.ExpenseUpdate) (*models.Expense, error)
	deleteExpenseFn      func(userID, expenseID string) error
}

func (m *mockExpenseService) CreateExpense(userID string, in services.ExpenseInput) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(userID, in)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) GetUserExpenses(userID string, limit int) ([]models.Expense, error) {
	if m.getUserExpensesFn != nil {
		return m.getUserExpensesFn(userID, limit)
	}
	return []models.Expense{}, nil
}

func (m *mockExpenseService) GetExpensesInRange(userID string, start, end time.Time) ([]models.Expense, error) {
	if m.getExpensesInRangeFn != nil {
		return m.getExpensesInRangeFn(userID, start, end)
	}
	return []models.Expense{}, nil
}

func (m *mockExpenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(userID, expenseID)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) UpdateExpense(userID, expenseID string, in services.ExpenseUpdate) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(userID, expenseID, in)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(userID, expenseID string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(userID, expenseID)
	}
	return nil
}

type mockExportService struct {
	expensesCSVFn  func(w io.Writer, userID string, year, month int) error
	expensesXLSXFn func(w io.Writer, userID string, year, month int) error
}

func (m *mockExportService) ExpensesCSV(w io.Writer, userID string, year, month int) error {
	if m.expensesCSVFn != nil {
		return m.expensesCSVFn(w, userID, year, month)
	}
	return nil
}

func (m *mockExportService) ExpensesXLSX(w io.Writer, userID string, year, month int) error {
	if m.expensesXLSXFn != nil {
		return m.expensesXLSXFn(w, userID, year, month)
	}
	return nil
}

type mockIncomeService struct {
	createIncomeFn  func(userID string, in services.IncomeInput) (*models.Income, error)
	getUserIncomeFn func(userID string, limit int) ([]models.Income, error)
	deleteIncomeFn  func(userID, incomeID string) error
}

func (m *mockIncomeService) CreateIncome(userID string, in services.IncomeInput) (*models.Income, error) {
	if m.createIncomeFn != nil {
		return m.createIncomeFn(userID, in)
	}
	return &models.Income{}, nil
}

func (m *mockIncomeService) GetUserIncome(userID string, limit int) ([]models.Income, error) {
	if m.getUserIncomeFn != nil {
		return m.getUserIncomeFn(userID, limit)
	}
	return []models.Income{}, nil
}

func (m *mockIncomeService) DeleteIncome(userID, incomeID string) error {
	if m.deleteIncomeFn != nil {
		return m.deleteIncomeFn(userID, incomeID)
	}
	return nil
}

type mockBudgetService struct {
	createBudgetFn   func(userID string, in services.BudgetInput) (*models.Budget, error)
	getUserBudgetsFn func(userID string) ([]models.Budget, error)
	getBudgetByIDFn  func(userID, budgetID string) (*models.Budget, error)
	updateBudgetFn   func(userID, budgetID string, in services.BudgetUpdate) (*models.Budget, error)
	deleteBudgetFn   func(userID, budgetID string) error
}

func (m *mockBudgetService) CreateBudget(userID string, in services.BudgetInput) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, in)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetUserBudgets(userID string) ([]models.Budget, error) {
	if m.getUserBudgetsFn != nil {
		return m.getUserBudgetsFn(userID)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	if m.getBudgetByIDFn != nil {
		return m.getBudgetByIDFn(userID, budgetID)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) UpdateBudget(userID, budgetID string, in services.BudgetUpdate) (*models.Budget, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(userID, budgetID, in)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

type mockAnalyticsService struct {
	year  int
	month time.Month

	monthlyBreakdownFn func(ctx context.Context, userID string, year, month int) ([]analytics.CategoryTotal, error)
	totalsFn           func(ctx context.Context, userID string) (analytics.Totals, error)
	budgetProgressFn   func(ctx context.Context, userID string) ([]analytics.BudgetProgress, error)
	monthlyTrendFn     func(ctx context.Context, userID string, months int) ([]analytics.MonthTotals, error)
}

func (m *mockAnalyticsService) MonthlyBreakdown(ctx context.Context, userID string, year, month int) ([]analytics.CategoryTotal, error) {
	if m.monthlyBreakdownFn != nil {
		return m.monthlyBreakdownFn(ctx, userID, year, month)
	}
	return nil, nil
}

func (m *mockAnalyticsService) TotalsForCurrentMonth(ctx context.Context, userID string) (analytics.Totals, error) {
	if m.totalsFn != nil {
		return m.totalsFn(ctx, userID)
	}
	return analytics.Totals{}, nil
}

func (m *mockAnalyticsService) BudgetProgress(ctx context.Context, userID string) ([]analytics.BudgetProgress, error) {
	if m.budgetProgressFn != nil {
		return m.budgetProgressFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockAnalyticsService) MonthlyTrend(ctx context.Context, userID string, months int) ([]analytics.MonthTotals, error) {
	if m.monthlyTrendFn != nil {
		return m.monthlyTrendFn(ctx, userID, months)
	}
	return nil, nil
}

func (m *mockAnalyticsService) CurrentMonth() (int, time.Month) {
	return m.year, m.month
}

type auditEntry struct {
	userID, action, resourceType, resourceID string
}

type mockAuditService struct {
	entries []auditEntry
}

func (m *mockAuditService) Log(userID, action, resourceType, resourceID, _ string, _ map[string]interface{}) {
	m.entries = append(m.entries, auditEntry{userID, action, resourceType, resourceID})
}

var (
	_ services.UserServicer      = (*mockUserService)(nil)
	_ services.SessionServicer   = (*mockSessionService)(nil)
	_ services.CategoryServicer  = (*mockCategoryService)(nil)
	_ services.ExpenseServicer   = (*mockExpenseService)(nil)
	_ services.ExportServicer    = (*mockExportService)(nil)
	_ services.IncomeServicer    = (*mockIncomeService)(nil)
	_ services.BudgetServicer    = (*mockBudgetService)(nil)
	_ services.AnalyticsServicer = (*mockAnalyticsService)(nil)
	_ services.AuditServicer     = (*mockAuditService)(nil)
)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Set("sessionID", testID)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func assertErrorField(t *testing.T, result map[string]interface{}, field string) {
	t.Helper()
	assertErrorCode(t, result, "VALIDATION_ERROR")
	errObj := result["error"].(map[string]interface{})
	if errObj["field"] != field {
		t.Errorf("expected error field %q, got %v", field, errObj["field"])
	}
}
