package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/config"
	"fintrack/internal/logger"
	"fintrack/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

// testApp holds the full application stack backed by in-memory SQLite.
type testApp struct {
	Router *gin.Engine
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	cfg := &config.Config{
		Env:           "test",
		CORSOrigin:    "*",
		SessionSecret: "integration-secret",
		SessionTTL:    time.Hour,
		Location:      time.UTC,
	}
	return &testApp{Router: New(cfg, db)}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// login starts a session for email and returns its token.
func (app *testApp) login(t *testing.T, email string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/auth/login", fmt.Sprintf(`{"email":%q}`, email), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["token"].(string)
}

// create POSTs body and returns the id of the resource under key.
func (app *testApp) create(t *testing.T, path, key, body, token string) string {
	t.Helper()
	rec := app.request("POST", path, body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST %s failed: %d %s", path, rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)[key].(map[string]interface{})["id"].(string)
}

func (app *testApp) list(t *testing.T, path, key, token string) []interface{} {
	t.Helper()
	rec := app.request("GET", path, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s failed: %d %s", path, rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)[key].([]interface{})
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/v1/health", "", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if parseJSON(t, rec)["status"] != "ok" {
		t.Error("expected status ok")
	}
}

func TestAuthFlow(t *testing.T) {
	app := setupApp(t)

	t.Run("protected routes require a session", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/expenses", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("login upserts by normalized email", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/auth/signup", `{"email":"Alice@Example.com","first_name":"Alice"}`, "")
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		token := parseJSON(t, rec)["token"].(string)

		rec = app.request("GET", "/api/v1/auth/user", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["id"] != "alice@example.com" || user["first_name"] != "Alice" {
			t.Errorf("unexpected user %v", user)
		}

		again := app.login(t, "alice@example.com")
		rec = app.request("GET", "/api/v1/auth/user", "", again)
		if parseJSON(t, rec)["user"].(map[string]interface{})["first_name"] != "Alice" {
			t.Error("expected repeat login to keep the profile")
		}
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		token := app.login(t, "bob@example.com")

		rec := app.request("POST", "/api/v1/auth/logout", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		rec = app.request("GET", "/api/v1/auth/user", "", token)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 after logout, got %d", rec.Code)
		}
	})
}

func TestExpenseFlow_MonthlyBreakdown(t *testing.T) {
	app := setupApp(t)
	token := app.login(t, "alice@example.com")

	food := app.create(t, "/api/v1/categories", "category", `{"name":"Food"}`, token)
	transport := app.create(t, "/api/v1/categories", "category", `{"name":"Transport","color":"#F00"}`, token)

	for _, e := range []struct{ category, amount, date string }{
		{food, "12.50", "2024-03-05"},
		{food, "7.25", "2024-03-31T23:59:59Z"},
		{transport, "30", "2024-03-10"},
		{food, "100", "2024-04-01T00:00:00Z"},
	} {
		app.create(t, "/api/v1/expenses", "expense",
			fmt.Sprintf(`{"category_id":%q,"amount":%q,"description":"x","date":%q}`, e.category, e.amount, e.date), token)
	}

	rec := app.request("GET", "/api/v1/analytics/monthly-expenses?year=2024&month=3", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	categories := parseJSON(t, rec)["categories"].([]interface{})
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	first := categories[0].(map[string]interface{})
	second := categories[1].(map[string]interface{})
	if first["category_name"] != "Transport" || first["total"] != float64(30) {
		t.Errorf("expected Transport 30 first, got %v", first)
	}
	if second["category_name"] != "Food" || second["total"] != 19.75 {
		t.Errorf("expected Food 19.75 including the last second of the month, got %v", second)
	}

	rec = app.request("GET", "/api/v1/analytics/monthly-expenses?year=2024&month=13", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for month 13, got %d", rec.Code)
	}

	if expenses := app.list(t, "/api/v1/expenses?limit=2", "expenses", token); len(expenses) != 2 {
		t.Errorf("expected limit to apply, got %d", len(expenses))
	}
}

func TestTotalsAndBudgetFlow(t *testing.T) {
	app := setupApp(t)
	token := app.login(t, "carol@example.com")

	t.Run("empty month", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/analytics/totals", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := parseJSON(t, rec)
		if body["total_expenses"] != float64(0) || body["total_income"] != float64(0) || body["net_savings"] != float64(0) {
			t.Errorf("expected zero totals, got %v", body)
		}
	})

	groceries := app.create(t, "/api/v1/categories", "category", `{"name":"Groceries"}`, token)
	app.create(t, "/api/v1/budgets", "budget",
		fmt.Sprintf(`{"category_id":%q,"amount":"200","period":"weekly","start_date":%q}`, groceries, today()), token)
	app.create(t, "/api/v1/expenses", "expense",
		fmt.Sprintf(`{"category_id":%q,"amount":"170","description":"Market","date":%q}`, groceries, today()), token)
	app.create(t, "/api/v1/income", "income",
		fmt.Sprintf(`{"amount":"150","source":"Freelance","date":%q}`, today()), token)

	t.Run("totals", func(t *testing.T) {
		body := parseJSON(t, app.request("GET", "/api/v1/analytics/totals", "", token))
		if body["total_expenses"] != float64(170) || body["total_income"] != float64(150) || body["net_savings"] != float64(-20) {
			t.Errorf("unexpected totals %v", body)
		}
	})

	t.Run("budget progress", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/analytics/budget-progress", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := parseJSON(t, rec)
		if body["evaluated_period"] != "monthly" {
			t.Errorf("expected monthly, got %v", body["evaluated_period"])
		}
		budgets := body["budgets"].([]interface{})
		if len(budgets) != 1 {
			t.Fatalf("expected 1 budget, got %d", len(budgets))
		}
		item := budgets[0].(map[string]interface{})
		if item["spent"] != float64(170) || item["remaining"] != float64(30) {
			t.Errorf("unexpected spend %v", item)
		}
		if item["percentage"] != float64(85) || item["alert"] != true {
			t.Errorf("expected 85%% with alert, got %v", item)
		}
		if item["budget"].(map[string]interface{})["category"].(map[string]interface{})["name"] != "Groceries" {
			t.Error("expected budget category to be populated")
		}
	})

	t.Run("trend ends with the current month", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/analytics/trend?months=3", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		months := parseJSON(t, rec)["months"].([]interface{})
		if len(months) != 3 {
			t.Fatalf("expected 3 months, got %d", len(months))
		}
		last := months[2].(map[string]interface{})
		if last["total_expenses"] != float64(170) || last["month"] != float64(time.Now().UTC().Month()) {
			t.Errorf("unexpected last month %v", last)
		}
	})
}

func TestCategoryDeleteCascades(t *testing.T) {
	app := setupApp(t)
	token := app.login(t, "dave@example.com")

	category := app.create(t, "/api/v1/categories", "category", `{"name":"Hobbies"}`, token)
	expense := app.create(t, "/api/v1/expenses", "expense",
		fmt.Sprintf(`{"category_id":%q,"amount":"40","description":"Paint","date":%q}`, category, today()), token)
	app.create(t, "/api/v1/budgets", "budget",
		fmt.Sprintf(`{"category_id":%q,"amount":"100","start_date":%q}`, category, today()), token)

	rec := app.request("DELETE", "/api/v1/categories/"+category, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if rec := app.request("GET", "/api/v1/expenses/"+expense, "", token); rec.Code != http.StatusNotFound {
		t.Errorf("expected expense to be gone, got %d", rec.Code)
	}
	if budgets := app.list(t, "/api/v1/budgets", "budgets", token); len(budgets) != 0 {
		t.Errorf("expected budgets to be gone, got %d", len(budgets))
	}
	if expenses := app.list(t, "/api/v1/expenses", "expenses", token); len(expenses) != 0 {
		t.Errorf("expected no expenses, got %d", len(expenses))
	}
}

func TestOwnershipIsolation(t *testing.T) {
	app := setupApp(t)
	alice := app.login(t, "alice@example.com")
	mallory := app.login(t, "mallory@example.com")

	category := app.create(t, "/api/v1/categories", "category", `{"name":"Private"}`, alice)
	expense := app.create(t, "/api/v1/expenses", "expense",
		fmt.Sprintf(`{"category_id":%q,"amount":"9.99","description":"Book","date":%q}`, category, today()), alice)

	t.Run("reads look missing", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/expenses/"+expense, "", mallory)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		if expenses := app.list(t, "/api/v1/expenses", "expenses", mallory); len(expenses) != 0 {
			t.Errorf("expected no leaked expenses, got %d", len(expenses))
		}
	})

	t.Run("foreign category is rejected", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/expenses",
			fmt.Sprintf(`{"category_id":%q,"amount":"1","description":"x","date":%q}`, category, today()), mallory)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("deletes do not cross users", func(t *testing.T) {
		rec := app.request("DELETE", "/api/v1/categories/"+category, "", mallory)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		if rec := app.request("GET", "/api/v1/expenses/"+expense, "", alice); rec.Code != http.StatusOK {
			t.Errorf("expected expense to survive, got %d", rec.Code)
		}
	})
}

func TestExportFlow(t *testing.T) {
	app := setupApp(t)
	token := app.login(t, "erin@example.com")

	category := app.create(t, "/api/v1/categories", "category", `{"name":"Food"}`, token)
	app.create(t, "/api/v1/expenses", "expense",
		fmt.Sprintf(`{"category_id":%q,"amount":"4.50","description":"Coffee","date":"2024-05-02"}`, category), token)

	rec := app.request("GET", "/api/v1/expenses/export?year=2024&month=5", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "expenses-2024-05.csv") {
		t.Errorf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}
	if !strings.Contains(rec.Body.String(), "Coffee") {
		t.Errorf("expected the expense in the export, got %q", rec.Body.String())
	}
}
