package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/analytics"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// evaluatedPeriod is the window every budget is measured against,
// whatever its stored period.
const evaluatedPeriod = "monthly"

// AnalyticsHandler serves the dashboard aggregates.
type AnalyticsHandler struct {
	analytics services.AnalyticsServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analytics services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// CategoryTotalResponse is one category's spending in a month.
type CategoryTotalResponse struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Total        float64 `json:"total"`
}

// MonthlyExpensesResponse is the category breakdown of a month.
type MonthlyExpensesResponse struct {
	Year       int                     `json:"year"`
	Month      int                     `json:"month"`
	Categories []CategoryTotalResponse `json:"categories"`
}

// TotalsResponse summarizes a month.
type TotalsResponse struct {
	TotalExpenses float64 `json:"total_expenses"`
	TotalIncome   float64 `json:"total_income"`
	NetSavings    float64 `json:"net_savings"`
}

// BudgetProgressItem is a budget measured against the current month.
// Percentage is null when the budget amount is zero.
type BudgetProgressItem struct {
	Budget     models.Budget `json:"budget"`
	Spent      float64       `json:"spent"`
	Remaining  float64       `json:"remaining"`
	Percentage *float64      `json:"percentage"`
	Alert      bool          `json:"alert"`
}

// BudgetProgressResponse lists the progress of every budget.
type BudgetProgressResponse struct {
	EvaluatedPeriod string               `json:"evaluated_period"`
	Budgets         []BudgetProgressItem `json:"budgets"`
}

// TrendMonthResponse is one month of the trend.
type TrendMonthResponse struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	TotalsResponse
}

// TrendResponse lists monthly totals, oldest first.
type TrendResponse struct {
	Months []TrendMonthResponse `json:"months"`
}

// GetMonthlyExpenses handles the per-category breakdown of a month.
// @Summary     Monthly expenses by category
// @Description Sum the user's expenses per category for a calendar month, largest first
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       year  query int false "Year (default current)"
// @Param       month query int false "Month 1-12 (default current)"
// @Success     200 {object} MonthlyExpensesResponse "Category totals"
// @Failure     400 {object} ErrorResponse "Invalid year or month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/monthly-expenses [get]
func (h *AnalyticsHandler) GetMonthlyExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	currentYear, currentMonth := h.analytics.CurrentMonth()
	year, month, err := parseYearMonth(c, currentYear, int(currentMonth))
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.analytics.MonthlyBreakdown(c.Request.Context(), userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories := make([]CategoryTotalResponse, 0, len(totals))
	for _, t := range totals {
		categories = append(categories, CategoryTotalResponse{
			CategoryID:   t.CategoryID,
			CategoryName: t.CategoryName,
			Total:        money(t.Total),
		})
	}

	c.JSON(http.StatusOK, MonthlyExpensesResponse{Year: year, Month: month, Categories: categories})
}

// GetTotals handles the current month's totals.
// @Summary     Current month totals
// @Description Total expenses, total income and net savings for the current month
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} TotalsResponse "Month totals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/totals [get]
func (h *AnalyticsHandler) GetTotals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.analytics.TotalsForCurrentMonth(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, totalsResponse(totals))
}

// GetBudgetProgress handles budget-vs-actual for the current month.
// @Summary     Budget progress
// @Description Spending against every budget in the current calendar month
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} BudgetProgressResponse "Budget progress"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/budget-progress [get]
func (h *AnalyticsHandler) GetBudgetProgress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := h.analytics.BudgetProgress(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	items := make([]BudgetProgressItem, 0, len(progress))
	for _, p := range progress {
		item := BudgetProgressItem{
			Budget:    p.Budget,
			Spent:     money(p.Spent),
			Remaining: money(p.Remaining),
			Alert:     p.Alert,
		}
		if p.Percentage != nil {
			pct := p.Percentage.Round(2).InexactFloat64()
			item.Percentage = &pct
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, BudgetProgressResponse{EvaluatedPeriod: evaluatedPeriod, Budgets: items})
}

// GetTrend handles the monthly totals trend.
// @Summary     Monthly trend
// @Description Totals for the last N calendar months including the current one, oldest first
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       months query int false "Number of months, 1-24 (default 6)"
// @Success     200 {object} TrendResponse "Monthly totals"
// @Failure     400 {object} ErrorResponse "Invalid months"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/trend [get]
func (h *AnalyticsHandler) GetTrend(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	months, err := queryInt(c, "months", analytics.DefaultTrendMonths)
	if err != nil {
		respondWithError(c, err)
		return
	}

	trend, err := h.analytics.MonthlyTrend(c.Request.Context(), userID, months)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := TrendResponse{Months: make([]TrendMonthResponse, 0, len(trend))}
	for _, m := range trend {
		resp.Months = append(resp.Months, TrendMonthResponse{
			Year:           m.Year,
			Month:          int(m.Month),
			TotalsResponse: totalsResponse(m.Totals),
		})
	}

	c.JSON(http.StatusOK, resp)
}

func totalsResponse(t analytics.Totals) TotalsResponse {
	return TotalsResponse{
		TotalExpenses: money(t.TotalExpenses),
		TotalIncome:   money(t.TotalIncome),
		NetSavings:    money(t.NetSavings),
	}
}

// money converts an exact amount to its display value.
func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// parseYearMonth reads the optional year and month query parameters.
// Range checks are left to the callee.
func parseYearMonth(c *gin.Context, defaultYear, defaultMonth int) (int, int, error) {
	year, err := queryInt(c, "year", defaultYear)
	if err != nil {
		return 0, 0, err
	}
	month, err := queryInt(c, "month", defaultMonth)
	if err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

func queryInt(c *gin.Context, key string, defaultValue int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation(key, "must be an integer")
	}
	return v, nil
}
