package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/analytics"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
	"fintrack/internal/validator"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExpenseHandler handles expense-related requests
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	exportService  services.ExportServicer
	auditService   services.AuditServicer
	loc            *time.Location
	now            func() time.Time
}

// NewExpenseHandler creates a new ExpenseHandler. Zone-less dates in
// requests are read in loc.
func NewExpenseHandler(
	expenseService services.ExpenseServicer,
	exportService services.ExportServicer,
	auditService services.AuditServicer,
	loc *time.Location,
) *ExpenseHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ExpenseHandler{
		expenseService: expenseService,
		exportService:  exportService,
		auditService:   auditService,
		loc:            loc,
		now:            time.Now,
	}
}

// CreateExpenseRequest represents the request payload for creating an expense.
// Amount accepts a JSON number or a numeric string such as "12.50".
type CreateExpenseRequest struct {
	CategoryID    string                  `json:"category_id" binding:"required"`
	Amount        validator.NumericString `json:"amount" swaggertype:"string" example:"12.50"`
	Description   string                  `json:"description" binding:"required"`
	PaymentMethod models.PaymentMethod    `json:"payment_method" binding:"omitempty,payment_method"`
	Date          string                  `json:"date" binding:"required" example:"2024-03-05"`
}

// UpdateExpenseRequest represents the request payload for updating an expense.
type UpdateExpenseRequest struct {
	CategoryID    *string                  `json:"category_id"`
	Amount        *validator.NumericString `json:"amount" swaggertype:"string"`
	Description   *string                  `json:"description"`
	PaymentMethod *models.PaymentMethod    `json:"payment_method" binding:"omitempty,payment_method"`
	Date          *string                  `json:"date"`
}

// CreateExpense handles the creation of a new expense
// @Summary     Create expense
// @Description Record an expense in one of the user's categories
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parseBodyID("category_id", req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	amount, err := validator.ParseAmount("amount", req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	date, err := validator.ParseDate("date", req.Date, h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(userID, services.ExpenseInput{
		CategoryID:    categoryID,
		Amount:        amount,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		Date:          date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"amount": expense.Amount, "category_id": expense.CategoryID})

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// GetUserExpenses handles getting the current user's expenses
// @Summary     Get user expenses
// @Description Get the most recent expenses of the authenticated user with their categories, newest first
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       limit query int false "Maximum number of expenses (default 50, max 500)"
// @Success     200 {array}  models.Expense "List of expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetUserExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.LimitRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, validator.Translate(err))
		return
	}
	page.Defaults()

	expenses, err := h.expenseService.GetUserExpenses(userID, page.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// GetExpenseByID handles getting a specific expense
// @Summary     Get expense by ID
// @Description Get a specific expense by ID
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense details"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpenseByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense handles updating an expense
// @Summary     Update expense
// @Description Update an existing expense; omitted fields are unchanged
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Expense ID"
// @Param       request body UpdateExpenseRequest true "Updated expense details"
// @Success     200 {object} models.Expense "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	categoryID, err := parseOptionalBodyID("category_id", req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	amount, err := validator.ParseOptionalAmount("amount", req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	date, err := validator.ParseOptionalDate("date", req.Date, h.loc)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(userID, expenseID, services.ExpenseUpdate{
		CategoryID:    categoryID,
		Amount:        amount,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		Date:          date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_EXPENSE", "expense", expenseID, c.ClientIP(),
		map[string]interface{}{"amount": expense.Amount, "date": expense.Date})

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense handles deleting an expense
// @Summary     Delete expense
// @Description Permanently delete an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_EXPENSE", "expense", expenseID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Expense deleted successfully"})
}

// ExportExpenses handles downloading a month of expenses
// @Summary     Export expenses
// @Description Download one month of expenses as CSV or XLSX, defaulting to the current month
// @Tags        expenses
// @Produce     text/csv
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       year   query int    false "Year (default current)"
// @Param       month  query int    false "Month 1-12 (default current)"
// @Param       format query string false "csv or xlsx (default csv)"
// @Success     200 {file}   file "Expense export"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/export [get]
func (h *ExpenseHandler) ExportExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	currentYear, currentMonth := analytics.CurrentMonth(h.now(), h.loc)
	year, month, err := parseYearMonth(c, currentYear, int(currentMonth))
	if err != nil {
		respondWithError(c, err)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
	)
	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		contentType = csvContentType
		err = h.exportService.ExpensesCSV(&buf, userID, year, month)
	case "xlsx":
		contentType = xlsxContentType
		err = h.exportService.ExpensesXLSX(&buf, userID, year, month)
	default:
		respondWithError(c, apperrors.Validation("format", "must be one of csv, xlsx"))
		return
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("expenses-%04d-%02d.%s", year, month, format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
