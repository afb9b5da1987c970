package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/pagination"
	"fintrack/internal/services"
	"fintrack/internal/validator"
)

// IncomeHandler handles income-related requests
type IncomeHandler struct {
	incomeService services.IncomeServicer
	auditService  services.AuditServicer
	loc           *time.Location
}

// NewIncomeHandler creates a new IncomeHandler
func NewIncomeHandler(incomeService services.IncomeServicer, auditService services.AuditServicer, loc *time.Location) *IncomeHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &IncomeHandler{incomeService: incomeService, auditService: auditService, loc: loc}
}

// CreateIncomeRequest represents the request payload for recording income
type CreateIncomeRequest struct {
	Amount      validator.NumericString `json:"amount" swaggertype:"string" example:"2500.00"`
	Source      string                  `json:"source" binding:"required,max=100"`
	Description *string                 `json:"description"`
	Date        string                  `json:"date" binding:"required" example:"2024-03-01"`
}

// CreateIncome handles recording income
// @Summary     Create income
// @Description Record an income entry
// @Tags        income
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateIncomeRequest true "Income details"
// @Success     201 {object} models.Income "Income recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income [post]
func (h *IncomeHandler) CreateIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateIncomeRequest
	if err := bindJSON(c, &req); err != nil {
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

	income, err := h.incomeService.CreateIncome(userID, services.IncomeInput{
		Amount:      amount,
		Source:      req.Source,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_INCOME", "income", income.ID, c.ClientIP(),
		map[string]interface{}{"amount": income.Amount, "source": income.Source})

	c.JSON(http.StatusCreated, gin.H{"income": income})
}

// GetUserIncome handles listing the current user's income
// @Summary     Get user income
// @Description Get the most recent income entries of the authenticated user, newest first
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       limit query int false "Maximum number of entries (default 50, max 500)"
// @Success     200 {array}  models.Income "List of income entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income [get]
func (h *IncomeHandler) GetUserIncome(c *gin.Context) {
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

	income, err := h.incomeService.GetUserIncome(userID, page.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income": income})
}

// DeleteIncome handles deleting an income entry
// @Summary     Delete income
// @Description Permanently delete an income entry
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Income ID"
// @Success     200 {object} MessageResponse "Income deleted"
// @Failure     400 {object} ErrorResponse "Invalid income ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income/{id} [delete]
func (h *IncomeHandler) DeleteIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.incomeService.DeleteIncome(userID, incomeID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_INCOME", "income", incomeID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Income deleted successfully"})
}
