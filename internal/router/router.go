// Package router assembles the HTTP stack: services, handlers, middleware
// and the /api/v1 routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"fintrack/internal/analytics"
	"fintrack/internal/config"
	_ "fintrack/internal/docs" // swagger docs
	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/repository"
	"fintrack/internal/services"
	"fintrack/internal/validator"
)

// New wires every service and handler over db and returns the gin engine.
func New(cfg *config.Config, db *gorm.DB) *gin.Engine {
	validator.Register()

	// Services
	userService := services.NewUserService(db)
	sessionService := services.NewSessionService(db, cfg.SessionTTL)
	categoryService := services.NewCategoryService(db)
	expenseService := services.NewExpenseService(db)
	incomeService := services.NewIncomeService(db)
	budgetService := services.NewBudgetService(db)
	exportService := services.NewExportService(expenseService, cfg.Location)
	auditService := services.NewAuditService(db)
	engine := analytics.NewEngine(repository.NewAnalyticsRepository(db), analytics.WithLocation(cfg.Location))

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, sessionService, auditService, cfg.SessionSecret, cfg.IsProduction())
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, exportService, auditService, cfg.Location)
	incomeHandler := handlers.NewIncomeHandler(incomeService, auditService, cfg.Location)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService, cfg.Location)
	analyticsHandler := handlers.NewAnalyticsHandler(engine)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.CORSOrigin))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/signup", authHandler.Signup)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.SessionAuth(cfg.SessionSecret, sessionService))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/auth/user", authHandler.GetUser)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetUserExpenses)
	expenses.GET("/export", expenseHandler.ExportExpenses)
	expenses.GET("/:id", expenseHandler.GetExpenseByID)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	income := protected.Group("/income")
	income.POST("", incomeHandler.CreateIncome)
	income.GET("", incomeHandler.GetUserIncome)
	income.DELETE("/:id", incomeHandler.DeleteIncome)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	stats := protected.Group("/analytics")
	stats.GET("/monthly-expenses", analyticsHandler.GetMonthlyExpenses)
	stats.GET("/totals", analyticsHandler.GetTotals)
	stats.GET("/budget-progress", analyticsHandler.GetBudgetProgress)
	stats.GET("/trend", analyticsHandler.GetTrend)

	return router
}
