package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"pitaka/internal/config"
	"pitaka/internal/database"
	"pitaka/internal/handlers"
	"pitaka/internal/logger"
	"pitaka/internal/middleware"
	"pitaka/internal/notify"
	"pitaka/internal/services"
	"pitaka/internal/validator"
)

// @title           Pitaka API
// @version         1.0
// @description     Pitaka derives balances, credit availability, billing cycles, and budget alerts from an immutable transaction log.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey TasksKeyAuth
// @in header
// @name X-API-Key

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Outbound notifications are optional; without a webhook the database
	// row is still the durable record.
	var notifier notify.Notifier = notify.NoopNotifier{}
	if appConfig.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(appConfig.WebhookURL)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	ledgerService := services.NewLedgerService(db)
	institutionService := services.NewInstitutionService(db)
	accountService := services.NewAccountService(db, ledgerService)
	categoryService := services.NewCategoryService(db)
	alertService := services.NewAlertService(db, ledgerService, notifier)
	transactionService := services.NewTransactionService(db, alertService)
	budgetService := services.NewBudgetService(db, ledgerService)
	creditCardService := services.NewCreditCardService(db, ledgerService)
	creditLineService := services.NewCreditLineService(db, ledgerService)
	notificationService := services.NewNotificationService(db)
	recurringService := services.NewRecurringService(db, notifier)
	statementService := services.NewStatementService(db, ledgerService, creditCardService, notifier)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	accountHandler := handlers.NewAccountHandler(accountService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	institutionHandler := handlers.NewInstitutionHandler(institutionService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	creditCardHandler := handlers.NewCreditCardHandler(creditCardService, institutionService)
	creditLineHandler := handlers.NewCreditLineHandler(creditLineService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	recurringHandler := handlers.NewRecurringHandler(recurringService)
	statementHandler := handlers.NewStatementHandler(statementService)
	tasksHandler := handlers.NewTasksHandler(recurringService, statementService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Account routes
	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.ListAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PATCH("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.PATCH("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Institution routes
	institutions := protected.Group("/institutions")
	institutions.POST("", institutionHandler.CreateInstitution)
	institutions.GET("", institutionHandler.ListInstitutions)
	institutions.GET("/:id", institutionHandler.GetInstitution)
	institutions.PATCH("/:id", institutionHandler.UpdateInstitution)
	institutions.DELETE("/:id", institutionHandler.DeleteInstitution)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.ListBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)
	budgets.PATCH("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Credit card routes
	creditCards := protected.Group("/credit-cards")
	creditCards.POST("", creditCardHandler.CreateCreditCard)
	creditCards.GET("", creditCardHandler.ListCreditCards)
	creditCards.GET("/:id", creditCardHandler.GetCreditCard)
	creditCards.PATCH("/:id", creditCardHandler.UpdateCreditCard)
	creditCards.DELETE("/:id", creditCardHandler.DeleteCreditCard)

	// Credit line routes
	creditLines := protected.Group("/credit-lines")
	creditLines.POST("", creditLineHandler.CreateCreditLine)
	creditLines.GET("", creditLineHandler.ListCreditLines)
	creditLines.GET("/:id", creditLineHandler.GetCreditLine)
	creditLines.PATCH("/:id", creditLineHandler.UpdateCreditLine)
	creditLines.DELETE("/:id", creditLineHandler.DeleteCreditLine)

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.ListNotifications)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)

	// Recurring rule routes
	recurring := protected.Group("/recurring")
	recurring.POST("", recurringHandler.CreateRecurring)
	recurring.GET("", recurringHandler.ListRecurring)
	recurring.GET("/:id", recurringHandler.GetRecurring)
	recurring.PATCH("/:id", recurringHandler.UpdateRecurring)
	recurring.DELETE("/:id", recurringHandler.DeleteRecurring)

	// Statement routes
	statements := protected.Group("/statements")
	statements.POST("", statementHandler.GenerateStatement)
	statements.GET("", statementHandler.ListStatements)
	statements.GET("/:id", statementHandler.GetStatement)
	statements.POST("/:id/pay", statementHandler.MarkPaid)

	// Internal task routes for the scheduler; keyed, not user-authed
	tasks := v1.Group("/internal/tasks")
	tasks.Use(middleware.TasksAuthMiddleware(appConfig.TasksAPIKey))
	tasks.POST("/recurring-sweep", tasksHandler.RunRecurringSweep)
	tasks.POST("/statement-alerts", tasksHandler.RunStatementAlerts)

	log.Infof("Starting Pitaka backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
