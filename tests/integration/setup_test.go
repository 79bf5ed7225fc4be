package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pitaka/internal/handlers"
	"pitaka/internal/logger"
	"pitaka/internal/middleware"
	"pitaka/internal/models"
	"pitaka/internal/notify"
	"pitaka/internal/services"
	"pitaka/internal/validator"
)

// testTasksKey is the X-API-Key the internal task routes expect in tests.
const testTasksKey = "test-tasks-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Institution{},
		&models.Account{},
		&models.Category{},
		&models.Transaction{},
		&models.Budget{},
		&models.CreditCard{},
		&models.CreditLine{},
		&models.Notification{},
		&models.RecurringTransaction{},
		&models.Statement{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	notifier := notify.NoopNotifier{}

	// Services
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

	// Handlers
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

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.ListAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PATCH("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.PATCH("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	institutions := protected.Group("/institutions")
	institutions.POST("", institutionHandler.CreateInstitution)
	institutions.GET("", institutionHandler.ListInstitutions)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.ListBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.GET("/:id/progress", budgetHandler.GetBudgetProgress)
	budgets.PATCH("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	creditCards := protected.Group("/credit-cards")
	creditCards.POST("", creditCardHandler.CreateCreditCard)
	creditCards.GET("", creditCardHandler.ListCreditCards)
	creditCards.GET("/:id", creditCardHandler.GetCreditCard)
	creditCards.PATCH("/:id", creditCardHandler.UpdateCreditCard)
	creditCards.DELETE("/:id", creditCardHandler.DeleteCreditCard)

	creditLines := protected.Group("/credit-lines")
	creditLines.POST("", creditLineHandler.CreateCreditLine)
	creditLines.GET("", creditLineHandler.ListCreditLines)
	creditLines.GET("/:id", creditLineHandler.GetCreditLine)
	creditLines.DELETE("/:id", creditLineHandler.DeleteCreditLine)

	notifications := protected.Group("/notifications")
	notifications.GET("", notificationHandler.ListNotifications)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)

	recurring := protected.Group("/recurring")
	recurring.POST("", recurringHandler.CreateRecurring)
	recurring.GET("", recurringHandler.ListRecurring)
	recurring.PATCH("/:id", recurringHandler.UpdateRecurring)
	recurring.DELETE("/:id", recurringHandler.DeleteRecurring)

	statements := protected.Group("/statements")
	statements.POST("", statementHandler.GenerateStatement)
	statements.GET("", statementHandler.ListStatements)
	statements.POST("/:id/pay", statementHandler.MarkPaid)

	tasks := v1.Group("/internal/tasks")
	tasks.Use(middleware.TasksAuthMiddleware(testTasksKey))
	tasks.POST("/recurring-sweep", tasksHandler.RunRecurringSweep)
	tasks.POST("/statement-alerts", tasksHandler.RunStatementAlerts)

	return &testApp{DB: db, Router: router}
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

// taskRequest calls an internal task endpoint with the given API key.
func (app *testApp) taskRequest(path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// createAccount creates an account via the API and returns its ID.
func (app *testApp) createAccount(t *testing.T, token, name, accountType string, openingBalance int64) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"type":%q,"opening_balance":%d}`, name, accountType, openingBalance)
	rec := app.request("POST", "/api/v1/accounts", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["account"].(map[string]interface{})["id"].(string)
}

// createCategory creates a category via the API and returns its ID.
func (app *testApp) createCategory(t *testing.T, token, name, categoryType string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"type":%q}`, name, categoryType)
	rec := app.request("POST", "/api/v1/categories", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["category"].(map[string]interface{})["id"].(string)
}
