package services

import (
	"time"

	"pitaka/internal/billing"
	"pitaka/internal/models"
	"pitaka/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// LedgerServicer computes derived balances from the immutable transaction
// log. Balances are never stored; every caller goes through here.
type LedgerServicer interface {
	CurrentBalance(account *models.Account) (int64, error)
	BalancesBulk(accounts []models.Account) (map[string]int64, error)
	MonthSpending(userID string, budget *models.Budget, ref time.Time) (int64, error)
	PeriodSpending(accountID string, start, end time.Time) (int64, error)
}

// AccountWithBalance is an account enriched with its derived balance.
type AccountWithBalance struct {
	models.Account
	CurrentBalance int64 `json:"current_balance"`
}

// AccountUpdateFields holds the optional fields for an account update.
type AccountUpdateFields struct {
	Name          *string
	InstitutionID *string
	IsActive      *bool
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID, name string, accountType models.AccountType, openingBalance int64, currency string, institutionID *string) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[AccountWithBalance], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	GetAccountWithBalance(userID, accountID string) (*AccountWithBalance, error)
	UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, icon, color string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// InstitutionServicer defines the contract for institution lookups.
type InstitutionServicer interface {
	CreateInstitution(userID, name, notes string) (*models.Institution, error)
	GetUserInstitutions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Institution], error)
	GetInstitutionByID(userID, institutionID string) (*models.Institution, error)
	UpdateInstitution(userID, institutionID, name, notes string) (*models.Institution, error)
	DeleteInstitution(userID, institutionID string) error
	// ResolveCardInstitution walks card -> credit line -> institution (or
	// card -> account -> institution for standalone cards) with explicit
	// lookups. Returns nil without error when nothing is linked.
	ResolveCardInstitution(card *models.CreditCard) (*models.Institution, error)
}

// TransactionInput carries the fields for a new ledger entry.
type TransactionInput struct {
	AccountID     string
	CategoryID    *string
	ToAccountID   *string
	Type          models.TransactionType
	SubType       *models.TransactionSubType
	Amount        int64
	Description   string
	Date          time.Time
	FeeAmount     *int64
	FeeCategoryID *string
	Source        models.TransactionSource
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
	AccountID  *string
	MinAmount  *int64
	MaxAmount  *int64
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// BillingSummary is the derived billing-cycle state for a credit card.
type BillingSummary struct {
	ClosedPeriod billing.Period `json:"closed_period"`
	OpenPeriod   billing.Period `json:"open_period"`
	DueDate      time.Time      `json:"due_date"`
	DaysUntilDue int            `json:"days_until_due"`
}

// CreditCardWithDerived is a card enriched with availability and cycle dates.
type CreditCardWithDerived struct {
	models.CreditCard
	AvailableCredit *int64          `json:"available_credit"`
	Billing         *BillingSummary `json:"billing,omitempty"`
}

// CreditCardInput carries the fields for creating or updating a card.
type CreditCardInput struct {
	AccountID         string
	LastFour          string
	CardName          string
	StatementDay      int
	DueDay            int
	CreditLimit       *int64
	CreditLineID      *string
	AvailableOverride *int64
}

// CreditCardServicer defines the contract for credit-card business logic.
type CreditCardServicer interface {
	CreateCreditCard(userID string, input CreditCardInput) (*models.CreditCard, error)
	GetUserCreditCards(userID string, page pagination.PageRequest) (*pagination.PageResponse[CreditCardWithDerived], error)
	GetCreditCardByID(userID, cardID string) (*models.CreditCard, error)
	GetCreditCardWithDerived(userID, cardID string, ref time.Time) (*CreditCardWithDerived, error)
	UpdateCreditCard(userID, cardID string, input CreditCardInput) (*models.CreditCard, error)
	DeleteCreditCard(userID, cardID string) error
	// AvailableCredit returns nil for cards without a standalone limit and
	// for cards that belong to a credit line (the line owns availability).
	AvailableCredit(card *models.CreditCard) (*int64, error)
	BillingSummary(card *models.CreditCard, ref time.Time) BillingSummary
}

// CreditLineWithDerived is a credit line enriched with pooled availability.
type CreditLineWithDerived struct {
	models.CreditLine
	AvailableCredit *int64 `json:"available_credit"`
}

// CreditLineServicer defines the contract for credit-line business logic.
type CreditLineServicer interface {
	CreateCreditLine(userID, name string, institutionID *string, totalLimit, availableOverride *int64) (*models.CreditLine, error)
	GetUserCreditLines(userID string, page pagination.PageRequest) (*pagination.PageResponse[CreditLineWithDerived], error)
	GetCreditLineByID(userID, lineID string) (*models.CreditLine, error)
	UpdateCreditLine(userID, lineID string, name *string, totalLimit, availableOverride *int64) (*models.CreditLine, error)
	// DeleteCreditLine detaches all cards from the line before deleting it.
	DeleteCreditLine(userID, lineID string) error
	AvailableCredit(line *models.CreditLine) (*int64, error)
}

// BudgetProgress contains spend vs budget data for the current month.
type BudgetProgress struct {
	BudgetID string              `json:"budget_id"`
	Budgeted int64               `json:"budgeted"`
	Spent    int64               `json:"spent"`
	Percent  float64             `json:"percent"`
	Status   models.BudgetStatus `json:"status"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, categoryID, accountID *string, amount int64, period models.BudgetPeriod, alertAt80, alertAt100 bool) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, amount *int64, alertAt80, alertAt100, isActive *bool) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetProgress(userID, budgetID string, ref time.Time) (*BudgetProgress, error)
}

// AlertServicer evaluates budget thresholds and emits idempotent notifications.
type AlertServicer interface {
	CheckBudgetAlerts(userID string, ref time.Time) error
}

// NotificationServicer defines the contract for reading notifications.
type NotificationServicer interface {
	GetUserNotifications(userID string, page pagination.PageRequest, unreadOnly bool) (*pagination.PageResponse[models.Notification], error)
	MarkRead(userID, notificationID string) (*models.Notification, error)
	MarkAllRead(userID string) (int64, error)
}

// RecurringInput carries the fields for creating a recurring rule.
type RecurringInput struct {
	AccountID   string
	CategoryID  *string
	Amount      int64
	Description string
	Type        models.TransactionType
	SubType     *models.TransactionSubType
	Frequency   models.RecurrenceFrequency
	StartDate   time.Time
	EndDate     *time.Time
}

// RecurringServicer defines the contract for recurring-transaction rules.
type RecurringServicer interface {
	CreateRecurring(userID string, input RecurringInput) (*models.RecurringTransaction, error)
	GetUserRecurring(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.RecurringTransaction], error)
	GetRecurringByID(userID, recurringID string) (*models.RecurringTransaction, error)
	UpdateRecurring(userID, recurringID string, amount *int64, endDate *time.Time, isActive *bool) (*models.RecurringTransaction, error)
	DeleteRecurring(userID, recurringID string) error
	// Sweep materializes at most one transaction per due rule and advances
	// each rule's cursor. Returns the number of rules processed.
	Sweep(ref time.Time) (int, error)
}

// StatementServicer defines the contract for credit-card statements.
type StatementServicer interface {
	GenerateStatement(userID, cardID string, ref time.Time) (*models.Statement, error)
	GetUserStatements(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Statement], error)
	GetStatementByID(userID, statementID string) (*models.Statement, error)
	MarkPaid(userID, statementID string) (*models.Statement, error)
	// CheckDueStatements notifies owners of unpaid statements due in 7 or 1
	// days. Returns the number of notifications created.
	CheckDueStatements(ref time.Time) (int, error)
}
