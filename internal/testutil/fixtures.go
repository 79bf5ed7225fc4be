package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"pitaka/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates a wallet account with zero opening balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()
	return CreateTestAccountWithOpening(t, db, userID, 0)
}

// CreateTestAccountWithOpening creates a wallet account with the given
// opening balance in centavos.
func CreateTestAccountWithOpening(t *testing.T, db *gorm.DB, userID string, opening int64) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:         userID,
		Name:           fmt.Sprintf("Test Account %d", nextID()),
		Type:           models.AccountTypeWallet,
		OpeningBalance: opening,
		Currency:       "PHP",
		IsActive:       true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCreditCardAccount creates a credit_card account with the given
// opening balance (negative when the card carries debt).
func CreateTestCreditCardAccount(t *testing.T, db *gorm.DB, userID string, opening int64) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:         userID,
		Name:           fmt.Sprintf("Test Card Account %d", nextID()),
		Type:           models.AccountTypeCreditCard,
		OpeningBalance: opening,
		Currency:       "PHP",
		IsActive:       true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test credit card account: %v", err)
	}
	return account
}

// CreateTestCategory creates an expense category.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return CreateTestCategoryWithType(t, db, userID, models.CategoryTypeExpense)
}

// CreateTestCategoryWithType creates a category of the given type.
func CreateTestCategoryWithType(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestExpense creates an expense transaction against the account.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, accountID string, categoryID *string, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		UserID:     userID,
		AccountID:  accountID,
		CategoryID: categoryID,
		Type:       models.TransactionTypeExpense,
		Amount:     amount,
		Date:       date,
		Source:     models.SourceManual,
		CreatedBy:  userID,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return transaction
}

// CreateTestIncome creates an income transaction for the account.
func CreateTestIncome(t *testing.T, db *gorm.DB, userID, accountID string, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		UserID:    userID,
		AccountID: accountID,
		Type:      models.TransactionTypeIncome,
		Amount:    amount,
		Date:      date,
		Source:    models.SourceManual,
		CreatedBy: userID,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return transaction
}

// CreateTestTransfer creates a transfer between two accounts, with an
// optional fee charged to the source account.
func CreateTestTransfer(t *testing.T, db *gorm.DB, userID, fromID, toID string, amount int64, fee *int64, date time.Time) *models.Transaction {
	t.Helper()

	subType := models.SubTypeOwnAccount
	transaction := &models.Transaction{
		UserID:      userID,
		AccountID:   fromID,
		ToAccountID: &toID,
		Type:        models.TransactionTypeTransfer,
		SubType:     &subType,
		Amount:      amount,
		FeeAmount:   fee,
		Date:        date,
		Source:      models.SourceManual,
		CreatedBy:   userID,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transfer: %v", err)
	}
	return transaction
}

// CreateTestBudget creates an active monthly category budget with both
// alert thresholds enabled.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, categoryID *string, accountID *string, amount int64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		AccountID:  accountID,
		Amount:     amount,
		Period:     models.BudgetPeriodMonthly,
		AlertAt80:  true,
		AlertAt100: true,
		IsActive:   true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestCreditCard creates a credit card against the given account.
func CreateTestCreditCard(t *testing.T, db *gorm.DB, userID, accountID string, statementDay, dueDay int, limit *int64) *models.CreditCard {
	t.Helper()

	card := &models.CreditCard{
		UserID:       userID,
		AccountID:    accountID,
		LastFour:     "4242",
		CardName:     fmt.Sprintf("Test Card %d", nextID()),
		StatementDay: statementDay,
		DueDay:       dueDay,
		CreditLimit:  limit,
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("failed to create test credit card: %v", err)
	}
	return card
}

// CreateTestCreditLine creates a credit line with the given shared limit.
func CreateTestCreditLine(t *testing.T, db *gorm.DB, userID string, totalLimit *int64) *models.CreditLine {
	t.Helper()

	line := &models.CreditLine{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Line %d", nextID()),
		TotalLimit: totalLimit,
	}
	if err := db.Create(line).Error; err != nil {
		t.Fatalf("failed to create test credit line: %v", err)
	}
	return line
}

// CreateTestRecurring creates an active monthly recurring expense rule with
// its cursor at start.
func CreateTestRecurring(t *testing.T, db *gorm.DB, userID, accountID string, amount int64, start time.Time) *models.RecurringTransaction {
	t.Helper()

	rule := &models.RecurringTransaction{
		UserID:      userID,
		AccountID:   accountID,
		Amount:      amount,
		Description: fmt.Sprintf("Test Recurring %d", nextID()),
		Type:        models.TransactionTypeExpense,
		Frequency:   models.FrequencyMonthly,
		StartDate:   start,
		NextDueDate: start,
		IsActive:    true,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test recurring rule: %v", err)
	}
	return rule
}

// CreateTestStatement creates an unpaid statement for the card.
func CreateTestStatement(t *testing.T, db *gorm.DB, userID, cardID string, due time.Time, total int64) *models.Statement {
	t.Helper()

	statement := &models.Statement{
		UserID:       userID,
		CreditCardID: cardID,
		PeriodStart:  due.AddDate(0, -1, 0),
		PeriodEnd:    due.AddDate(0, 0, -16),
		DueDate:      due,
		TotalAmount:  total,
		IsPaid:       false,
	}
	if err := db.Create(statement).Error; err != nil {
		t.Fatalf("failed to create test statement: %v", err)
	}
	return statement
}
