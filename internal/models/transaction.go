package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// TransactionSubType refines the transaction type for reporting and
// transfer semantics.
type TransactionSubType string

const (
	// Income
	SubTypeSalary         TransactionSubType = "salary"
	SubTypeBonus          TransactionSubType = "bonus"
	SubTypeFreelance      TransactionSubType = "freelance"
	SubTypeInterest       TransactionSubType = "interest"
	SubTypeRefundCashback TransactionSubType = "refund_cashback"
	SubTypeOtherIncome    TransactionSubType = "other_income"

	// Expense
	SubTypeRegular      TransactionSubType = "regular"
	SubTypeBillPayment  TransactionSubType = "bill_payment"
	SubTypeSubscription TransactionSubType = "subscription"
	SubTypeGiftGiven    TransactionSubType = "gift_given"
	SubTypeOtherExpense TransactionSubType = "other_expense"

	// Transfer
	SubTypeOwnAccount    TransactionSubType = "own_account"
	SubTypeSentToPerson  TransactionSubType = "sent_to_person"
	SubTypeATMWithdrawal TransactionSubType = "atm_withdrawal"
)

// TransactionSource records how a transaction entered the ledger.
type TransactionSource string

const (
	SourceManual    TransactionSource = "manual"
	SourceImport    TransactionSource = "import"
	SourceRecurring TransactionSource = "recurring"
)

// Transaction is an immutable ledger entry. Amounts are centavos; amount is
// the principal and FeeAmount an optional charge against the originating
// account (e.g. an ATM fee on a withdrawal transfer).
type Transaction struct {
	Base
	UserID      string              `gorm:"type:uuid;not null;index:idx_transactions_user_date" json:"user_id"`
	AccountID   string              `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID  *string             `gorm:"type:uuid;index" json:"category_id,omitempty"`
	ToAccountID *string             `gorm:"type:uuid;index" json:"to_account_id,omitempty"`
	RecurringID *string             `gorm:"type:uuid;index" json:"recurring_id,omitempty"`
	Type        TransactionType     `gorm:"not null" json:"type"`
	SubType     *TransactionSubType `json:"sub_type,omitempty"`
	Amount      int64               `gorm:"type:bigint;not null" json:"amount"`
	Description string              `json:"description"`
	Date        time.Time           `gorm:"not null;index:idx_transactions_user_date" json:"date"`
	Source      TransactionSource   `gorm:"not null;default:'manual'" json:"source"`

	FeeAmount     *int64  `gorm:"type:bigint" json:"fee_amount,omitempty"`
	FeeCategoryID *string `gorm:"type:uuid" json:"fee_category_id,omitempty"`

	CreatedBy string `gorm:"type:uuid;not null" json:"created_by"`

	Account   Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	ToAccount *Account  `gorm:"foreignKey:ToAccountID" json:"to_account,omitempty"`
	Category  *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
