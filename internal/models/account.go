package models

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeSavings    AccountType = "savings"
	AccountTypeChecking   AccountType = "checking"
	AccountTypeWallet     AccountType = "wallet"
	AccountTypeCash       AccountType = "cash"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeLoan       AccountType = "loan"
)

// Account represents a financial account. Its balance is never stored:
// OpeningBalance is the balance before the first tracked transaction, and
// the current balance is always derived from the transaction ledger.
type Account struct {
	Base
	UserID        string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string      `gorm:"not null" json:"name"`
	Type          AccountType `gorm:"not null" json:"type"`
	OpeningBalance int64      `gorm:"not null;default:0" json:"opening_balance"`
	Currency      string      `gorm:"size:3;not null;default:'PHP'" json:"currency"`
	IsActive      bool        `gorm:"default:true" json:"is_active"`
	InstitutionID *string     `gorm:"type:uuid" json:"institution_id,omitempty"`

	Institution *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
}
