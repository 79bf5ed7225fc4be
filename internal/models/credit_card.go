package models

// CreditCard holds billing-cycle and limit data for a credit card account.
// StatementDay and DueDay are restricted to 1-28 so every cycle has a valid
// close date in every month.
type CreditCard struct {
	Base
	UserID    string `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID string `gorm:"type:uuid;not null;index" json:"account_id"`
	LastFour  string `gorm:"size:4;not null" json:"last_four"`
	CardName  string `json:"card_name"`

	StatementDay int `gorm:"not null" json:"statement_day"`
	DueDay       int `gorm:"not null" json:"due_day"`

	// CreditLimit applies to standalone cards only. Cards in a credit line
	// draw from the line's shared pool instead.
	CreditLimit       *int64  `gorm:"type:bigint" json:"credit_limit,omitempty"`
	CreditLineID      *string `gorm:"type:uuid;index" json:"credit_line_id,omitempty"`
	AvailableOverride *int64  `gorm:"type:bigint" json:"available_override,omitempty"`

	Account    Account     `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	CreditLine *CreditLine `gorm:"foreignKey:CreditLineID" json:"credit_line,omitempty"`
}
