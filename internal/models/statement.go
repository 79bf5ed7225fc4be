package models

import "time"

// Statement is a closed billing-cycle record for a credit card.
type Statement struct {
	Base
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	CreditCardID string    `gorm:"type:uuid;not null;index" json:"credit_card_id"`
	PeriodStart  time.Time `gorm:"not null" json:"period_start"`
	PeriodEnd    time.Time `gorm:"not null" json:"period_end"`
	DueDate      time.Time `gorm:"not null;index" json:"due_date"`
	TotalAmount  int64     `gorm:"type:bigint;not null" json:"total_amount"`
	IsPaid       bool      `gorm:"not null;default:false" json:"is_paid"`

	CreditCard CreditCard `gorm:"foreignKey:CreditCardID" json:"credit_card,omitempty"`
}
