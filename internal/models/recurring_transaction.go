package models

import "time"

// RecurrenceFrequency is the cadence of a recurring rule.
type RecurrenceFrequency string

const (
	FrequencyDaily    RecurrenceFrequency = "daily"
	FrequencyWeekly   RecurrenceFrequency = "weekly"
	FrequencyBiweekly RecurrenceFrequency = "biweekly"
	FrequencyMonthly  RecurrenceFrequency = "monthly"
	FrequencyYearly   RecurrenceFrequency = "yearly"
)

// RecurringTransaction is a template that periodically materializes ledger
// transactions. NextDueDate is the scheduler cursor: the sweep materializes
// one transaction dated at the cursor, then advances it one period.
type RecurringTransaction struct {
	Base
	UserID     string  `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID  string  `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID *string `gorm:"type:uuid" json:"category_id,omitempty"`

	Amount      int64               `gorm:"type:bigint;not null" json:"amount"`
	Description string              `json:"description"`
	Type        TransactionType     `gorm:"not null" json:"type"`
	SubType     *TransactionSubType `json:"sub_type,omitempty"`
	Frequency   RecurrenceFrequency `gorm:"not null" json:"frequency"`

	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	NextDueDate time.Time  `gorm:"not null;index" json:"next_due_date"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
}
