package models

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
)

// BudgetStatus is the derived threshold state for the current period.
type BudgetStatus string

const (
	BudgetStatusOK       BudgetStatus = "ok"
	BudgetStatusWarning  BudgetStatus = "warning"
	BudgetStatusExceeded BudgetStatus = "exceeded"
)

// Budget caps spending for exactly one category or one account, never both.
type Budget struct {
	Base
	UserID     string  `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID *string `gorm:"type:uuid" json:"category_id,omitempty"`
	AccountID  *string `gorm:"type:uuid" json:"account_id,omitempty"`

	Amount     int64        `gorm:"type:bigint;not null" json:"amount"`
	Period     BudgetPeriod `gorm:"not null;default:'monthly'" json:"period"`
	AlertAt80  bool         `gorm:"column:alert_at_80;not null;default:true" json:"alert_at_80"`
	AlertAt100 bool         `gorm:"column:alert_at_100;not null;default:true" json:"alert_at_100"`
	IsActive   bool         `gorm:"default:true" json:"is_active"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Account  *Account  `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// TargetsCategory reports whether the budget is scoped to a category.
func (b *Budget) TargetsCategory() bool {
	return b.CategoryID != nil
}
