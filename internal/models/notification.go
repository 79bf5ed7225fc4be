package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// NotificationType represents the kind of notification
type NotificationType string

const (
	NotificationBudgetWarning    NotificationType = "budget_warning"
	NotificationBudgetExceeded   NotificationType = "budget_exceeded"
	NotificationStatementDue     NotificationType = "statement_due"
	NotificationRecurringCreated NotificationType = "recurring_created"
)

// Metadata is a free-form JSON payload stored with a notification. It carries
// the source budget/statement id and the period the alert covered.
type Metadata map[string]interface{}

// Value implements driver.Valuer so Metadata persists as a JSON column.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for reading the JSON column back.
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("unsupported metadata column type")
	}
}

// Notification is the durable record that a user has already been alerted.
// DedupeKey enforces at-most-once semantics at the storage level: alert
// producers set it to a value unique per (subject, kind, period), and a
// unique-violation on insert means another writer already alerted.
type Notification struct {
	Base
	UserID    string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      NotificationType `gorm:"size:30;not null" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"not null" json:"message"`
	IsRead    bool             `gorm:"not null;default:false" json:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	Metadata  Metadata         `gorm:"type:json" json:"metadata,omitempty"`
	DedupeKey *string          `gorm:"size:120;uniqueIndex" json:"-"`
}
