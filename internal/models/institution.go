package models

// Institution represents a bank or card issuer an account belongs to.
type Institution struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`
	Notes  string `json:"notes"`
}
