package models

// CreditLine is a shared credit pool backing zero or more credit cards.
// Deleting a line detaches its cards; it never deletes them.
type CreditLine struct {
	Base
	UserID        string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string  `gorm:"not null" json:"name"`
	InstitutionID *string `gorm:"type:uuid" json:"institution_id,omitempty"`

	TotalLimit        *int64 `gorm:"type:bigint" json:"total_limit,omitempty"`
	AvailableOverride *int64 `gorm:"type:bigint" json:"available_override,omitempty"`

	Institution *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
	Cards       []CreditCard `gorm:"foreignKey:CreditLineID" json:"cards,omitempty"`
}
