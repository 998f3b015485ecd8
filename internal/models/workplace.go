package models

import "time"

// Workplace is a user's relation to an institution they take shifts at.
type Workplace struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	InstitutionName string    `gorm:"size:160;not null" json:"institution_name"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Workplace) TableName() string {
	return "workplaces"
}
