package models

import "time"

// ShiftStatus represents the status of a scheduled shift.
type ShiftStatus string

const (
	// ShiftStatusScheduled indicates a shift that is still planned.
	ShiftStatusScheduled ShiftStatus = "scheduled"
	// ShiftStatusCompleted indicates a worked shift.
	ShiftStatusCompleted ShiftStatus = "completed"
	// ShiftStatusCancelled indicates a shift that will not be worked.
	ShiftStatusCancelled ShiftStatus = "cancelled"
)

// Shift is one scheduled work period. Shifts are owned by exactly one user;
// the swap marketplace references them but the schedule screens own their CRUD.
type Shift struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          uint        `gorm:"not null;index" json:"user_id"`
	WorkplaceID     *uint       `gorm:"index" json:"workplace_id,omitempty"`
	StartTime       time.Time   `gorm:"not null" json:"start_time"`
	EndTime         time.Time   `gorm:"not null" json:"end_time"`
	EstimatedValue  float64     `json:"estimated_value"`
	Status          ShiftStatus `gorm:"type:varchar(20);default:'scheduled';index" json:"status"`
	Notes           string      `gorm:"size:512" json:"notes,omitempty"`
	ReceivedViaSwap bool        `gorm:"default:false" json:"received_via_swap"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	// Relationships
	Workplace *Workplace `gorm:"foreignKey:WorkplaceID" json:"workplace,omitempty"`
}

// TableName specifies the table name for GORM
func (Shift) TableName() string {
	return "shifts"
}

// InstitutionName returns the shift's institution name if the workplace
// relation is loaded.
func (s *Shift) InstitutionName() string {
	if s == nil || s.Workplace == nil {
		return ""
	}
	return s.Workplace.InstitutionName
}
