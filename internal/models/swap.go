package models

import "time"

// SwapType distinguishes what the poster wants out of a posting.
type SwapType string

const (
	// SwapTypeOffer gives a shift away: the accepted party receives it.
	SwapTypeOffer SwapType = "offer"
	// SwapTypeRequest asks for a shift on a desired date.
	SwapTypeRequest SwapType = "request"
	// SwapTypeExchange trades a held shift for a desired date.
	SwapTypeExchange SwapType = "exchange"
)

// SwapStatus represents the lifecycle state of a posting. Transitions are
// monotonic: open -> matched -> completed, or open -> cancelled.
type SwapStatus string

const (
	SwapStatusOpen      SwapStatus = "open"
	SwapStatusMatched   SwapStatus = "matched"
	SwapStatusCompleted SwapStatus = "completed"
	SwapStatusCancelled SwapStatus = "cancelled"
)

// SwapPosting is one marketplace listing. Offer and exchange postings carry
// the shift being given up; request and exchange postings carry the desired
// date (and optionally institution) being sought.
type SwapPosting struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"not null;index" json:"user_id"`
	ShiftID            *uint      `gorm:"index" json:"shift_id,omitempty"`
	SwapType           SwapType   `gorm:"type:varchar(20);not null" json:"swap_type"`
	DesiredDate        *time.Time `json:"desired_date,omitempty"`
	DesiredWorkplaceID *uint      `json:"desired_workplace_id,omitempty"`
	Description        string     `gorm:"size:1024" json:"description,omitempty"`
	Status             SwapStatus `gorm:"type:varchar(20);default:'open';index:idx_swap_postings_status" json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Relationships
	User             User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Shift            *Shift     `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`
	DesiredWorkplace *Workplace `gorm:"foreignKey:DesiredWorkplaceID" json:"desired_workplace,omitempty"`

	// InterestsCount is a projection filled by the repository, not a column.
	InterestsCount int64 `gorm:"-" json:"interests_count"`
}

// TableName specifies the table name for GORM
func (SwapPosting) TableName() string {
	return "swap_postings"
}

// Open reports whether the posting still accepts interests.
func (p *SwapPosting) Open() bool {
	return p.Status == SwapStatusOpen
}

// InstitutionName returns the institution attached to the posting: the shift's
// workplace for offer/exchange, otherwise the desired workplace.
func (p *SwapPosting) InstitutionName() string {
	if name := p.Shift.InstitutionName(); name != "" {
		return name
	}
	if p.DesiredWorkplace != nil {
		return p.DesiredWorkplace.InstitutionName
	}
	return ""
}

// SwapInterestStatus represents the status of one user's bid on a posting.
type SwapInterestStatus string

const (
	SwapInterestStatusPending  SwapInterestStatus = "pending"
	SwapInterestStatusAccepted SwapInterestStatus = "accepted"
	SwapInterestStatusRejected SwapInterestStatus = "rejected"
)

// SwapInterest is one user's bid on a posting. At most one interest exists per
// (posting, user) pair and at most one per posting ever becomes accepted.
type SwapInterest struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	SwapID    uint               `gorm:"not null;uniqueIndex:idx_swap_interest_user" json:"swap_id"`
	UserID    uint               `gorm:"not null;uniqueIndex:idx_swap_interest_user" json:"user_id"`
	Message   string             `gorm:"size:512" json:"message,omitempty"`
	Status    SwapInterestStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`

	// Relationships
	User User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Swap *SwapPosting `gorm:"foreignKey:SwapID" json:"swap,omitempty"`
}

// TableName specifies the table name for GORM
func (SwapInterest) TableName() string {
	return "swap_interests"
}
