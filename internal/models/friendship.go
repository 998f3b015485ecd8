package models

import (
	"time"

	"gorm.io/gorm"
)

// Friendship represents an accepted, symmetric relation between two users.
// The pair is stored once in canonical order (UserLowID < UserHighID) so the
// unique index rules out duplicate rows for the same pair regardless of who
// initiated the request.
type Friendship struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserLowID  uint      `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"user_low_id"`
	UserHighID uint      `gorm:"not null;uniqueIndex:idx_friendship_pair" json:"user_high_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	UserLow  User `gorm:"foreignKey:UserLowID" json:"user_low,omitempty"`
	UserHigh User `gorm:"foreignKey:UserHighID" json:"user_high,omitempty"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "friendships"
}

// BeforeSave normalizes the pair ordering so callers may pass the two user ids
// in either order.
func (f *Friendship) BeforeSave(_ *gorm.DB) error {
	f.UserLowID, f.UserHighID = NormalizePair(f.UserLowID, f.UserHighID)
	return nil
}

// NormalizePair returns the two user ids in canonical (low, high) order.
func NormalizePair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// Other returns the id of the friend that is not userID.
func (f *Friendship) Other(userID uint) uint {
	if f.UserLowID == userID {
		return f.UserHighID
	}
	return f.UserLowID
}
