package models

import "time"

// FriendRequestStatus represents the status of a friend request.
type FriendRequestStatus string

const (
	// FriendRequestStatusPending indicates a request awaiting a decision.
	FriendRequestStatusPending FriendRequestStatus = "pending"
	// FriendRequestStatusAccepted indicates an accepted request.
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	// FriendRequestStatusRejected indicates a rejected request.
	FriendRequestStatusRejected FriendRequestStatus = "rejected"
	// FriendRequestStatusExpired indicates a request past its expiry.
	FriendRequestStatusExpired FriendRequestStatus = "expired"
)

// DefaultRequestTTL is how long a friend request stays redeemable.
const DefaultRequestTTL = 30 * 24 * time.Hour

// FriendRequest is a directional solicitation to form a Friendship. When sent
// to an email address the recipient is unknown: ToUserID stays nil and a
// single-use InviteCode is issued; redeeming the code binds the recipient and
// accepts the request in one step.
//
// At most one pending row may exist per (FromUserID, ToUserID) pair. GORM
// tags cannot express a partial index, so the enforcing index is created in
// database.Migrate.
type FriendRequest struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	FromUserID uint                `gorm:"not null;index" json:"from_user_id"`
	ToUserID   *uint               `gorm:"index" json:"to_user_id,omitempty"`
	ToEmail    string              `gorm:"size:255" json:"to_email,omitempty"`
	InviteCode *string             `gorm:"size:16;uniqueIndex" json:"invite_code,omitempty"`
	Message    string              `gorm:"size:512" json:"message,omitempty"`
	Status     FriendRequestStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ExpiresAt  time.Time           `json:"expires_at"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`

	// Relationships
	FromUser User  `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
	ToUser   *User `gorm:"foreignKey:ToUserID" json:"to_user,omitempty"`
}

// TableName specifies the table name for GORM
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// Expired reports whether the request is past its expiry timestamp.
func (r *FriendRequest) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}
