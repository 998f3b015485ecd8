package models

import "time"

// NotificationType labels what a persisted notification is about.
type NotificationType string

const (
	NotificationSwapInterest  NotificationType = "swap_interest"
	NotificationSwapMatch     NotificationType = "swap_match"
	NotificationFriendRequest NotificationType = "friend_request"
	NotificationFriendAdded   NotificationType = "friend_added"
)

// Notification is a persisted notice shown in the user's notification feed.
// Realtime delivery over the websocket hub is best-effort; this row is the
// durable record.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title     string           `gorm:"size:160;not null" json:"title"`
	Message   string           `gorm:"size:512" json:"message"`
	Link      string           `gorm:"size:255" json:"link,omitempty"`
	Read      bool             `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
