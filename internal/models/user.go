// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a profile: identity plus the short public friend code other
// users can look up to send a request.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FullName   string    `gorm:"size:120;not null" json:"full_name"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"not null" json:"-"`
	Role       string    `gorm:"size:80" json:"role"`
	AvatarURL  string    `gorm:"size:512" json:"avatar_url,omitempty"`
	FriendCode *string   `gorm:"size:16;uniqueIndex" json:"friend_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// Summary is the trimmed projection embedded in friend and swap responses.
func (u User) Summary() map[string]interface{} {
	return map[string]interface{}{
		"id":        u.ID,
		"full_name": u.FullName,
		"role":      u.Role,
		"avatar":    u.AvatarURL,
	}
}
