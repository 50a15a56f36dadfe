package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an app user or an admin operating the hub.
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Username        string         `gorm:"unique;not null" json:"username"`
	Email           string         `gorm:"unique;not null" json:"email"`
	Password        string         `gorm:"not null" json:"-"`
	DisplayName     string         `json:"display_name"`
	AvatarURL       string         `json:"avatar_url"`
	City            string         `gorm:"size:120;index" json:"city"`
	IsAdmin         bool           `gorm:"not null;default:false" json:"is_admin"`
	IsBlocked       bool           `gorm:"not null;default:false;index" json:"is_blocked"`
	BlockedAt       *time.Time     `json:"blocked_at,omitempty"`
	BlockedReason   string         `gorm:"type:text;default:''" json:"blocked_reason,omitempty"`
	BlockedByUserID *uint          `json:"blocked_by_user_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Name returns the label shown for the user in admin lists.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
