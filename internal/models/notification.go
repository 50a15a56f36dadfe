package models

import (
	"strings"
	"time"
)

// Notification delivery states.
const (
	NotificationStatusPending       = "PENDING"
	NotificationStatusSent          = "SENT"
	NotificationStatusPartialFailed = "PARTIAL_FAILED"
	NotificationStatusFailed        = "FAILED"
)

// AudienceAll targets every active user.
const AudienceAll = "all"

const audienceCityPrefix = "city:"

// Notification is an admin broadcast pushed to app users.
type Notification struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	Message         string     `gorm:"type:text;not null" json:"message"`
	Audience        string     `gorm:"size:160;not null;default:'all'" json:"audience"`
	Status          string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	TotalUsers      int        `gorm:"not null;default:0" json:"total_users"`
	DeliveredUsers  int        `gorm:"not null;default:0" json:"delivered_users"`
	FailedUsers     int        `gorm:"not null;default:0" json:"failed_users"`
	CreatedByUserID uint       `gorm:"not null;index" json:"created_by_user_id"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	CreatedBy *User `gorm:"foreignKey:CreatedByUserID" json:"created_by,omitempty"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

// AudienceCity returns the city an audience targets, or "" for broadcast audiences.
func AudienceCity(audience string) string {
	if !strings.HasPrefix(audience, audienceCityPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(audience, audienceCityPrefix))
}

// IsValidAudience accepts "all" and "city:<name>".
func IsValidAudience(audience string) bool {
	return audience == AudienceAll || AudienceCity(audience) != ""
}

// DeliveryStatus folds delivery counters into a final notification status.
func DeliveryStatus(total, delivered, failed int) string {
	switch {
	case total > 0 && failed >= total:
		return NotificationStatusFailed
	case failed > 0:
		return NotificationStatusPartialFailed
	case delivered < total:
		return NotificationStatusPending
	default:
		return NotificationStatusSent
	}
}
