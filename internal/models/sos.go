package models

import "time"

// SOS event and contact states.
const (
	SOSStatusSent          = "SENT"
	SOSStatusPartialFailed = "PARTIAL_FAILED"
	SOSStatusFailed        = "FAILED"
	SOSStatusResolved      = "RESOLVED"

	ContactStatusSent      = "SENT"
	ContactStatusDelivered = "DELIVERED"
	ContactStatusFailed    = "FAILED"
)

// SOSEvent is an emergency alert raised from the mobile app.
type SOSEvent struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	UserID           uint         `gorm:"not null;index" json:"user_id"`
	Latitude         float64      `json:"latitude"`
	Longitude        float64      `json:"longitude"`
	Address          string       `gorm:"type:text" json:"address"`
	Message          string       `gorm:"type:text" json:"message"`
	Status           string       `gorm:"size:20;not null;default:'SENT';index" json:"status"`
	Contacts         []SOSContact `gorm:"foreignKey:SOSEventID" json:"contacts"`
	ResolvedByUserID *uint        `json:"resolved_by_user_id,omitempty"`
	ResolvedAt       *time.Time   `json:"resolved_at,omitempty"`
	ResolutionNote   string       `gorm:"type:text;default:''" json:"resolution_note,omitempty"`
	CreatedAt        time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for GORM.
func (SOSEvent) TableName() string {
	return "sos_events"
}

// SOSContact is one emergency contact notified for an SOS event.
type SOSContact struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SOSEventID    uint      `gorm:"not null;index" json:"sos_event_id"`
	Name          string    `gorm:"size:120" json:"name"`
	Phone         string    `gorm:"size:40;not null" json:"phone"`
	Status        string    `gorm:"size:20;not null;default:'SENT'" json:"status"`
	FailureReason string    `gorm:"type:text;default:''" json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (SOSContact) TableName() string {
	return "sos_contacts"
}

// DeriveStatus computes the overall status from contact deliveries.
// Resolved events keep their status.
func (e *SOSEvent) DeriveStatus() string {
	if e.Status == SOSStatusResolved {
		return e.Status
	}
	if len(e.Contacts) == 0 {
		return SOSStatusSent
	}
	failed := 0
	for _, c := range e.Contacts {
		if c.Status == ContactStatusFailed {
			failed++
		}
	}
	switch {
	case failed == len(e.Contacts):
		return SOSStatusFailed
	case failed > 0:
		return SOSStatusPartialFailed
	default:
		return SOSStatusSent
	}
}
