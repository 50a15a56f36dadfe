package notifications

import (
	"encoding/json"
	"time"
)

// Admin feed event types.
const (
	EventPostCreated      = "event.created"
	EventPostApproved     = "event.approved"
	EventPostRejected     = "event.rejected"
	EventPostDeleted      = "event.deleted"
	EventDraftPublished   = "draft.published"
	EventReportCreated    = "report.created"
	EventReportResolved   = "report.resolved"
	EventSOSCreated       = "sos.created"
	EventSOSResolved      = "sos.resolved"
	EventNotificationSent = "notification.sent"
	EventUserBlocked      = "user.blocked"
	EventAdminOnline      = "admin.online"
	EventAdminOffline     = "admin.offline"
)

// AdminEvent is one message on the live admin feed.
type AdminEvent struct {
	Type     string    `json:"type"`
	EntityID uint      `json:"entity_id,omitempty"`
	ActorID  uint      `json:"actor_id,omitempty"`
	Payload  any       `json:"payload,omitempty"`
	At       time.Time `json:"at"`
}

// NewAdminEvent stamps an event with the current time.
func NewAdminEvent(eventType string, entityID, actorID uint, payload any) AdminEvent {
	return AdminEvent{
		Type:     eventType,
		EntityID: entityID,
		ActorID:  actorID,
		Payload:  payload,
		At:       time.Now().UTC(),
	}
}

// Encode renders the event as the JSON text frame sent to feed clients.
func (e AdminEvent) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
