package models

import "time"

// Activity actions recorded for admin mutations.
const (
	ActionEventCreate        = "event.create"
	ActionEventApprove       = "event.approve"
	ActionEventReject        = "event.reject"
	ActionEventDelete        = "event.delete"
	ActionDraftCreate        = "draft.create"
	ActionDraftUpdate        = "draft.update"
	ActionDraftDelete        = "draft.delete"
	ActionDraftPublish       = "draft.publish"
	ActionCategoryCreate     = "category.create"
	ActionCategoryDelete     = "category.delete"
	ActionReportResolve      = "report.resolve"
	ActionNotificationCreate = "notification.create"
	ActionSOSResolve         = "sos.resolve"
	ActionUserBlock          = "user.block"
	ActionUserUnblock        = "user.unblock"
	ActionUserPromote        = "user.promote"
	ActionUserDemote         = "user.demote"
	ActionSOSCreate          = "sos.create"
)

// ActivityLog is an audit record of one admin mutation.
type ActivityLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ActorID    uint           `gorm:"not null;index" json:"actor_id"`
	Action     string         `gorm:"size:64;not null;index" json:"action"`
	EntityType string         `gorm:"size:32;not null;index" json:"entity_type"`
	EntityID   uint           `gorm:"index" json:"entity_id"`
	Details    map[string]any `gorm:"type:text;serializer:json" json:"details,omitempty"`
	IP         string         `gorm:"size:64" json:"ip,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

// TableName specifies the table name for GORM.
func (ActivityLog) TableName() string {
	return "activity_logs"
}
