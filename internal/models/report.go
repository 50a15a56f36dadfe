package models

import "time"

// Report target types.
const (
	ReportTargetPost    = "POST"
	ReportTargetComment = "COMMENT"
	ReportTargetUser    = "USER"
)

// Report lifecycle states.
const (
	ReportStatusOpen     = "OPEN"
	ReportStatusResolved = "RESOLVED"
)

// Actions a moderator can take when resolving a report.
const (
	ReportActionNone          = "none"
	ReportActionDeleteContent = "delete_content"
	ReportActionBlockUser     = "block_user"
)

// IsValidReportTarget reports whether t is a known report target type.
func IsValidReportTarget(t string) bool {
	switch t {
	case ReportTargetPost, ReportTargetComment, ReportTargetUser:
		return true
	}
	return false
}

// IsValidReportAction reports whether a is a known resolution action.
func IsValidReportAction(a string) bool {
	switch a {
	case ReportActionNone, ReportActionDeleteContent, ReportActionBlockUser:
		return true
	}
	return false
}

// ReportSnapshot is the copy of reported content captured when the report is filed.
type ReportSnapshot struct {
	Title    string `json:"title,omitempty"`
	Body     string `json:"body,omitempty"`
	Author   string `json:"author,omitempty"`
	MediaURL string `json:"media_url,omitempty"`
}

// Report is a user complaint about a post, comment or another user.
type Report struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ReporterID       uint           `gorm:"not null;index" json:"reporter_id"`
	ReportedUserID   *uint          `gorm:"index" json:"reported_user_id,omitempty"`
	TargetType       string         `gorm:"size:20;not null;index" json:"target_type"`
	TargetID         uint           `gorm:"not null;index" json:"target_id"`
	Reason           string         `gorm:"size:200;not null" json:"reason"`
	Details          string         `gorm:"type:text;default:''" json:"details"`
	Status           string         `gorm:"size:20;not null;default:'OPEN';index" json:"status"`
	Snapshot         ReportSnapshot `gorm:"type:text;serializer:json" json:"snapshot"`
	ResolvedByUserID *uint          `json:"resolved_by_user_id,omitempty"`
	ResolvedAt       *time.Time     `json:"resolved_at,omitempty"`
	ResolutionNote   string         `gorm:"type:text;default:''" json:"resolution_note,omitempty"`
	ActionTaken      string         `gorm:"size:32;default:''" json:"action_taken,omitempty"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	Reporter     *User `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	ReportedUser *User `gorm:"foreignKey:ReportedUserID" json:"reported_user,omitempty"`
}

// TableName specifies the table name for GORM.
func (Report) TableName() string {
	return "reports"
}
