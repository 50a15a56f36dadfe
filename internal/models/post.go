// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post types reported by the mobile app.
const (
	PostTypeIncident = "incident"
	PostTypeRescue   = "rescue"
	PostTypeGeneral  = "general"
)

// Attachment media types.
const (
	MediaTypeNone  = "none"
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// EventStatus is the moderation state of a live post.
type EventStatus string

const (
	// EventStatusPending indicates the post awaits moderation.
	EventStatusPending EventStatus = "Pending"
	// EventStatusApproved indicates the post is visible in the app.
	EventStatusApproved EventStatus = "Approved"
	// EventStatusRejected indicates the post was refused by a moderator.
	EventStatusRejected EventStatus = "Rejected"
)

// CanTransitionTo reports whether a moderation decision may move s to next.
// Only pending posts can be decided, and decisions are final.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	return s == EventStatusPending && (next == EventStatusApproved || next == EventStatusRejected)
}

// IsValidPostType reports whether t is one of the known post types.
func IsValidPostType(t string) bool {
	switch t {
	case PostTypeIncident, PostTypeRescue, PostTypeGeneral:
		return true
	}
	return false
}

// EventPost is a user-submitted incident/rescue/general post awaiting or past moderation.
type EventPost struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	User             *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title            string         `gorm:"size:300;not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	AttachmentURL    string         `json:"attachment_url"`
	MediaType        string         `gorm:"size:16;not null;default:'none'" json:"media_type"`
	Hashtags         []string       `gorm:"type:text;serializer:json" json:"hashtags"`
	CategoryID       *uint          `gorm:"index" json:"category_id,omitempty"`
	Category         *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	PostType         string         `gorm:"size:20;not null;default:'general';index" json:"post_type"`
	Latitude         *float64       `json:"latitude,omitempty"`
	Longitude        *float64       `json:"longitude,omitempty"`
	Address          string         `gorm:"type:text" json:"address"`
	City             string         `gorm:"size:120;index" json:"city"`
	EventTime        *time.Time     `json:"event_time,omitempty"`
	Status           EventStatus    `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	RejectionReason  string         `gorm:"type:text;default:''" json:"rejection_reason,omitempty"`
	ReviewedByUserID *uint          `json:"reviewed_by_user_id,omitempty"`
	ReviewedAt       *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (EventPost) TableName() string {
	return "event_posts"
}

// EventDraft is an admin-authored post that has not been published yet.
type EventDraft struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	AuthorID      uint       `gorm:"not null;index" json:"author_id"`
	Author        *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Title         string     `gorm:"size:300;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	AttachmentURL string     `json:"attachment_url"`
	MediaType     string     `gorm:"size:16;not null;default:'none'" json:"media_type"`
	Hashtags      []string   `gorm:"type:text;serializer:json" json:"hashtags"`
	CategoryID    *uint      `gorm:"index" json:"category_id,omitempty"`
	Category      *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	PostType      string     `gorm:"size:20;not null;default:'general';index" json:"post_type"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	Address       string     `gorm:"type:text" json:"address"`
	City          string     `gorm:"size:120;index" json:"city"`
	EventTime     *time.Time `json:"event_time,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (EventDraft) TableName() string {
	return "event_drafts"
}

// Comment is a reply on an event post. Comments can be reported.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
