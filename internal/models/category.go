package models

import "time"

// Category classifies event posts. Categories may nest one level under a parent.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null;uniqueIndex" json:"name"`
	ParentID  *uint     `gorm:"index" json:"parent_id,omitempty"`
	Parent    *Category `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	IconURL   string    `json:"icon_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
