package database

import "adminhub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.EventPost{},
		&models.EventDraft{},
		&models.Comment{},
		&models.Report{},
		&models.Notification{},
		&models.SOSEvent{},
		&models.SOSContact{},
		&models.ActivityLog{},
	}
}
