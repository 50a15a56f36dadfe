package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPersistentModels_AutoMigrateOnSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, runAutoMigrate(db))

	for _, table := range []string{
		"users", "categories", "event_posts", "event_drafts", "comments",
		"reports", "notifications", "sos_events", "sos_contacts", "activity_logs",
	} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}
