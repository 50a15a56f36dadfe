package seed

import (
	"testing"

	"adminhub/internal/models"
	"adminhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories_Idempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	require.NoError(t, Categories(db))
	var first int64
	require.NoError(t, db.Model(&models.Category{}).Count(&first).Error)

	require.NoError(t, Categories(db))
	var second int64
	require.NoError(t, db.Model(&models.Category{}).Count(&second).Error)
	assert.Equal(t, first, second)

	var child models.Category
	require.NoError(t, db.Where("name = ?", "Road accident").First(&child).Error)
	require.NotNil(t, child.ParentID)

	var parent models.Category
	require.NoError(t, db.First(&parent, *child.ParentID).Error)
	assert.Equal(t, "Accident", parent.Name)
	assert.Nil(t, parent.ParentID)
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, Options{
		Users:      5,
		Events:     12,
		Drafts:     2,
		Comments:   6,
		Reports:    3,
		SOS:        2,
		Broadcasts: 2,
		SkipBcrypt: true,
		RandomSeed: 42,
	})

	summary, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Users)
	assert.Equal(t, 12, summary.Events)

	var events, drafts, reports, alerts, broadcasts int64
	require.NoError(t, db.Model(&models.EventPost{}).Count(&events).Error)
	require.NoError(t, db.Model(&models.EventDraft{}).Count(&drafts).Error)
	require.NoError(t, db.Model(&models.Report{}).Count(&reports).Error)
	require.NoError(t, db.Model(&models.SOSEvent{}).Count(&alerts).Error)
	require.NoError(t, db.Model(&models.Notification{}).Count(&broadcasts).Error)
	assert.Equal(t, int64(12), events)
	assert.Equal(t, int64(2), drafts)
	assert.Equal(t, int64(3), reports)
	assert.Equal(t, int64(2), alerts)
	assert.Equal(t, int64(2), broadcasts)
	assert.Equal(t, 2, summary.Broadcasts)

	var contacts []models.SOSContact
	require.NoError(t, db.Find(&contacts).Error)
	assert.NotEmpty(t, contacts)

	require.NoError(t, s.ClearAll())
	require.NoError(t, db.Model(&models.EventPost{}).Count(&events).Error)
	assert.Zero(t, events)
}

func TestSeeder_DryRunWritesNothing(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	summary, err := NewSeeder(db, Options{Users: 3, Events: 4, SOS: 1, DryRun: true}).Run()
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Events)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestPresets(t *testing.T) {
	presets, err := Presets()
	require.NoError(t, err)

	demo, ok := presets["demo"]
	require.True(t, ok)
	assert.Equal(t, 60, demo.Users)
	require.Len(t, demo.Cities, 1)
	assert.Equal(t, "Bengaluru", demo.Cities[0].Name)

	load := presets["load"]
	assert.True(t, load.SkipBcrypt)
	assert.Equal(t, 500, load.BatchSize)

	_, err = ParsePresets([]byte("- description: nameless\n"))
	assert.Error(t, err)

	_, err = NewSeederFromPreset(nil, "nope")
	assert.Error(t, err)
}
