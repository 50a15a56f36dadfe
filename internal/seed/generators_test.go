package seed

import (
	"math"
	"testing"
	"time"

	"adminhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEvent_StaysNearCityAndWithinWindow(t *testing.T) {
	opts := Options{DryRun: true, MaxDays: 7, RandomSeed: 7}
	f := NewFactory(nil, opts)
	user := &models.User{ID: 1}
	city := DefaultCities[0]

	for range 50 {
		e := f.BuildEvent(user, city, nil)
		require.NotNil(t, e.Latitude)
		require.NotNil(t, e.Longitude)
		assert.LessOrEqual(t, math.Abs(*e.Latitude-city.Lat), 0.12)
		assert.LessOrEqual(t, math.Abs(*e.Longitude-city.Lng), 0.12)
		assert.True(t, models.IsValidPostType(e.PostType))
		assert.LessOrEqual(t, time.Since(e.CreatedAt), 8*24*time.Hour)
		if e.Status == models.EventStatusRejected {
			assert.NotEmpty(t, e.RejectionReason)
		}
		if e.AttachmentURL != "" {
			assert.Equal(t, models.MediaTypeImage, e.MediaType)
		}
	}
}

func TestCreateSOS_StatusFollowsContacts(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true})
	alert, err := f.CreateSOS(&models.User{ID: 3}, DefaultCities[1])
	require.NoError(t, err)
	require.NotEmpty(t, alert.Contacts)
	assert.NotZero(t, alert.ID)
	assert.Equal(t, alert.DeriveStatus(), alert.Status)
}
