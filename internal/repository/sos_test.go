package repository

import (
	"context"
	"testing"

	"adminhub/internal/models"
	"adminhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSOSRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewSOSRepository(db)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "admin", true)
	user := testutil.CreateUser(t, db, "caller", false)

	event := &models.SOSEvent{
		UserID:    user.ID,
		Latitude:  41.15,
		Longitude: -8.61,
		Message:   "help",
		Status:    models.SOSStatusSent,
		Contacts: []models.SOSContact{
			{Name: "Mum", Phone: "+351900000001", Status: models.ContactStatusSent},
			{Name: "Dad", Phone: "+351900000002", Status: models.ContactStatusSent},
		},
	}
	require.NoError(t, repo.Create(ctx, event))
	require.NotZero(t, event.Contacts[0].ID)

	event.Contacts[1].Status = models.ContactStatusFailed
	event.Contacts[1].FailureReason = "unreachable"
	event.Status = event.DeriveStatus()
	require.NoError(t, repo.SaveDelivery(ctx, event))

	got, err := repo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusPartialFailed, got.Status)
	require.Len(t, got.Contacts, 2)
	require.NotNil(t, got.User)
	assert.Equal(t, "caller", got.User.Username)

	list, total, err := repo.List(ctx, SOSFilter{Status: models.SOSStatusPartialFailed}, Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	active, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, active)

	resolved, err := repo.Resolve(ctx, event.ID, admin.ID, "called back")
	require.NoError(t, err)
	assert.Equal(t, models.SOSStatusResolved, resolved.Status)
	assert.Equal(t, "called back", resolved.ResolutionNote)

	_, err = repo.Resolve(ctx, event.ID, admin.ID, "")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)

	active, err = repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Zero(t, active)
}
