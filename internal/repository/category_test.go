package repository

import (
	"context"
	"testing"

	"adminhub/internal/models"
	"adminhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.NewRedis(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	parent := &models.Category{Name: "Emergencies"}
	require.NoError(t, repo.Create(ctx, parent))
	child := &models.Category{Name: "Fire", ParentID: &parent.ID}
	require.NoError(t, repo.Create(ctx, child))

	t.Run("duplicate names conflict regardless of case", func(t *testing.T) {
		err := repo.Create(ctx, &models.Category{Name: "FIRE"})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})

	t.Run("list is sorted and cached", func(t *testing.T) {
		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Emergencies", list[0].Name)
		assert.Equal(t, "Fire", list[1].Name)

		require.NoError(t, db.Create(&models.Category{Name: "Zzz"}).Error)
		cached, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, cached, 2)
	})

	t.Run("children and delete", func(t *testing.T) {
		n, err := repo.CountChildren(ctx, parent.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		require.NoError(t, repo.Delete(ctx, child.ID))
		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		err = repo.Delete(ctx, child.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}
