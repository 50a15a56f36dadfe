package service

import (
	"context"
	"strings"
	"testing"

	"adminhub/internal/cache"
	"adminhub/internal/models"
	"adminhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_CreateAndList(t *testing.T) {
	mr := testutil.NewRedis(t)
	f := newFixture(t)
	svc := NewCategoryService(f.categories, f.audit)
	ctx := context.Background()

	parent, err := svc.Create(ctx, f.actor, CategoryInput{Name: " Rescue "})
	require.NoError(t, err)
	assert.Equal(t, "Rescue", parent.Name)

	_, err = svc.Create(ctx, f.actor, CategoryInput{Name: "Flood", ParentID: &parent.ID})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, mr.Exists(cache.CategoryListKey))

	_, err = svc.Create(ctx, f.actor, CategoryInput{Name: "rescue"})
	assertAppCode(t, err, models.CodeConflict)
}

func TestCategoryService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewCategoryService(f.categories, f.audit)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.actor, CategoryInput{Name: ""})
	assertAppCode(t, err, models.CodeValidation)

	_, err = svc.Create(ctx, f.actor, CategoryInput{Name: strings.Repeat("n", 121)})
	assertAppCode(t, err, models.CodeValidation)

	_, err = svc.Create(ctx, f.actor, CategoryInput{Name: "orphan", ParentID: ptr(uint(77))})
	assertAppCode(t, err, models.CodeNotFound)
}

func TestCategoryService_DeleteGuardsChildren(t *testing.T) {
	f := newFixture(t)
	svc := NewCategoryService(f.categories, f.audit)
	ctx := context.Background()

	parent, err := svc.Create(ctx, f.actor, CategoryInput{Name: "Incident"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, f.actor, CategoryInput{Name: "Fire", ParentID: &parent.ID})
	require.NoError(t, err)

	assertAppCode(t, svc.Delete(ctx, f.actor, parent.ID), models.CodeConflict)
	require.NoError(t, svc.Delete(ctx, f.actor, child.ID))
	require.NoError(t, svc.Delete(ctx, f.actor, parent.ID))
	assertAppCode(t, svc.Delete(ctx, f.actor, parent.ID), models.CodeNotFound)
}
