package service

import (
	"context"
	"testing"

	"adminhub/internal/middleware"
	"adminhub/internal/models"
	"adminhub/internal/repository"
	"adminhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Login(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "member", false)

	t.Run("admin gets a token", func(t *testing.T) {
		res, err := svc.Login(ctx, " ROOT@example.com ", "password123")
		require.NoError(t, err)
		claims, err := middleware.ParseToken("test-secret-that-is-long-enough-123", res.Token)
		require.NoError(t, err)
		assert.Equal(t, f.admin.ID, claims.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "root@example.com", "nope")
		assertAppCode(t, err, models.CodeUnauthorized)
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost@example.com", "password123")
		assertAppCode(t, err, models.CodeUnauthorized)
	})

	t.Run("non admin", func(t *testing.T) {
		_, err := svc.Login(ctx, "member@example.com", "password123")
		assertAppCode(t, err, models.CodeForbidden)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login(ctx, "", "")
		assertAppCode(t, err, models.CodeValidation)
	})
}

func TestUserService_BlockRules(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	ctx := context.Background()
	member := testutil.CreateUser(t, f.db, "member", false)
	other := testutil.CreateUser(t, f.db, "other_admin", true)

	_, err := svc.Block(ctx, f.actor, f.admin.ID, "")
	assertAppCode(t, err, models.CodeValidation)

	_, err = svc.Block(ctx, f.actor, other.ID, "")
	assertAppCode(t, err, models.CodeForbidden)

	blocked, err := svc.Block(ctx, f.actor, member.ID, "spam")
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked)
	assert.Equal(t, "spam", blocked.BlockedReason)

	blockedOnly := true
	list, total, err := svc.ListUsers(ctx, repository.UserFilter{Blocked: &blockedOnly}, repository.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, member.ID, list[0].ID)

	unblocked, err := svc.Unblock(ctx, f.actor, member.ID)
	require.NoError(t, err)
	assert.False(t, unblocked.IsBlocked)

	assert.ElementsMatch(t, []string{models.ActionUserBlock, models.ActionUserUnblock}, f.auditActions(t))
}

func TestUserService_BlockedAdminCannotLogIn(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	ctx := context.Background()
	require.NoError(t, f.users.SetBlocked(ctx, f.admin.ID, true, "compromised", 0))

	_, err := svc.Login(ctx, "root@example.com", "password123")
	assertAppCode(t, err, models.CodeForbidden)
}

func TestUserService_SetAdmin(t *testing.T) {
	f := newFixture(t)
	svc := f.userService()
	ctx := context.Background()
	member := testutil.CreateUser(t, f.db, "member", false)

	promoted, err := svc.SetAdmin(ctx, f.actor, member.ID, true)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)

	admins, err := svc.ListAdmins(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 2)

	_, err = svc.SetAdmin(ctx, f.actor, f.admin.ID, false)
	assertAppCode(t, err, models.CodeValidation)

	_, err = svc.SetAdmin(ctx, Actor{}, 4242, true)
	assertAppCode(t, err, models.CodeNotFound)
}
