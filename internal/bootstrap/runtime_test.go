package bootstrap

import (
	"testing"

	"adminhub/internal/config"
	"adminhub/internal/models"
	"adminhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestEnsureDevRootAdmin(t *testing.T) {
	t.Run("skipped outside development", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		cfg := &config.Config{Env: "production", DevBootstrapRoot: true, DevRootPassword: "secret"}
		require.NoError(t, EnsureDevRootAdmin(cfg, db))

		var count int64
		require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("requires a password", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		cfg := &config.Config{Env: "development", DevBootstrapRoot: true}
		assert.Error(t, EnsureDevRootAdmin(cfg, db))
	})

	t.Run("creates user one", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		cfg := &config.Config{Env: "development", DevBootstrapRoot: true, DevRootPassword: "letmein123"}
		require.NoError(t, EnsureDevRootAdmin(cfg, db))

		var root models.User
		require.NoError(t, db.First(&root, 1).Error)
		assert.True(t, root.IsAdmin)
		assert.Equal(t, "adminhub_root", root.Username)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(root.Password), []byte("letmein123")))
	})

	t.Run("promotes and unblocks an existing user one", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		existing := testutil.CreateUser(t, db, "first", false)
		require.NoError(t, db.Model(existing).Update("is_blocked", true).Error)

		cfg := &config.Config{Env: "development", DevBootstrapRoot: true, DevRootPassword: "letmein123"}
		require.NoError(t, EnsureDevRootAdmin(cfg, db))

		var root models.User
		require.NoError(t, db.First(&root, existing.ID).Error)
		assert.True(t, root.IsAdmin)
		assert.False(t, root.IsBlocked)
		assert.Equal(t, "first", root.Username)
	})
}
