// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"testing"

	"adminhub/internal/cache"
	"adminhub/internal/database"
	"adminhub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens an in-memory SQLite database with every persistent model migrated.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// each new connection would see its own empty :memory: database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// NewRedis starts a miniredis server and installs it as the package cache client.
func NewRedis(t testing.TB) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	return mr
}

// CreateUser inserts a user with password "password123".
func CreateUser(t testing.TB, db *gorm.DB, username string, admin bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: string(hash),
		IsAdmin:  admin,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateEvent inserts a live event owned by userID.
func CreateEvent(t testing.TB, db *gorm.DB, userID uint, title string, status models.EventStatus) *models.EventPost {
	t.Helper()
	event := &models.EventPost{
		UserID:    userID,
		Title:     title,
		PostType:  models.PostTypeGeneral,
		MediaType: models.MediaTypeNone,
		Status:    status,
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}
