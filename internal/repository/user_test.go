package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"adminhub/internal/models"
	"adminhub/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name          string
		userID        uint
		mockBehavior  func()
		expectedUser  *models.User
		expectedError bool
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "email"}).
					AddRow(1, "testuser", "test@example.com")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
			expectedUser: &models.User{ID: 1, Username: "testuser", Email: "test@example.com"},
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedError {
				assert.Error(t, err)
			} else if assert.NotNil(t, user) {
				assert.Equal(t, tt.expectedUser.Username, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(1, 1).
		WillReturnError(errors.New("connection timeout"))

	user, err := repo.GetByID(ctx, 1)
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		email := "test@example.com"
		rows := sqlmock.NewRows([]string{"id", "email"}).AddRow(1, email)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
			WithArgs(email, 1).
			WillReturnRows(rows)

		user, err := repo.GetByEmail(ctx, email)
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, email, user.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		email := "ghost@example.com"
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
			WithArgs(email, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		user, err := repo.GetByEmail(ctx, email)
		assert.NoError(t, err) // Should return nil, nil per implementation
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "newuser", Email: "new@example.com"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, user)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateIsConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{Username: "dupe", Email: "dupe@example.com"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListAndBlock(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, "root", true)
	alice := testutil.CreateUser(t, db, "alice", false)
	bob := testutil.CreateUser(t, db, "bob", false)
	require.NoError(t, db.Model(bob).Update("city", "Lisbon").Error)

	users, total, err := repo.List(ctx, UserFilter{Search: "ALI"}, Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, alice.ID, users[0].ID)

	require.NoError(t, repo.SetBlocked(ctx, alice.ID, true, "spam", admin.ID))

	blocked := true
	users, total, err = repo.List(ctx, UserFilter{Blocked: &blocked}, Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "spam", users[0].BlockedReason)
	require.NotNil(t, users[0].BlockedByUserID)
	assert.Equal(t, admin.ID, *users[0].BlockedByUserID)
	assert.NotNil(t, users[0].BlockedAt)

	ids, err := repo.RecipientIDs(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, ids)

	ids, err = repo.RecipientIDs(ctx, " lisbon ")
	require.NoError(t, err)
	assert.Equal(t, []uint{bob.ID}, ids)

	ids, err = repo.RecipientIDs(ctx, "Porto")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, repo.SetBlocked(ctx, alice.ID, false, "", admin.ID))
	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, got.IsBlocked)
	assert.Nil(t, got.BlockedByUserID)

	err = repo.SetBlocked(ctx, 9999, true, "", admin.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestUserRepository_GetByID_ServedFromCache(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	testutil.NewRedis(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "carol", false)

	first, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", first.Username)

	// bypass the repository so only the cached copy has the old name
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("username", "carol2").Error)

	cached, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", cached.Username)

	require.NoError(t, repo.SetAdmin(ctx, user.ID, true))
	fresh, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol2", fresh.Username)
	assert.True(t, fresh.IsAdmin)
}

func TestUserRepository_UpdateKeepsPassword(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "dave", false)
	hash := user.Password

	user.Password = ""
	user.DisplayName = "Dave"
	require.NoError(t, repo.Update(ctx, user))

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "Dave", stored.DisplayName)
	assert.Equal(t, hash, stored.Password)
}
