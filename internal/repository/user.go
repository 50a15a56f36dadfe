package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"adminhub/internal/cache"
	"adminhub/internal/models"

	"gorm.io/gorm"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Search  string
	Blocked *bool
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter UserFilter, page Page) ([]models.User, int64, error)
	ListAdmins(ctx context.Context) ([]models.User, error)
	SetAdmin(ctx context.Context, id uint, admin bool) error
	SetBlocked(ctx context.Context, id uint, blocked bool, reason string, byUserID uint) error
	RecipientIDs(ctx context.Context, city string) ([]uint, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, "user", cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
			return notFoundOr(err, "User", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Update saves profile fields. The password hash is never written here
// because cached users carry no hash.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit("Password").Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter, page Page) ([]models.User, int64, error) {
	query := readDB(r.db).WithContext(ctx).Model(&models.User{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(display_name) LIKE ?", pattern, pattern, pattern)
	}
	if filter.Blocked != nil {
		query = query.Where("is_blocked = ?", *filter.Blocked)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var users []models.User
	if err := page.apply(query).Order("id ASC").Find(&users).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}

func (r *userRepository) ListAdmins(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := readDB(r.db).WithContext(ctx).Where("is_admin = ?", true).Order("id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) SetAdmin(ctx context.Context, id uint, admin bool) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_admin", admin)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) SetBlocked(ctx context.Context, id uint, blocked bool, reason string, byUserID uint) error {
	updates := map[string]any{
		"is_blocked":         blocked,
		"blocked_reason":     reason,
		"blocked_at":         nil,
		"blocked_by_user_id": nil,
	}
	if blocked {
		updates["blocked_at"] = time.Now().UTC()
		updates["blocked_by_user_id"] = byUserID
	}

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// RecipientIDs returns active, non-admin users, optionally limited to a city.
func (r *userRepository) RecipientIDs(ctx context.Context, city string) ([]uint, error) {
	query := readDB(r.db).WithContext(ctx).Model(&models.User{}).
		Where("is_blocked = ? AND is_admin = ?", false, false)
	if city != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(strings.TrimSpace(city)))
	}
	var ids []uint
	if err := query.Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
