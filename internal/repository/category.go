package repository

import (
	"context"
	"strings"

	"adminhub/internal/cache"
	"adminhub/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
	CountChildren(ctx context.Context, id uint) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// List returns all categories ordered by name, served from Redis when warm.
func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := cache.Aside(ctx, "categories", cache.CategoryListKey, &categories, cache.CategoryTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFoundOr(err, "Category", id)
	}
	return &category, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	var existing int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("LOWER(name) = ?", strings.ToLower(category.Name)).
		Count(&existing).Error; err != nil {
		return models.NewInternalError(err)
	}
	if existing > 0 {
		return models.NewConflictError("Category already exists")
	}

	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Category already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateCategories(ctx)
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Category", id)
	}
	cache.InvalidateCategories(ctx)
	cache.InvalidateEventQueue(ctx)
	return nil
}

func (r *categoryRepository) CountChildren(ctx context.Context, id uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("parent_id = ?", id).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
