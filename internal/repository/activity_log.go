package repository

import (
	"context"
	"time"

	"adminhub/internal/models"

	"gorm.io/gorm"
)

// ActivityFilter narrows activity log listings.
type ActivityFilter struct {
	ActorID    uint
	Action     string
	EntityType string
	From       *time.Time
	To         *time.Time
}

// ActivityLogRepository stores the admin audit trail.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityFilter, page Page) ([]models.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	if err := r.db.WithContext(ctx).Omit("Actor").Create(entry).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityFilter, page Page) ([]models.ActivityLog, int64, error) {
	query := readDB(r.db).WithContext(ctx).Model(&models.ActivityLog{})
	if filter.ActorID != 0 {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var entries []models.ActivityLog
	if err := page.apply(query).Preload("Actor").Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return entries, total, nil
}
