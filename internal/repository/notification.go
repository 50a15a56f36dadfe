package repository

import (
	"context"

	"adminhub/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines persistence operations for broadcasts.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	UpdateDelivery(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, status string, page Page) ([]models.Notification, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Omit("CreatedBy").Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateDelivery persists the counters, status and sent time of n.
func (r *notificationRepository) UpdateDelivery(ctx context.Context, n *models.Notification) error {
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", n.ID).Updates(map[string]any{
		"status":          n.Status,
		"total_users":     n.TotalUsers,
		"delivered_users": n.DeliveredUsers,
		"failed_users":    n.FailedUsers,
		"sent_at":         n.SentAt,
	}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, status string, page Page) ([]models.Notification, int64, error) {
	query := readDB(r.db).WithContext(ctx).Model(&models.Notification{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var items []models.Notification
	if err := page.apply(query).Preload("CreatedBy").Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return items, total, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).Preload("CreatedBy").First(&n, id).Error; err != nil {
		return nil, notFoundOr(err, "Notification", id)
	}
	return &n, nil
}
