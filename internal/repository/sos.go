package repository

import (
	"context"
	"time"

	"adminhub/internal/cache"
	"adminhub/internal/models"

	"gorm.io/gorm"
)

// SOSFilter narrows SOS listings. From is inclusive, To exclusive.
type SOSFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
}

// SOSRepository defines persistence operations for SOS alerts.
type SOSRepository interface {
	Create(ctx context.Context, event *models.SOSEvent) error
	SaveDelivery(ctx context.Context, event *models.SOSEvent) error
	List(ctx context.Context, filter SOSFilter, page Page) ([]models.SOSEvent, int64, error)
	GetByID(ctx context.Context, id uint) (*models.SOSEvent, error)
	Resolve(ctx context.Context, id, resolverID uint, note string) (*models.SOSEvent, error)
	CountActive(ctx context.Context) (int64, error)
}

type sosRepository struct {
	db *gorm.DB
}

// NewSOSRepository creates a new SOS repository
func NewSOSRepository(db *gorm.DB) SOSRepository {
	return &sosRepository{db: db}
}

// Create stores the event together with its contacts.
func (r *sosRepository) Create(ctx context.Context, event *models.SOSEvent) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateDashboard(ctx)
	return nil
}

// SaveDelivery persists contact delivery outcomes and the derived event status.
func (r *sosRepository) SaveDelivery(ctx context.Context, event *models.SOSEvent) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range event.Contacts {
			c := &event.Contacts[i]
			if err := tx.Model(&models.SOSContact{}).Where("id = ?", c.ID).Updates(map[string]any{
				"status":         c.Status,
				"failure_reason": c.FailureReason,
			}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.SOSEvent{}).Where("id = ?", event.ID).Update("status", event.Status).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateDashboard(ctx)
	return nil
}

func (r *sosRepository) List(ctx context.Context, filter SOSFilter, page Page) ([]models.SOSEvent, int64, error) {
	query := readDB(r.db).WithContext(ctx).Model(&models.SOSEvent{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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

	var events []models.SOSEvent
	if err := page.apply(query).Preload("User").Preload("Contacts").Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return events, total, nil
}

func (r *sosRepository) GetByID(ctx context.Context, id uint) (*models.SOSEvent, error) {
	var event models.SOSEvent
	if err := r.db.WithContext(ctx).Preload("User").Preload("Contacts").First(&event, id).Error; err != nil {
		return nil, notFoundOr(err, "SOS event", id)
	}
	return &event, nil
}

func (r *sosRepository) Resolve(ctx context.Context, id, resolverID uint, note string) (*models.SOSEvent, error) {
	result := r.db.WithContext(ctx).Model(&models.SOSEvent{}).
		Where("id = ? AND status <> ?", id, models.SOSStatusResolved).
		Updates(map[string]any{
			"status":              models.SOSStatusResolved,
			"resolved_by_user_id": resolverID,
			"resolved_at":         time.Now().UTC(),
			"resolution_note":     note,
		})
	if result.Error != nil {
		return nil, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, models.NewConflictError("SOS event is already resolved")
	}
	cache.InvalidateDashboard(ctx)
	return r.GetByID(ctx, id)
}

// CountActive counts SOS events that are not resolved yet.
func (r *sosRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.SOSEvent{}).Where("status <> ?", models.SOSStatusResolved).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
