package repository

import (
	"context"
	"errors"
	"time"

	"adminhub/internal/cache"
	"adminhub/internal/models"

	"gorm.io/gorm"
)

// MaxQueueCandidates caps the rows loaded for in-memory queue filtering.
const MaxQueueCandidates = 2000

// EventFilter carries the predicates pushed down to SQL before the queue
// pipeline runs in memory.
type EventFilter struct {
	Status     string
	PostType   string
	CategoryID *uint
	From       *time.Time
	To         *time.Time
}

// EventRepository defines persistence operations for live event posts.
type EventRepository interface {
	Candidates(ctx context.Context, filter EventFilter) ([]models.EventPost, error)
	GetByID(ctx context.Context, id uint) (*models.EventPost, error)
	Create(ctx context.Context, event *models.EventPost) error
	Transition(ctx context.Context, id uint, to models.EventStatus, reviewerID uint, reason string) (*models.EventPost, error)
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context, status models.EventStatus) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Candidates(ctx context.Context, filter EventFilter) ([]models.EventPost, error) {
	query := readDB(r.db).WithContext(ctx).
		Preload("User").
		Preload("Category")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PostType != "" {
		query = query.Where("post_type = ?", filter.PostType)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.From != nil {
		query = query.Where("COALESCE(event_time, created_at) >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("COALESCE(event_time, created_at) < ?", *filter.To)
	}

	var events []models.EventPost
	if err := query.Order("created_at DESC").Limit(MaxQueueCandidates).Find(&events).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (*models.EventPost, error) {
	var event models.EventPost
	if err := r.db.WithContext(ctx).Preload("User").Preload("Category").First(&event, id).Error; err != nil {
		return nil, notFoundOr(err, "Event", id)
	}
	return &event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.EventPost) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateEventQueue(ctx)
	return nil
}

// Transition moves a pending event to its decided status. The update is
// conditional on the row still being pending, so concurrent decisions on
// the same event resolve to exactly one winner.
func (r *eventRepository) Transition(ctx context.Context, id uint, to models.EventStatus, reviewerID uint, reason string) (*models.EventPost, error) {
	if !models.EventStatusPending.CanTransitionTo(to) {
		return nil, models.NewValidationError("Unsupported status transition")
	}

	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.EventPost{}).
		Where("id = ? AND status = ?", id, models.EventStatusPending).
		Updates(map[string]any{
			"status":              to,
			"rejection_reason":    reason,
			"reviewed_by_user_id": reviewerID,
			"reviewed_at":         now,
		})
	if result.Error != nil {
		return nil, models.NewInternalError(result.Error)
	}

	if result.RowsAffected == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, models.NewConflictError("Event is already " + string(current.Status))
	}

	cache.InvalidateEventQueue(ctx)
	return r.GetByID(ctx, id)
}

func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.EventPost{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Event", id)
	}
	cache.InvalidateEventQueue(ctx)
	return nil
}

func (r *eventRepository) CountByStatus(ctx context.Context, status models.EventStatus) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.EventPost{}).Where("status = ?", status).Count(&count).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
