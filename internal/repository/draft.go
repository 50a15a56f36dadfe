package repository

import (
	"context"
	"time"

	"adminhub/internal/cache"
	"adminhub/internal/models"

	"gorm.io/gorm"
)

// DraftRepository defines persistence operations for admin drafts.
type DraftRepository interface {
	List(ctx context.Context) ([]models.EventDraft, error)
	GetByID(ctx context.Context, id uint) (*models.EventDraft, error)
	Create(ctx context.Context, draft *models.EventDraft) error
	Update(ctx context.Context, draft *models.EventDraft) error
	Delete(ctx context.Context, id uint) error
	Publish(ctx context.Context, id uint, reviewerID uint) (*models.EventPost, error)
}

type draftRepository struct {
	db *gorm.DB
}

// NewDraftRepository creates a new draft repository
func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) List(ctx context.Context) ([]models.EventDraft, error) {
	var drafts []models.EventDraft
	err := readDB(r.db).WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Order("created_at DESC").
		Limit(MaxQueueCandidates).
		Find(&drafts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return drafts, nil
}

func (r *draftRepository) GetByID(ctx context.Context, id uint) (*models.EventDraft, error) {
	var draft models.EventDraft
	if err := r.db.WithContext(ctx).Preload("Author").Preload("Category").First(&draft, id).Error; err != nil {
		return nil, notFoundOr(err, "Draft", id)
	}
	return &draft, nil
}

func (r *draftRepository) Create(ctx context.Context, draft *models.EventDraft) error {
	if err := r.db.WithContext(ctx).Create(draft).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateEventQueue(ctx)
	return nil
}

func (r *draftRepository) Update(ctx context.Context, draft *models.EventDraft) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Category").Save(draft).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateEventQueue(ctx)
	return nil
}

func (r *draftRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.EventDraft{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Draft", id)
	}
	cache.InvalidateEventQueue(ctx)
	return nil
}

// Publish turns a draft into an approved live post and removes the draft in
// one transaction.
func (r *draftRepository) Publish(ctx context.Context, id uint, reviewerID uint) (*models.EventPost, error) {
	var event models.EventPost
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var draft models.EventDraft
		if err := tx.First(&draft, id).Error; err != nil {
			return notFoundOr(err, "Draft", id)
		}

		now := time.Now().UTC()
		event = models.EventPost{
			UserID:           draft.AuthorID,
			Title:            draft.Title,
			Description:      draft.Description,
			AttachmentURL:    draft.AttachmentURL,
			MediaType:        draft.MediaType,
			Hashtags:         draft.Hashtags,
			CategoryID:       draft.CategoryID,
			PostType:         draft.PostType,
			Latitude:         draft.Latitude,
			Longitude:        draft.Longitude,
			Address:          draft.Address,
			City:             draft.City,
			EventTime:        draft.EventTime,
			Status:           models.EventStatusApproved,
			ReviewedByUserID: &reviewerID,
			ReviewedAt:       &now,
		}
		if err := tx.Create(&event).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Delete(&models.EventDraft{}, draft.ID).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateEventQueue(ctx)
	return &event, nil
}
