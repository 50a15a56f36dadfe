package service

import (
	"context"

	"adminhub/internal/models"
	"adminhub/internal/notifications"
	"adminhub/internal/observability"
	"adminhub/internal/repository"
)

// DraftService manages admin drafts and their publication.
type DraftService struct {
	drafts     repository.DraftRepository
	categories repository.CategoryRepository
	audit      *ActivityLogService
	feed       EventPublisher
}

func NewDraftService(drafts repository.DraftRepository, categories repository.CategoryRepository, audit *ActivityLogService, feed EventPublisher) *DraftService {
	return &DraftService{drafts: drafts, categories: categories, audit: audit, feed: feed}
}

func (s *DraftService) List(ctx context.Context) ([]models.EventDraft, error) {
	return s.drafts.List(ctx)
}

func (s *DraftService) Get(ctx context.Context, id uint) (*models.EventDraft, error) {
	return s.drafts.GetByID(ctx, id)
}

func (s *DraftService) Create(ctx context.Context, actor Actor, in EventInput) (*models.EventDraft, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if err := ensureCategory(ctx, s.categories, in.CategoryID); err != nil {
		return nil, err
	}

	draft := &models.EventDraft{AuthorID: actor.ID}
	applyDraft(draft, in)
	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, models.ActionDraftCreate, "draft", draft.ID, map[string]any{"title": draft.Title})
	return draft, nil
}

// Update replaces the draft content. Authorship does not change.
func (s *DraftService) Update(ctx context.Context, actor Actor, id uint, in EventInput) (*models.EventDraft, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if err := ensureCategory(ctx, s.categories, in.CategoryID); err != nil {
		return nil, err
	}

	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyDraft(draft, in)
	draft.Category = nil
	if err := s.drafts.Update(ctx, draft); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, models.ActionDraftUpdate, "draft", draft.ID, map[string]any{"title": draft.Title})
	return draft, nil
}

func (s *DraftService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := s.drafts.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, models.ActionDraftDelete, "draft", id, nil)
	return nil
}

// Publish turns the draft into an approved live post.
func (s *DraftService) Publish(ctx context.Context, actor Actor, id uint) (event *models.EventPost, err error) {
	ctx, span := startSpan(ctx, "DraftService", "Publish")
	defer func() {
		observability.RecordModeration("publish", err)
		observability.EndSpan(span, err)
	}()

	event, err = s.drafts.Publish(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, models.ActionDraftPublish, "draft", id, map[string]any{"event_id": event.ID})
	publish(ctx, s.feed, notifications.EventDraftPublished, event.ID, actor.ID, map[string]any{"draft_id": id})
	return event, nil
}

func applyDraft(d *models.EventDraft, in EventInput) {
	d.Title = in.Title
	d.Description = in.Description
	d.AttachmentURL = in.AttachmentURL
	d.MediaType = in.MediaType
	d.Hashtags = in.Hashtags
	d.CategoryID = in.CategoryID
	d.PostType = in.PostType
	d.Latitude = in.Latitude
	d.Longitude = in.Longitude
	d.Address = in.Address
	d.City = in.City
	d.EventTime = in.EventTime
}
