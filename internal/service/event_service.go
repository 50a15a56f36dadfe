package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"adminhub/internal/cache"
	"adminhub/internal/eventqueue"
	"adminhub/internal/featureflags"
	"adminhub/internal/middleware"
	"adminhub/internal/models"
	"adminhub/internal/notifications"
	"adminhub/internal/observability"
	"adminhub/internal/repository"
	"adminhub/internal/validation"
)

// EventInput carries the editable content of a post or draft.
type EventInput struct {
	Title         string     `json:"title" validate:"required,max=300"`
	Description   string     `json:"description" validate:"max=5000"`
	CategoryID    *uint      `json:"category_id"`
	PostType      string     `json:"post_type" validate:"omitempty,post_type"`
	Hashtags      []string   `json:"hashtags" validate:"max=20,dive,max=50"`
	Latitude      *float64   `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64   `json:"longitude" validate:"omitempty,longitude"`
	Address       string     `json:"address" validate:"max=500"`
	City          string     `json:"city" validate:"max=120"`
	EventTime     *time.Time `json:"event_time"`
	AttachmentURL string     `json:"attachment_url" validate:"max=1000"`
	MediaType     string     `json:"media_type" validate:"omitempty,media_type"`
}

func (in *EventInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.City = strings.TrimSpace(in.City)
	in.PostType = strings.ToLower(strings.TrimSpace(in.PostType))
	if in.PostType == "" {
		in.PostType = models.PostTypeGeneral
	}
	if in.MediaType == "" {
		in.MediaType = models.MediaTypeNone
		if in.AttachmentURL != "" {
			in.MediaType = models.MediaTypeImage
		}
	}
	if err := validation.Struct(in); err != nil {
		return err
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return models.NewValidationError("latitude and longitude must be provided together")
	}
	return nil
}

// QueueQuery selects a page of the moderation queue.
type QueueQuery struct {
	Criteria      eventqueue.Criteria
	PostType      string
	CategoryID    *uint
	IncludeDrafts bool
	Limit         int
	Offset        int
}

// QueuePage is one page of filtered queue items plus the unpaged total.
type QueuePage struct {
	Items []eventqueue.Item `json:"items"`
	Total int               `json:"total"`
}

func (q QueueQuery) fingerprint() string {
	c := q.Criteria
	var b strings.Builder
	fmt.Fprintf(&b, "s=%s|c=%s|q=%s|city=%s|strict=%t|t=%s|drafts=%t|l=%d|o=%d",
		strings.ToLower(c.Status), strings.ToLower(c.Category), strings.ToLower(c.Search),
		strings.ToLower(c.City), c.StrictDistance, q.PostType, q.IncludeDrafts, q.Limit, q.Offset)
	if q.CategoryID != nil {
		fmt.Fprintf(&b, "|cid=%d", *q.CategoryID)
	}
	if c.Date != nil {
		fmt.Fprintf(&b, "|d=%s", c.Date.Format(time.DateOnly))
	}
	if c.DistanceKM != nil {
		fmt.Fprintf(&b, "|km=%g", *c.DistanceKM)
	}
	if c.Origin != nil {
		fmt.Fprintf(&b, "|o=%.5f,%.5f", c.Origin.Lat, c.Origin.Lng)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:12])
}

// EventService moderates live event posts.
type EventService struct {
	events     repository.EventRepository
	drafts     repository.DraftRepository
	categories repository.CategoryRepository
	audit      *ActivityLogService
	feed       EventPublisher
	flags      *featureflags.Manager
}

func NewEventService(
	events repository.EventRepository,
	drafts repository.DraftRepository,
	categories repository.CategoryRepository,
	audit *ActivityLogService,
	feed EventPublisher,
	flags *featureflags.Manager,
) *EventService {
	return &EventService{
		events:     events,
		drafts:     drafts,
		categories: categories,
		audit:      audit,
		feed:       feed,
		flags:      flags,
	}
}

// Queue runs the shared filter pipeline over stored posts, and drafts when
// requested. Coarse predicates are pushed down to SQL first.
func (s *EventService) Queue(ctx context.Context, q QueueQuery) (page *QueuePage, err error) {
	ctx, span := startSpan(ctx, "EventService", "Queue")
	defer func() { observability.EndSpan(span, err) }()

	q.Criteria.StrictDistance = s.flags.EnabledGlobal(featureflags.StrictDistance)
	q.Limit, q.Offset = clampPage(q.Limit, q.Offset)

	load := func() error {
		p, err := s.buildQueue(ctx, q)
		if err != nil {
			return err
		}
		page = p
		return nil
	}

	if !s.flags.EnabledGlobal(featureflags.EventQueueCache) {
		if err := load(); err != nil {
			return nil, err
		}
		return page, nil
	}

	var cached QueuePage
	err = cache.Aside(ctx, "event_queue", cache.EventQueuePageKey(ctx, q.fingerprint()), &cached, cache.EventQueueTTL, func() error {
		if err := load(); err != nil {
			return err
		}
		cached = *page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cached, nil
}

func (s *EventService) buildQueue(ctx context.Context, q QueueQuery) (*QueuePage, error) {
	filter := repository.EventFilter{PostType: q.PostType, CategoryID: q.CategoryID}
	status := strings.TrimSpace(q.Criteria.Status)
	if status != "" && !strings.EqualFold(status, eventqueue.FilterAll) {
		filter.Status = eventqueue.NormalizeStatus(status)
	}

	events, err := s.events.Candidates(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(events) >= repository.MaxQueueCandidates {
		middleware.Logger.WarnContext(ctx, "event queue candidates truncated; total under-reports",
			slog.Int("cap", repository.MaxQueueCandidates),
			slog.String("status", filter.Status))
	}

	var drafts []models.EventDraft
	if q.IncludeDrafts && (filter.Status == "" || filter.Status == string(models.EventStatusPending)) {
		if drafts, err = s.drafts.List(ctx); err != nil {
			return nil, err
		}
	}

	names, err := categoryNames(ctx, s.categories)
	if err != nil {
		return nil, err
	}

	items := eventqueue.Apply(eventqueue.Merge(events, drafts, names), q.Criteria)
	total := len(items)
	start := min(q.Offset, total)
	end := min(start+q.Limit, total)
	return &QueuePage{Items: items[start:end], Total: total}, nil
}

func (s *EventService) Get(ctx context.Context, id uint) (*models.EventPost, error) {
	return s.events.GetByID(ctx, id)
}

// Create publishes an admin-authored post. Admin posts skip the queue and
// are stored as approved by their author.
func (s *EventService) Create(ctx context.Context, actor Actor, in EventInput) (event *models.EventPost, err error) {
	ctx, span := startSpan(ctx, "EventService", "Create")
	defer func() { observability.EndSpan(span, err) }()

	if err := in.normalize(); err != nil {
		return nil, err
	}
	if err := ensureCategory(ctx, s.categories, in.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event = &models.EventPost{
		UserID:           actor.ID,
		Title:            in.Title,
		Description:      in.Description,
		AttachmentURL:    in.AttachmentURL,
		MediaType:        in.MediaType,
		Hashtags:         in.Hashtags,
		CategoryID:       in.CategoryID,
		PostType:         in.PostType,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		Address:          in.Address,
		City:             in.City,
		EventTime:        in.EventTime,
		Status:           models.EventStatusApproved,
		ReviewedByUserID: &actor.ID,
		ReviewedAt:       &now,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, models.ActionEventCreate, "event", event.ID, map[string]any{"title": event.Title})
	publish(ctx, s.feed, notifications.EventPostCreated, event.ID, actor.ID, nil)
	return event, nil
}

// Approve moves a pending post to Approved.
func (s *EventService) Approve(ctx context.Context, actor Actor, id uint) (*models.EventPost, error) {
	return s.decide(ctx, actor, id, models.EventStatusApproved, "")
}

// Reject moves a pending post to Rejected with an optional reason.
func (s *EventService) Reject(ctx context.Context, actor Actor, id uint, reason string) (*models.EventPost, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) > 1000 {
		return nil, models.NewValidationError("reason must not exceed 1000 characters")
	}
	return s.decide(ctx, actor, id, models.EventStatusRejected, reason)
}

func (s *EventService) decide(ctx context.Context, actor Actor, id uint, to models.EventStatus, reason string) (event *models.EventPost, err error) {
	action, eventType, auditAction := "approve", notifications.EventPostApproved, models.ActionEventApprove
	if to == models.EventStatusRejected {
		action, eventType, auditAction = "reject", notifications.EventPostRejected, models.ActionEventReject
	}

	ctx, span := startSpan(ctx, "EventService", action)
	defer func() {
		observability.RecordModeration(action, err)
		observability.EndSpan(span, err)
	}()

	event, err = s.events.Transition(ctx, id, to, actor.ID, reason)
	if err != nil {
		return nil, err
	}

	details := map[string]any{"title": event.Title}
	if reason != "" {
		details["reason"] = reason
	}
	s.audit.Record(ctx, actor, auditAction, "event", id, details)
	publish(ctx, s.feed, eventType, id, actor.ID, map[string]any{"status": event.Status})
	return event, nil
}

// Delete soft-deletes a post in any status.
func (s *EventService) Delete(ctx context.Context, actor Actor, id uint) (err error) {
	ctx, span := startSpan(ctx, "EventService", "Delete")
	defer func() {
		observability.RecordModeration("delete", err)
		observability.EndSpan(span, err)
	}()

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, actor, models.ActionEventDelete, "event", id, map[string]any{"title": event.Title})
	publish(ctx, s.feed, notifications.EventPostDeleted, id, actor.ID, nil)
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func categoryNames(ctx context.Context, repo repository.CategoryRepository) (map[uint]string, error) {
	if repo == nil {
		return nil, nil
	}
	list, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(list))
	for _, c := range list {
		names[c.ID] = c.Name
	}
	return names, nil
}

func ensureCategory(ctx context.Context, repo repository.CategoryRepository, id *uint) error {
	if id == nil || repo == nil {
		return nil
	}
	_, err := repo.GetByID(ctx, *id)
	if isNotFound(err) {
		return models.NewValidationError(fmt.Sprintf("category %d does not exist", *id))
	}
	return err
}
