package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"adminhub/internal/middleware"
	"adminhub/internal/models"
	"adminhub/internal/notifications"
	"adminhub/internal/observability"
	"adminhub/internal/repository"
)

// UserPusher delivers a payload to one app user.
type UserPusher interface {
	PublishUser(ctx context.Context, userID uint, payload string) error
}

// NotificationInput is an admin broadcast request.
type NotificationInput struct {
	Title    string `json:"title" validate:"required,max=200"`
	Message  string `json:"message" validate:"required,max=4000"`
	Audience string `json:"audience" validate:"omitempty,audience"`
}

// pushPayload is what app users receive on their channel.
type pushPayload struct {
	Type           string `json:"type"`
	NotificationID uint   `json:"notification_id"`
	Title          string `json:"title"`
	Message        string `json:"message"`
}

type NotificationService struct {
	repo       repository.NotificationRepository
	users      repository.UserRepository
	pusher     UserPusher
	dispatcher *notifications.Dispatcher
	audit      *ActivityLogService
	feed       EventPublisher
}

func NewNotificationService(
	repo repository.NotificationRepository,
	users repository.UserRepository,
	pusher UserPusher,
	dispatcher *notifications.Dispatcher,
	audit *ActivityLogService,
	feed EventPublisher,
) *NotificationService {
	if dispatcher == nil {
		dispatcher = notifications.NewDispatcher(0)
	}
	return &NotificationService{
		repo:       repo,
		users:      users,
		pusher:     pusher,
		dispatcher: dispatcher,
		audit:      audit,
		feed:       feed,
	}
}

func (s *NotificationService) List(ctx context.Context, status string, page repository.Page) ([]models.Notification, int64, error) {
	return s.repo.List(ctx, strings.ToUpper(strings.TrimSpace(status)), page)
}

func (s *NotificationService) Get(ctx context.Context, id uint) (*models.Notification, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores the broadcast and delivers it to every recipient in the
// audience before returning. The stored counters reflect the outcome.
func (s *NotificationService) Create(ctx context.Context, actor Actor, in NotificationInput) (n *models.Notification, err error) {
	ctx, span := startSpan(ctx, "NotificationService", "Create")
	defer func() { observability.EndSpan(span, err) }()

	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	in.Audience = strings.TrimSpace(in.Audience)
	if in.Audience == "" {
		in.Audience = models.AudienceAll
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	n = &models.Notification{
		Title:           in.Title,
		Message:         in.Message,
		Audience:        in.Audience,
		Status:          models.NotificationStatusPending,
		CreatedByUserID: actor.ID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	recipients, err := s.users.RecipientIDs(ctx, models.AudienceCity(in.Audience))
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(pushPayload{
		Type:           "notification",
		NotificationID: n.ID,
		Title:          n.Title,
		Message:        n.Message,
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	outcome := s.dispatcher.Dispatch(ctx, len(recipients), func(ctx context.Context, i int) error {
		return s.pusher.PublishUser(ctx, recipients[i], string(payload))
	})
	observability.NotificationDeliveries.WithLabelValues("delivered").Add(float64(outcome.Delivered))
	observability.NotificationDeliveries.WithLabelValues("failed").Add(float64(outcome.Failed))

	now := time.Now().UTC()
	n.TotalUsers = len(recipients)
	n.DeliveredUsers = outcome.Delivered
	n.FailedUsers = outcome.Failed
	n.Status = models.DeliveryStatus(n.TotalUsers, n.DeliveredUsers, n.FailedUsers)
	n.SentAt = &now
	if err := s.repo.UpdateDelivery(ctx, n); err != nil {
		return nil, err
	}
	if n.FailedUsers > 0 {
		middleware.Logger.WarnContext(ctx, "notification partially undelivered",
			slog.Uint64("notification_id", uint64(n.ID)),
			slog.Int("failed", n.FailedUsers),
			slog.Int("total", n.TotalUsers))
	}

	s.audit.Record(ctx, actor, models.ActionNotificationCreate, "notification", n.ID, map[string]any{
		"audience":  n.Audience,
		"total":     n.TotalUsers,
		"delivered": n.DeliveredUsers,
	})
	publish(ctx, s.feed, notifications.EventNotificationSent, n.ID, actor.ID, map[string]any{
		"status":    n.Status,
		"delivered": n.DeliveredUsers,
		"failed":    n.FailedUsers,
	})
	return n, nil
}
