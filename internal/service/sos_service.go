package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"adminhub/internal/middleware"
	"adminhub/internal/models"
	"adminhub/internal/notifications"
	"adminhub/internal/observability"
	"adminhub/internal/repository"
)

const maxSOSContacts = 10

// ContactNotAttempted is the failure reason of a contact no send reached.
const ContactNotAttempted = "not attempted"

// SOSContactInput is one emergency contact attached to an alert.
type SOSContactInput struct {
	Name  string `json:"name" validate:"max=120"`
	Phone string `json:"phone" validate:"required,max=40"`
}

// SOSInput is an alert raised from the mobile app.
type SOSInput struct {
	Latitude  float64           `json:"latitude" validate:"latitude"`
	Longitude float64           `json:"longitude" validate:"longitude"`
	Address   string            `json:"address" validate:"max=1000"`
	Message   string            `json:"message" validate:"max=2000"`
	Contacts  []SOSContactInput `json:"contacts" validate:"max=10,dive"`
}

type SOSService struct {
	repo       repository.SOSRepository
	users      repository.UserRepository
	sender     notifications.ContactSender
	dispatcher *notifications.Dispatcher
	audit      *ActivityLogService
	feed       EventPublisher
}

func NewSOSService(
	repo repository.SOSRepository,
	users repository.UserRepository,
	sender notifications.ContactSender,
	dispatcher *notifications.Dispatcher,
	audit *ActivityLogService,
	feed EventPublisher,
) *SOSService {
	if sender == nil {
		sender = notifications.LogSender{}
	}
	if dispatcher == nil {
		dispatcher = notifications.NewDispatcher(0)
	}
	return &SOSService{
		repo:       repo,
		users:      users,
		sender:     sender,
		dispatcher: dispatcher,
		audit:      audit,
		feed:       feed,
	}
}

// Ingest stores an alert for userID, messages every contact and derives the
// alert status from the per-contact results.
func (s *SOSService) Ingest(ctx context.Context, userID uint, in SOSInput) (event *models.SOSEvent, err error) {
	ctx, span := startSpan(ctx, "SOSService", "Ingest")
	defer func() { observability.EndSpan(span, err) }()

	in.Address = strings.TrimSpace(in.Address)
	in.Message = strings.TrimSpace(in.Message)
	for i := range in.Contacts {
		in.Contacts[i].Name = strings.TrimSpace(in.Contacts[i].Name)
		in.Contacts[i].Phone = strings.TrimSpace(in.Contacts[i].Phone)
	}
	if len(in.Contacts) > maxSOSContacts {
		return nil, models.NewValidationError("at most 10 contacts are allowed")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsBlocked {
		return nil, models.NewForbiddenError("Account is blocked")
	}

	event = &models.SOSEvent{
		UserID:    userID,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Address:   in.Address,
		Message:   in.Message,
	}
	// contacts stay failed until a send succeeds
	for _, c := range in.Contacts {
		event.Contacts = append(event.Contacts, models.SOSContact{
			Name:          c.Name,
			Phone:         c.Phone,
			Status:        models.ContactStatusFailed,
			FailureReason: ContactNotAttempted,
		})
	}
	event.Status = event.DeriveStatus()
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	text := sosText(user, event)
	outcome := s.dispatcher.Dispatch(ctx, len(event.Contacts), func(ctx context.Context, i int) error {
		contact := &event.Contacts[i]
		if sendErr := s.sender.Send(ctx, *contact, text); sendErr != nil {
			contact.Status = models.ContactStatusFailed
			contact.FailureReason = sendErr.Error()
			return sendErr
		}
		contact.Status = models.ContactStatusSent
		contact.FailureReason = ""
		return nil
	})
	for _, c := range event.Contacts {
		observability.SOSContactDeliveries.WithLabelValues(c.Status).Inc()
	}

	// the outcome is recorded even when the caller went away mid-dispatch
	persistCtx := context.WithoutCancel(ctx)
	if outcome.Skipped > 0 {
		middleware.Logger.WarnContext(persistCtx, "sos contacts not attempted",
			slog.Uint64("sos_id", uint64(event.ID)),
			slog.Int("skipped", outcome.Skipped))
	}
	event.Status = event.DeriveStatus()
	if err := s.repo.SaveDelivery(persistCtx, event); err != nil {
		return nil, err
	}

	publish(persistCtx, s.feed, notifications.EventSOSCreated, event.ID, userID, map[string]any{
		"status":    event.Status,
		"latitude":  event.Latitude,
		"longitude": event.Longitude,
		"address":   event.Address,
	})
	return event, nil
}

func sosText(user *models.User, event *models.SOSEvent) string {
	var b strings.Builder
	b.WriteString("SOS from ")
	b.WriteString(user.Name())
	if event.Address != "" {
		b.WriteString(" near ")
		b.WriteString(event.Address)
	}
	if event.Message != "" {
		b.WriteString(": ")
		b.WriteString(event.Message)
	}
	return b.String()
}

// SOSQuery narrows the SOS list. Dates are inclusive calendar days.
type SOSQuery struct {
	Status string
	From   *time.Time
	To     *time.Time
}

func (s *SOSService) List(ctx context.Context, q SOSQuery, page repository.Page) ([]models.SOSEvent, int64, error) {
	filter := repository.SOSFilter{Status: strings.ToUpper(strings.TrimSpace(q.Status)), From: q.From}
	if q.To != nil {
		end := q.To.AddDate(0, 0, 1)
		filter.To = &end
	}
	return s.repo.List(ctx, filter, page)
}

func (s *SOSService) Get(ctx context.Context, id uint) (*models.SOSEvent, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SOSService) Resolve(ctx context.Context, actor Actor, id uint, note string) (*models.SOSEvent, error) {
	note = strings.TrimSpace(note)
	if len(note) > 2000 {
		return nil, models.NewValidationError("note must not exceed 2000 characters")
	}
	event, err := s.repo.Resolve(ctx, id, actor.ID, note)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, models.ActionSOSResolve, "sos", id, map[string]any{"note": note})
	publish(ctx, s.feed, notifications.EventSOSResolved, id, actor.ID, nil)
	return event, nil
}
