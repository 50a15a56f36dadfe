package service

import (
	"context"
	"errors"
	"strings"

	"adminhub/internal/models"
	"adminhub/internal/notifications"
	"adminhub/internal/observability"
	"adminhub/internal/repository"
)

// ReportInput is a complaint filed from the mobile app.
type ReportInput struct {
	ReporterID uint   `json:"reporter_id" validate:"required"`
	TargetType string `json:"target_type" validate:"required,report_target"`
	TargetID   uint   `json:"target_id" validate:"required"`
	Reason     string `json:"reason" validate:"required,max=200"`
	Details    string `json:"details" validate:"max=4000"`
}

// ResolveReportInput is the moderator's decision on a report.
type ResolveReportInput struct {
	Note   string `json:"note" validate:"max=2000"`
	Action string `json:"action" validate:"omitempty,report_action"`
}

type ReportService struct {
	reports  repository.ReportRepository
	events   repository.EventRepository
	comments repository.CommentRepository
	users    *UserService
	userRepo repository.UserRepository
	audit    *ActivityLogService
	feed     EventPublisher
}

func NewReportService(
	reports repository.ReportRepository,
	events repository.EventRepository,
	comments repository.CommentRepository,
	userRepo repository.UserRepository,
	users *UserService,
	audit *ActivityLogService,
	feed EventPublisher,
) *ReportService {
	return &ReportService{
		reports:  reports,
		events:   events,
		comments: comments,
		users:    users,
		userRepo: userRepo,
		audit:    audit,
		feed:     feed,
	}
}

// Create files a report and captures a snapshot of the reported content so
// moderators can still see it after the target changes or disappears.
func (s *ReportService) Create(ctx context.Context, in ReportInput) (*models.Report, error) {
	in.TargetType = strings.ToUpper(strings.TrimSpace(in.TargetType))
	in.Reason = strings.TrimSpace(in.Reason)
	in.Details = strings.TrimSpace(in.Details)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	report := &models.Report{
		ReporterID: in.ReporterID,
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
		Reason:     in.Reason,
		Details:    in.Details,
		Status:     models.ReportStatusOpen,
	}
	if err := s.captureSnapshot(ctx, report); err != nil {
		return nil, err
	}
	if report.ReportedUserID != nil && *report.ReportedUserID == in.ReporterID && in.TargetType == models.ReportTargetUser {
		return nil, models.NewValidationError("You cannot report yourself")
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	publish(ctx, s.feed, notifications.EventReportCreated, report.ID, in.ReporterID, map[string]any{
		"target_type": report.TargetType,
		"target_id":   report.TargetID,
		"reason":      report.Reason,
	})
	return report, nil
}

func (s *ReportService) captureSnapshot(ctx context.Context, report *models.Report) error {
	switch report.TargetType {
	case models.ReportTargetPost:
		event, err := s.events.GetByID(ctx, report.TargetID)
		if err != nil {
			return err
		}
		owner := event.UserID
		report.ReportedUserID = &owner
		report.Snapshot = models.ReportSnapshot{
			Title:    event.Title,
			Body:     event.Description,
			MediaURL: event.AttachmentURL,
		}
		if event.User != nil {
			report.Snapshot.Author = event.User.Name()
		}
	case models.ReportTargetComment:
		comment, err := s.comments.GetByID(ctx, report.TargetID)
		if err != nil {
			return err
		}
		owner := comment.UserID
		report.ReportedUserID = &owner
		report.Snapshot = models.ReportSnapshot{Body: comment.Content}
		if comment.User != nil {
			report.Snapshot.Author = comment.User.Name()
		}
	case models.ReportTargetUser:
		user, err := s.userRepo.GetByID(ctx, report.TargetID)
		if err != nil {
			return err
		}
		id := user.ID
		report.ReportedUserID = &id
		report.Snapshot = models.ReportSnapshot{Author: user.Name(), MediaURL: user.AvatarURL}
	}
	return nil
}

func (s *ReportService) List(ctx context.Context, filter repository.ReportFilter, page repository.Page) ([]models.Report, int64, error) {
	filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))
	filter.TargetType = strings.ToUpper(strings.TrimSpace(filter.TargetType))
	return s.reports.List(ctx, filter, page)
}

func (s *ReportService) Get(ctx context.Context, id uint) (*models.Report, error) {
	return s.reports.GetByID(ctx, id)
}

// Resolve closes a report, applying the chosen action first. Content that
// is already gone does not block resolution.
func (s *ReportService) Resolve(ctx context.Context, actor Actor, id uint, in ResolveReportInput) (report *models.Report, err error) {
	ctx, span := startSpan(ctx, "ReportService", "Resolve")
	defer func() {
		observability.RecordModeration("resolve_report", err)
		observability.EndSpan(span, err)
	}()

	in.Note = strings.TrimSpace(in.Note)
	in.Action = strings.ToLower(strings.TrimSpace(in.Action))
	if in.Action == "" {
		in.Action = models.ReportActionNone
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	current, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == models.ReportStatusResolved {
		return nil, models.NewConflictError("Report is already resolved")
	}
	if err := s.applyAction(ctx, actor, current, in.Action); err != nil {
		return nil, err
	}

	report, err = s.reports.Resolve(ctx, id, actor.ID, in.Note, in.Action)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, models.ActionReportResolve, "report", id, map[string]any{
		"action": in.Action,
		"note":   in.Note,
	})
	publish(ctx, s.feed, notifications.EventReportResolved, id, actor.ID, map[string]any{"action": in.Action})
	return report, nil
}

func (s *ReportService) applyAction(ctx context.Context, actor Actor, report *models.Report, action string) error {
	switch action {
	case models.ReportActionDeleteContent:
		var err error
		switch report.TargetType {
		case models.ReportTargetPost:
			err = s.events.Delete(ctx, report.TargetID)
			if err == nil {
				s.audit.Record(ctx, actor, models.ActionEventDelete, "event", report.TargetID, map[string]any{"report_id": report.ID})
			}
		case models.ReportTargetComment:
			err = s.comments.Delete(ctx, report.TargetID)
		default:
			return models.NewValidationError("delete_content only applies to posts and comments")
		}
		if isNotFound(err) {
			return nil
		}
		return err
	case models.ReportActionBlockUser:
		if report.ReportedUserID == nil {
			return models.NewValidationError("Report has no reported user to block")
		}
		_, err := s.users.Block(ctx, actor, *report.ReportedUserID, "Blocked after report: "+report.Reason)
		return err
	}
	return nil
}

func isNotFound(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == models.CodeNotFound
}
