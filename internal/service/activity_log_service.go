package service

import (
	"context"
	"log/slog"

	"adminhub/internal/middleware"
	"adminhub/internal/models"
	"adminhub/internal/repository"
)

// ActivityLogService records and lists the admin audit trail.
type ActivityLogService struct {
	repo repository.ActivityLogRepository
}

func NewActivityLogService(repo repository.ActivityLogRepository) *ActivityLogService {
	return &ActivityLogService{repo: repo}
}

// Record appends an audit entry. Failures are logged, not returned.
func (s *ActivityLogService) Record(ctx context.Context, actor Actor, action, entityType string, entityID uint, details map[string]any) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &models.ActivityLog{
		ActorID:    actor.ID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		IP:         actor.IP,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to write activity log",
			slog.String("action", action),
			slog.Uint64("entity_id", uint64(entityID)),
			slog.String("error", err.Error()))
	}
}

func (s *ActivityLogService) List(ctx context.Context, filter repository.ActivityFilter, page repository.Page) ([]models.ActivityLog, int64, error) {
	return s.repo.List(ctx, filter, page)
}
