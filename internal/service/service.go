// Package service holds the admin business logic between the HTTP handlers
// and the repositories.
package service

import (
	"context"
	"log/slog"

	"adminhub/internal/middleware"
	"adminhub/internal/notifications"
	"adminhub/internal/observability"
	"adminhub/internal/validation"

	"go.opentelemetry.io/otel/trace"
)

// Actor identifies the admin performing a mutation.
type Actor struct {
	ID uint
	IP string
}

// EventPublisher pushes admin events onto the live feed.
type EventPublisher interface {
	PublishAdmin(ctx context.Context, ev notifications.AdminEvent) error
}

// publish sends an admin event and only logs failures; a feed outage never
// fails the mutation that produced the event.
func publish(ctx context.Context, feed EventPublisher, eventType string, entityID, actorID uint, payload any) {
	if feed == nil {
		return
	}
	if err := feed.PublishAdmin(ctx, notifications.NewAdminEvent(eventType, entityID, actorID, payload)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish admin event",
			slog.String("type", eventType),
			slog.Uint64("entity_id", uint64(entityID)),
			slog.String("error", err.Error()))
	}
}

func startSpan(ctx context.Context, svc, method string) (context.Context, trace.Span) {
	return observability.GetTraceLayer().TraceService(ctx, svc, method)
}

func validateStruct(v any) error {
	return validation.Struct(v)
}
