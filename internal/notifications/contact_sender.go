package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"adminhub/internal/middleware"
	"adminhub/internal/models"
	"adminhub/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// ContactSender delivers an SOS alert to one emergency contact.
type ContactSender interface {
	Send(ctx context.Context, contact models.SOSContact, message string) error
}

type smsRequest struct {
	To      string `json:"to"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

// GatewaySender posts SOS alerts to an HTTP SMS gateway.
type GatewaySender struct {
	url     string
	token   string
	timeout time.Duration
}

// NewGatewaySender creates a sender for the gateway at url.
func NewGatewaySender(url, token string) *GatewaySender {
	return &GatewaySender{url: url, token: token, timeout: 10 * time.Second}
}

// Send posts one SMS. Any non-2xx answer is a failed delivery.
func (s *GatewaySender) Send(ctx context.Context, contact models.SOSContact, message string) (err error) {
	_, span := observability.GetTraceLayer().TraceOutbound(ctx, "sms_gateway", "send")
	defer func() { observability.EndSpan(span, err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	agent := fiber.Post(s.url)
	if s.token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+s.token)
	}
	agent.Timeout(s.timeout)
	agent.JSON(smsRequest{To: contact.Phone, Name: contact.Name, Message: message})

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("sms gateway: %w", errs[0])
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("sms gateway returned %d: %s", status, truncate(string(body), 200))
	}
	return nil
}

// LogSender only logs alerts. Used when no gateway is configured.
type LogSender struct{}

// Send logs the delivery and always succeeds.
func (LogSender) Send(ctx context.Context, contact models.SOSContact, message string) error {
	middleware.Logger.InfoContext(ctx, "sos alert (log only)",
		slog.String("contact", contact.Name),
		slog.String("phone", contact.Phone),
		slog.String("message", message))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
