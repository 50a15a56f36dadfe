package middleware

import (
	"errors"
	"fmt"
	"strings"

	"adminhub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Route groups attached to request spans as adminhub.route_group.
const (
	RouteGroupAdmin   = "admin"
	RouteGroupFeed    = "feed"
	RouteGroupHealth  = "health"
	RouteGroupMetrics = "metrics"
	RouteGroupOther   = "other"
)

// RouteGroup classifies a request path relative to the admin API prefix.
func RouteGroup(apiPrefix, path string) string {
	switch {
	case path == apiPrefix+"/ws":
		return RouteGroupFeed
	case path == apiPrefix || strings.HasPrefix(path, apiPrefix+"/"):
		return RouteGroupAdmin
	case strings.HasPrefix(path, "/health"):
		return RouteGroupHealth
	case path == "/metrics":
		return RouteGroupMetrics
	default:
		return RouteGroupOther
	}
}

// TracingMiddleware opens a server span per request. The span is renamed to
// the matched route template once routing is done, so ids in the path do not
// explode span cardinality, and it carries the acting admin once auth ran.
func TracingMiddleware(apiPrefix string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		path := c.Path()
		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.path", path),
				attribute.String("http.ip", c.IP()),
				attribute.String("http.user_agent", c.Get(fiber.HeaderUserAgent)),
				attribute.String("adminhub.route_group", RouteGroup(apiPrefix, path)),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Locals("spanID", span.SpanContext().SpanID().String())
		c.Set("X-Trace-ID", traceID)
		if requestID := c.Locals("requestid"); requestID != nil {
			span.SetAttributes(attribute.String("request.id", fmt.Sprintf("%v", requestID)))
		}

		c.SetUserContext(ctx)
		err := c.Next()

		if route := c.Route(); route != nil && route.Path != "" && route.Path != "/" {
			span.SetName(c.Method() + " " + route.Path)
			span.SetAttributes(attribute.String("http.route", route.Path))
		}

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
			span.RecordError(err)
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}

		if userID, ok := c.Locals("userID").(uint); ok && userID != 0 {
			span.SetAttributes(attribute.Int64("adminhub.admin_id", int64(userID)))
		}
		return err
	}
}
