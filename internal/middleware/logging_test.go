package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_AddsContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("production", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, uint(42))
	logger.InfoContext(ctx, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "req-1", record["request_id"])
	assert.EqualValues(t, 42, record["user_id"])
}

func TestContextMiddleware_PropagatesRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(ContextMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		rid, _ := c.UserContext().Value(RequestIDKey).(string)
		return c.SendString(rid)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "fixed-id")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	assert.Equal(t, "fixed-id", body.String())
}
