package notifications

import (
	"context"
	"net"
	"testing"

	"adminhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startGateway(t *testing.T, handler fiber.Handler) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post("/sms", handler)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String() + "/sms"
}

func TestGatewaySender_Send(t *testing.T) {
	var got smsRequest
	var auth string
	url := startGateway(t, func(c *fiber.Ctx) error {
		auth = c.Get(fiber.HeaderAuthorization)
		if err := c.BodyParser(&got); err != nil {
			return err
		}
		if got.To == "+000" {
			return c.Status(fiber.StatusBadGateway).SendString("carrier down")
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	sender := NewGatewaySender(url, "secret")
	contact := models.SOSContact{Name: "Mum", Phone: "+351900000001"}

	require.NoError(t, sender.Send(context.Background(), contact, "help"))
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, smsRequest{To: "+351900000001", Name: "Mum", Message: "help"}, got)

	err := sender.Send(context.Background(), models.SOSContact{Phone: "+000"}, "help")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "carrier down")
}

func TestGatewaySender_CancelledContext(t *testing.T) {
	sender := NewGatewaySender("http://127.0.0.1:1/sms", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sender.Send(ctx, models.SOSContact{Phone: "1"}, "x"), context.Canceled)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), models.SOSContact{Phone: "1"}, "x"))
}
