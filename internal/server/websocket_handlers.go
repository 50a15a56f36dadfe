package server

import (
	"log/slog"

	"adminhub/internal/featureflags"
	"adminhub/internal/middleware"
	"adminhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// feedUpgradeGuard rejects plain HTTP requests and requests made while the
// live feed is switched off.
func (s *Server) feedUpgradeGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s.featureFlags != nil && !s.featureFlags.EnabledGlobal(featureflags.AdminLiveFeed) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
				Error: "Live feed is disabled",
				Code:  "FEATURE_DISABLED",
			})
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	}
}

// AdminFeedHandler streams admin events (new SOS alerts, new reports and
// moderation decisions) to a connected admin.
// @Summary Live admin feed
// @Description WebSocket upgrade. Pass the bearer token as the token query parameter.
// @Tags feed
// @Param token query string true "Bearer token"
// @Success 101
// @Failure 401 {object} models.ErrorResponse
// @Failure 426 {object} models.ErrorResponse
// @Router /ws [get]
func (s *Server) AdminFeedHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("admin feed registration refused",
				slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		middleware.Logger.Info("admin feed connected", slog.Uint64("user_id", uint64(userID)))
		go client.WritePump()
		client.ReadPump()
		middleware.Logger.Info("admin feed disconnected", slog.Uint64("user_id", uint64(userID)))
	})
}
