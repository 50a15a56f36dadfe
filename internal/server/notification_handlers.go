package server

import (
	"adminhub/internal/models"
	"adminhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListNotifications handles GET /admin/v1/notification
// @Summary List broadcast notifications
// @Tags notification
// @Produce json
// @Param status query string false "PENDING, SENT, PARTIAL_FAILED or FAILED"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ListResponse
// @Security BearerAuth
// @Router /notification [get]
func (s *Server) ListNotifications(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageLimit)
	items, total, err := s.notifications.List(c.UserContext(), c.Query("status"), page)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondList(c, items, page, total)
}

// GetNotification handles GET /admin/v1/notification/:id
// @Summary Get a broadcast notification
// @Tags notification
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} models.Notification
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /notification/{id} [get]
func (s *Server) GetNotification(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	n, err := s.notifications.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(n)
}

// CreateNotification handles POST /admin/v1/notification
// @Summary Broadcast a notification
// @Description Stores the notification, delivers it to the audience and records the delivery counters.
// @Tags notification
// @Accept json
// @Produce json
// @Param request body service.NotificationInput true "Notification"
// @Success 201 {object} models.Notification
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /notification [post]
func (s *Server) CreateNotification(c *fiber.Ctx) error {
	var in service.NotificationInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	n, err := s.notifications.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}
