package server

import (
	"adminhub/internal/models"
	"adminhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// IngestSOS handles POST /admin/v1/sos, sent by the mobile app.
// @Summary Raise an SOS alert
// @Description Stores the alert and sends it to the caller's emergency contacts.
// @Tags sos
// @Accept json
// @Produce json
// @Param request body service.SOSInput true "Alert"
// @Success 201 {object} models.SOSEvent
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /sos [post]
func (s *Server) IngestSOS(c *fiber.Ctx) error {
	var in service.SOSInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	event, err := s.sos.Ingest(c.UserContext(), c.Locals("userID").(uint), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// ListSOS handles GET /admin/v1/sos
// @Summary List SOS alerts
// @Tags sos
// @Produce json
// @Param status query string false "SENT, PARTIAL_FAILED, FAILED or RESOLVED"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day, inclusive (YYYY-MM-DD)"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ListResponse
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /sos [get]
func (s *Server) ListSOS(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageLimit)
	from, err := parseDate(c, "from")
	if err != nil {
		return nil
	}
	to, err := parseDate(c, "to")
	if err != nil {
		return nil
	}
	if from != nil && to != nil && to.Before(*from) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("to must not be before from"))
	}

	events, total, err := s.sos.List(c.UserContext(), service.SOSQuery{
		Status: c.Query("status"),
		From:   from,
		To:     to,
	}, page)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondList(c, events, page, total)
}

// GetSOS handles GET /admin/v1/sos/:id
// @Summary Get an SOS alert with its contacts
// @Tags sos
// @Produce json
// @Param id path int true "SOS ID"
// @Success 200 {object} models.SOSEvent
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /sos/{id} [get]
func (s *Server) GetSOS(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	event, err := s.sos.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(event)
}

// ResolveSOS handles PATCH /admin/v1/sos/:id/resolve
// @Summary Resolve an SOS alert
// @Tags sos
// @Accept json
// @Produce json
// @Param id path int true "SOS ID"
// @Param request body object{note=string} false "Resolution note"
// @Success 200 {object} models.SOSEvent
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /sos/{id}/resolve [patch]
func (s *Server) ResolveSOS(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Note string `json:"note"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}
	event, err := s.sos.Resolve(c.UserContext(), actor(c), id, req.Note)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(event)
}
