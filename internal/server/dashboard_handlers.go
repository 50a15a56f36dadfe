package server

import (
	"strings"

	"adminhub/internal/models"
	"adminhub/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// ListActivityLogs handles GET /admin/v1/activity-log
// @Summary List the admin audit trail
// @Tags activity-log
// @Produce json
// @Param actor_id query int false "Admin user ID"
// @Param action query string false "Action, e.g. event.approve"
// @Param entity_type query string false "Entity type, e.g. event"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day, inclusive (YYYY-MM-DD)"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ListResponse
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /activity-log [get]
func (s *Server) ListActivityLogs(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageLimit)
	actorID, err := parseUintQuery(c, "actor_id")
	if err != nil {
		return nil
	}
	from, err := parseDate(c, "from")
	if err != nil {
		return nil
	}
	to, err := parseDate(c, "to")
	if err != nil {
		return nil
	}

	filter := repository.ActivityFilter{
		Action:     strings.TrimSpace(c.Query("action")),
		EntityType: strings.TrimSpace(c.Query("entity_type")),
		From:       from,
	}
	if actorID != nil {
		filter.ActorID = *actorID
	}
	if to != nil {
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	entries, total, err := s.activity.List(c.UserContext(), filter, page)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondList(c, entries, page, total)
}

// GetDashboardStats handles GET /admin/v1/dashboard/stats
// @Summary Dashboard counters
// @Tags dashboard
// @Produce json
// @Success 200 {object} service.DashboardStats
// @Security BearerAuth
// @Router /dashboard/stats [get]
func (s *Server) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := s.dashboard.Stats(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(stats)
}

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
// @Summary Feature flags
// @Tags dashboard
// @Produce json
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool}
// @Security BearerAuth
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
