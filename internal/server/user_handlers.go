package server

import (
	"adminhub/internal/models"
	"adminhub/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// ListUsers handles GET /admin/v1/users
// @Summary List app users
// @Tags users
// @Produce json
// @Param search query string false "Matches username, email or display name"
// @Param blocked query bool false "Only blocked or only active users"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ListResponse
// @Security BearerAuth
// @Router /users [get]
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageLimit)
	filter := repository.UserFilter{Search: c.Query("search")}
	if c.Query("blocked") != "" {
		blocked := c.QueryBool("blocked", false)
		filter.Blocked = &blocked
	}

	users, total, err := s.users.ListUsers(c.UserContext(), filter, page)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondList(c, users, page, total)
}

// BlockUser handles PATCH /admin/v1/users/:id/block
// @Summary Block a user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body object{reason=string} false "Reason"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/block [patch]
func (s *Server) BlockUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}
	user, err := s.users.Block(c.UserContext(), actor(c), id, req.Reason)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// UnblockUser handles PATCH /admin/v1/users/:id/unblock
// @Summary Unblock a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/unblock [patch]
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.users.Unblock(c.UserContext(), actor(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}
