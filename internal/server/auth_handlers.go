package server

import (
	"log/slog"
	"time"

	"adminhub/internal/middleware"
	"adminhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /admin/v1/auth/login
// @Summary Admin login
// @Description Exchanges admin credentials for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login request"
// @Success 200 {object} service.LoginResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if models.StatusForError(err) == fiber.StatusUnauthorized {
			middleware.Logger.WarnContext(c.UserContext(), "admin login failed", slog.String("ip", c.IP()))
		}
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// Me handles GET /admin/v1/auth/me
// @Summary Current admin
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	return c.JSON(user)
}

// Logout handles POST /admin/v1/auth/logout by revoking the presented token
// until it would have expired anyway.
// @Summary Revoke the current token
// @Tags auth
// @Success 204
// @Security BearerAuth
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals("tokenClaims").(middleware.TokenClaims)
	if !ok || claims.JTI == "" || s.redis == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err := s.redis.Set(c.UserContext(), revokedKey(claims.JTI), "1", ttl).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.SendStatus(fiber.StatusNoContent)
}
