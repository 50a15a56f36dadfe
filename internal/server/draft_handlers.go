package server

import (
	"adminhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListDrafts handles GET /admin/v1/event-post/drafts
// @Summary List drafts
// @Tags drafts
// @Produce json
// @Success 200 {object} ListResponse
// @Security BearerAuth
// @Router /event-post/drafts [get]
func (s *Server) ListDrafts(c *fiber.Ctx) error {
	drafts, err := s.drafts.List(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	total := int64(len(drafts))
	return c.JSON(ListResponse{
		Data: drafts,
		Meta: ListMeta{Limit: len(drafts), Total: total},
	})
}

// CreateDraft handles POST /admin/v1/event-post/drafts
// @Summary Create a draft
// @Tags drafts
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} models.EventDraft
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /event-post/drafts [post]
func (s *Server) CreateDraft(c *fiber.Ctx) error {
	in, err := s.parseEventInput(c)
	if err != nil {
		return nil
	}
	draft, err := s.drafts.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(draft)
}

// UpdateDraft handles PUT /admin/v1/event-post/drafts/:id
// @Summary Replace a draft
// @Tags drafts
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Draft ID"
// @Success 200 {object} models.EventDraft
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /event-post/drafts/{id} [put]
func (s *Server) UpdateDraft(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	in, err := s.parseEventInput(c)
	if err != nil {
		return nil
	}
	draft, err := s.drafts.Update(c.UserContext(), actor(c), id, in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(draft)
}

// DeleteDraft handles DELETE /admin/v1/event-post/drafts/:id
// @Summary Delete a draft
// @Tags drafts
// @Param id path int true "Draft ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /event-post/drafts/{id} [delete]
func (s *Server) DeleteDraft(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.drafts.Delete(c.UserContext(), actor(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PublishDraft handles POST /admin/v1/event-post/drafts/:id/publish
// @Summary Publish a draft as an approved post
// @Tags drafts
// @Produce json
// @Param id path int true "Draft ID"
// @Success 201 {object} models.EventPost
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /event-post/drafts/{id}/publish [post]
func (s *Server) PublishDraft(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	event, err := s.drafts.Publish(c.UserContext(), actor(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}
