package server

import (
	"strconv"
	"strings"

	"adminhub/internal/models"
	"adminhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListCategories handles GET /admin/v1/category
// @Summary List categories
// @Tags category
// @Produce json
// @Success 200 {object} ListResponse
// @Security BearerAuth
// @Router /category [get]
func (s *Server) ListCategories(c *fiber.Ctx) error {
	categories, err := s.categories.List(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(ListResponse{
		Data: categories,
		Meta: ListMeta{Limit: len(categories), Total: int64(len(categories))},
	})
}

// CreateCategory handles POST /admin/v1/category
// @Summary Create a category
// @Description Accepts JSON or multipart with an optional "icon" image.
// @Tags category
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} models.Category
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /category [post]
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var in service.CategoryInput

	if isMultipart(c) {
		in.Name = c.FormValue("name")
		if raw := strings.TrimSpace(c.FormValue("parent_id")); raw != "" {
			parent, err := strconv.ParseUint(raw, 10, 32)
			if err != nil || parent == 0 {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Invalid parent_id"))
			}
			id := uint(parent)
			in.ParentID = &id
		}

		upload, err := readUpload(c, "icon")
		if err != nil {
			return nil
		}
		if upload != nil {
			stored, err := s.attachments.Save(*upload, service.KindIcon)
			if err != nil {
				return models.RespondWithAppError(c, err)
			}
			in.IconURL = stored.URL
		}
	} else if err := parseBody(c, &in); err != nil {
		return nil
	}

	category, err := s.categories.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// DeleteCategory handles DELETE /admin/v1/category/:id
// @Summary Delete a category
// @Tags category
// @Param id path int true "Category ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /category/{id} [delete]
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.categories.Delete(c.UserContext(), actor(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
