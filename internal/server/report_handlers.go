package server

import (
	"adminhub/internal/models"
	"adminhub/internal/repository"
	"adminhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReport handles POST /admin/v1/report, filed by app users.
// @Summary Report a post, comment or user
// @Tags report
// @Accept json
// @Produce json
// @Param request body object{target_type=string,target_id=int,reason=string,details=string} true "Report"
// @Success 201 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /report [post]
func (s *Server) CreateReport(c *fiber.Ctx) error {
	if _, err := s.currentUser(c); err != nil {
		return nil
	}

	var in service.ReportInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.ReporterID = c.Locals("userID").(uint)

	report, err := s.reports.Create(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// ListReports handles GET /admin/v1/report
// @Summary List reports
// @Tags report
// @Produce json
// @Param status query string false "OPEN or RESOLVED"
// @Param target_type query string false "POST, COMMENT or USER"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ListResponse
// @Security BearerAuth
// @Router /report [get]
func (s *Server) ListReports(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageLimit)
	reports, total, err := s.reports.List(c.UserContext(), repository.ReportFilter{
		Status:     c.Query("status"),
		TargetType: c.Query("target_type"),
	}, page)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondList(c, reports, page, total)
}

// GetReport handles GET /admin/v1/report/:id
// @Summary Get a report
// @Tags report
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} models.Report
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /report/{id} [get]
func (s *Server) GetReport(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	report, err := s.reports.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(report)
}

// ResolveReport handles PATCH /admin/v1/report/:id/resolve
// @Summary Resolve a report
// @Description Applies the action (none, delete_content, block_user) and closes the report.
// @Tags report
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Param request body object{note=string,action=string} true "Resolution"
// @Success 200 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /report/{id}/resolve [patch]
func (s *Server) ResolveReport(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.ResolveReportInput
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return nil
		}
	}
	report, err := s.reports.Resolve(c.UserContext(), actor(c), id, in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(report)
}
