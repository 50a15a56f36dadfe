package server

import (
	"strconv"
	"strings"
	"time"

	"adminhub/internal/eventqueue"
	"adminhub/internal/models"
	"adminhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// eventForm is the multipart shape of an event post or draft. JSON requests
// decode straight into service.EventInput.
type eventForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	CategoryID  string `form:"category_id"`
	PostType    string `form:"post_type"`
	Hashtags    string `form:"hashtags"`
	Latitude    string `form:"latitude"`
	Longitude   string `form:"longitude"`
	Address     string `form:"address"`
	City        string `form:"city"`
	EventTime   string `form:"event_time"`
}

func (f eventForm) input() (service.EventInput, error) {
	in := service.EventInput{
		Title:       f.Title,
		Description: f.Description,
		PostType:    f.PostType,
		Address:     f.Address,
		City:        f.City,
	}
	if raw := strings.TrimSpace(f.CategoryID); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return in, models.NewValidationError("Invalid category_id")
		}
		v := uint(id)
		in.CategoryID = &v
	}
	for tag := range strings.SplitSeq(f.Hashtags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			in.Hashtags = append(in.Hashtags, tag)
		}
	}
	var err error
	if in.Latitude, err = optionalFloat(f.Latitude, "latitude"); err != nil {
		return in, err
	}
	if in.Longitude, err = optionalFloat(f.Longitude, "longitude"); err != nil {
		return in, err
	}
	if raw := strings.TrimSpace(f.EventTime); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return in, models.NewValidationError("Invalid event_time, expected RFC 3339")
		}
		in.EventTime = &t
	}
	return in, nil
}

func optionalFloat(raw, name string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, models.NewValidationError("Invalid " + name)
	}
	return &v, nil
}

// parseEventInput reads an event body as JSON or as a multipart form with an
// optional "attachment" file, which is stored before the input is returned.
func (s *Server) parseEventInput(c *fiber.Ctx) (service.EventInput, error) {
	var in service.EventInput
	if !isMultipart(c) {
		if err := parseBody(c, &in); err != nil {
			return in, err
		}
		return in, nil
	}

	var form eventForm
	if err := parseBody(c, &form); err != nil {
		return in, err
	}
	in, err := form.input()
	if err != nil {
		_ = models.RespondWithAppError(c, err)
		return in, errResponseWritten
	}

	upload, err := readUpload(c, "attachment")
	if err != nil {
		return in, err
	}
	if upload != nil {
		stored, err := s.attachments.Save(*upload, service.KindPostMedia)
		if err != nil {
			_ = models.RespondWithAppError(c, err)
			return in, errResponseWritten
		}
		in.AttachmentURL = stored.URL
		in.MediaType = stored.MediaType
	}
	return in, nil
}

// ListEventQueue handles GET /admin/v1/event-post
// @Summary List the moderation queue
// @Description Filters stored posts (and drafts when include_drafts=true) through the shared queue pipeline.
// @Tags event-post
// @Produce json
// @Param status query string false "Pending, Approved, Rejected or all"
// @Param category query string false "Normalized category or category name"
// @Param category_id query int false "Category ID"
// @Param type query string false "Post type"
// @Param search query string false "Free-text search"
// @Param date query string false "Event day (YYYY-MM-DD)"
// @Param lat query number false "Origin latitude; requires lng"
// @Param lng query number false "Origin longitude; requires lat"
// @Param distance_km query number false "Maximum distance from the origin"
// @Param city query string false "City"
// @Param include_drafts query bool false "Merge drafts into the queue"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ListResponse
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /event-post [get]
func (s *Server) ListEventQueue(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageLimit)

	day, err := parseDate(c, "date")
	if err != nil {
		return nil
	}
	categoryID, err := parseUintQuery(c, "category_id")
	if err != nil {
		return nil
	}

	criteria := eventqueue.Criteria{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Date:     day,
		City:     c.Query("city"),
	}

	lat, latErr := optionalFloat(c.Query("lat"), "lat")
	lng, lngErr := optionalFloat(c.Query("lng"), "lng")
	distance, distErr := optionalFloat(c.Query("distance_km"), "distance_km")
	for _, e := range []error{latErr, lngErr, distErr} {
		if e != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, e)
		}
	}
	if (lat == nil) != (lng == nil) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("lat and lng must be given together"))
	}
	if lat != nil {
		criteria.Origin = &eventqueue.Point{Lat: *lat, Lng: *lng}
	}
	if distance != nil {
		if *distance < 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("distance_km must not be negative"))
		}
		criteria.DistanceKM = distance
	}

	result, err := s.events.Queue(c.UserContext(), service.QueueQuery{
		Criteria:      criteria,
		PostType:      strings.ToLower(strings.TrimSpace(c.Query("type"))),
		CategoryID:    categoryID,
		IncludeDrafts: c.QueryBool("include_drafts", false),
		Limit:         page.Limit,
		Offset:        page.Offset,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondList(c, result.Items, page, int64(result.Total))
}

// GetEvent handles GET /admin/v1/event-post/:id
// @Summary Get an event post
// @Tags event-post
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.EventPost
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /event-post/{id} [get]
func (s *Server) GetEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	event, err := s.events.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(event)
}

// CreateEvent handles POST /admin/v1/event-post
// @Summary Create an admin event post
// @Description Accepts JSON or multipart with an optional "attachment" image or video.
// @Tags event-post
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} models.EventPost
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /event-post [post]
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	in, err := s.parseEventInput(c)
	if err != nil {
		return nil
	}
	event, err := s.events.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// ApproveEvent handles PATCH /admin/v1/event-post/:id/approve
// @Summary Approve a pending post
// @Tags event-post
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.EventPost
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /event-post/{id}/approve [patch]
func (s *Server) ApproveEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	event, err := s.events.Approve(c.UserContext(), actor(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(event)
}

// RejectEvent handles PATCH /admin/v1/event-post/:id/reject
// @Summary Reject a pending post
// @Tags event-post
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body object{reason=string} false "Rejection reason"
// @Success 200 {object} models.EventPost
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /event-post/{id}/reject [patch]
func (s *Server) RejectEvent(c *fiber.Ctx) error {
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
	event, err := s.events.Reject(c.UserContext(), actor(c), id, req.Reason)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(event)
}

// DeleteEvent handles DELETE /admin/v1/event-post/:id
// @Summary Delete an event post
// @Tags event-post
// @Param id path int true "Event ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /event-post/{id} [delete]
func (s *Server) DeleteEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.events.Delete(c.UserContext(), actor(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
