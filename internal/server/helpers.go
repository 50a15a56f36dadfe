package server

import (
	"errors"
	"io"
	"strings"
	"time"
	"unicode"

	"adminhub/internal/models"
	"adminhub/internal/repository"
	"adminhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPageLimit   = 20
	maxPaginationLimit = 100
	dateLayout         = "2006-01-02"
)

// ListMeta describes the page returned by a list endpoint.
type ListMeta struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// ListResponse is the envelope of every list endpoint.
type ListResponse struct {
	Data any      `json:"data"`
	Meta ListMeta `json:"meta"`
}

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) repository.Page {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return repository.Page{
		Limit:  limit,
		Offset: offset,
	}
}

func respondList(c *fiber.Ctx, data any, page repository.Page, total int64) error {
	return c.JSON(ListResponse{
		Data: data,
		Meta: ListMeta{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "userId" -> "Invalid user ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "categoryId" -> "category ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// parseDate reads an optional YYYY-MM-DD query parameter.
func parseDate(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+name+", expected YYYY-MM-DD"))
		return nil, errResponseWritten
	}
	return &t, nil
}

// parseUintQuery reads an optional positive integer query parameter.
func parseUintQuery(c *fiber.Ctx, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v := c.QueryInt(name, 0)
	if v <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+name))
		return nil, errResponseWritten
	}
	id := uint(v)
	return &id, nil
}

// parseBody decodes the request body into dest, answering 400 on failure.
func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// actor describes the authenticated admin for activity logging.
func actor(c *fiber.Ctx) service.Actor {
	userID, _ := c.Locals("userID").(uint)
	return service.Actor{ID: userID, IP: c.IP()}
}

// readUpload returns the multipart file in field, or nil when none was sent.
func readUpload(c *fiber.Ctx, field string) (*service.Upload, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}

	src, err := file.Open()
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
		return nil, errResponseWritten
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
		return nil, errResponseWritten
	}

	return &service.Upload{
		Filename:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}
