package adminclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"adminhub/internal/middleware"
	"adminhub/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// DefaultTimeout bounds every request made by the client.
const DefaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the admin API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client calls the admin REST API.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://localhost:8080/admin/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (_ []byte, err error) {
	_, span := observability.GetTraceLayer().TraceOutbound(ctx, "admin_api", method+" "+path)
	defer func() { observability.EndSpan(span, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	// Bytes releases the agent back to the pool.
	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(target)
	if c.token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	agent.Timeout(timeout)
	if body != nil {
		agent.JSON(body)
	}
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return nil, fmt.Errorf("admin api %s %s: %w", method, path, err)
	}

	status, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("admin api %s %s: %w", method, path, errs[0])
	}
	if status < 200 || status >= 300 {
		return nil, &APIError{Status: status, Message: errorMessage(status, respBody)}
	}
	return respBody, nil
}

// errorMessage picks the human readable message out of an error body.
func errorMessage(status int, body []byte) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Body    struct {
			Message string `json:"message"`
		} `json:"body"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		for _, msg := range []string{parsed.Error, parsed.Message, parsed.Body.Message} {
			if strings.TrimSpace(msg) != "" {
				return msg
			}
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// LoginResponse is the token issued by the API.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges admin credentials for a token and keeps it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	raw, err := c.do(ctx, fiber.MethodPost, "/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var res LoginResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	c.token = res.Token
	return &res, nil
}

// collectionPaths maps query cache keys to list endpoints.
var collectionPaths = map[string]string{
	KeyEvents:        "/event-post",
	KeyDrafts:        "/event-post/drafts",
	KeyCategories:    "/category",
	KeyReports:       "/report",
	KeyNotifications: "/notification",
	KeySOS:           "/sos",
	KeyActivity:      "/activity-log",
	KeyUsers:         "/users",
}

// ErrUnknownCollection is returned for a collection key with no endpoint.
var ErrUnknownCollection = errors.New("unknown collection")

const (
	// PageSize is the limit requested per page; the API caps it at 100.
	PageSize = 100
	// MaxPages bounds how many pages FetchCollection walks.
	MaxPages = 200
)

// FetchCollection walks a collection page by page until meta.total is
// reached and returns the normalized records. Lists without a meta block are
// not paginated and yield a single page.
func (c *Client) FetchCollection(ctx context.Context, key string) ([]json.RawMessage, error) {
	path, ok := collectionPaths[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, key)
	}

	records := []json.RawMessage{}
	for page := 0; ; page++ {
		query := url.Values{
			"limit":  {strconv.Itoa(PageSize)},
			"offset": {strconv.Itoa(len(records))},
		}
		if key == KeyEvents {
			query.Set("status", "all")
		}
		raw, err := c.do(ctx, fiber.MethodGet, path, query, nil)
		if err != nil {
			return nil, err
		}
		batch := NormalizeEnvelope(raw)
		records = append(records, batch...)

		total, paged := listTotal(raw)
		if !paged || len(batch) == 0 || int64(len(records)) >= total {
			return records, nil
		}
		if page+1 >= MaxPages {
			middleware.Logger.WarnContext(ctx, "collection truncated",
				slog.String("collection", key),
				slog.Int("loaded", len(records)),
				slog.Int64("total", total))
			return records, nil
		}
	}
}

// listTotal reads meta.total from a list envelope.
func listTotal(raw []byte) (int64, bool) {
	var env struct {
		Meta *struct {
			Total *int64 `json:"total"`
		} `json:"meta"`
	}
	if json.Unmarshal(raw, &env) != nil || env.Meta == nil || env.Meta.Total == nil {
		return 0, false
	}
	return *env.Meta.Total, true
}

func (c *Client) ApproveEvent(ctx context.Context, id uint) error {
	_, err := c.do(ctx, fiber.MethodPatch, "/event-post/"+itoa(id)+"/approve", nil, nil)
	return err
}

func (c *Client) RejectEvent(ctx context.Context, id uint, reason string) error {
	_, err := c.do(ctx, fiber.MethodPatch, "/event-post/"+itoa(id)+"/reject", nil, map[string]string{"reason": reason})
	return err
}

func (c *Client) DeleteEvent(ctx context.Context, id uint) error {
	_, err := c.do(ctx, fiber.MethodDelete, "/event-post/"+itoa(id), nil, nil)
	return err
}

func (c *Client) DeleteDraft(ctx context.Context, id uint) error {
	_, err := c.do(ctx, fiber.MethodDelete, "/event-post/drafts/"+itoa(id), nil, nil)
	return err
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
