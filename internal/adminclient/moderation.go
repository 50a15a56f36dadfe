package adminclient

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"adminhub/internal/eventqueue"
	"adminhub/internal/middleware"
	"adminhub/internal/models"
)

// ErrInFlight is returned when a mutation for the same record is already running.
var ErrInFlight = errors.New("a change to this record is already in progress")

// Backend is the part of the admin API the moderator needs.
type Backend interface {
	FetchCollection(ctx context.Context, key string) ([]json.RawMessage, error)
	ApproveEvent(ctx context.Context, id uint) error
	RejectEvent(ctx context.Context, id uint, reason string) error
	DeleteEvent(ctx context.Context, id uint) error
	DeleteDraft(ctx context.Context, id uint) error
}

// Notice levels.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is a transient message shown to the operator.
type Notice struct {
	Level   string
	Message string
	At      time.Time
}

// NoticeSink receives notices.
type NoticeSink interface {
	Notify(Notice)
}

// NoticeFunc adapts a function to NoticeSink.
type NoticeFunc func(Notice)

func (f NoticeFunc) Notify(n Notice) { f(n) }

// Moderator runs moderation mutations against the backend and keeps the
// query cache consistent with them. Mutations are attempted once.
type Moderator struct {
	backend Backend
	cache   *QueryCache
	notices NoticeSink

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewModerator wires a moderator. A nil cache gets a private one; a nil sink
// drops notices.
func NewModerator(backend Backend, cache *QueryCache, notices NoticeSink) *Moderator {
	if cache == nil {
		cache = NewQueryCache()
	}
	if notices == nil {
		notices = NoticeFunc(func(Notice) {})
	}
	return &Moderator{
		backend:  backend,
		cache:    cache,
		notices:  notices,
		inFlight: make(map[string]struct{}),
	}
}

// Cache exposes the moderator's query cache.
func (m *Moderator) Cache() *QueryCache {
	return m.cache
}

// Approve approves a pending event.
func (m *Moderator) Approve(ctx context.Context, id uint) error {
	return m.mutate(ctx, eventKey(id), "Event approved", func(ctx context.Context) error {
		return m.backend.ApproveEvent(ctx, id)
	}, KeyEvents)
}

// Reject rejects a pending event.
func (m *Moderator) Reject(ctx context.Context, id uint, reason string) error {
	return m.mutate(ctx, eventKey(id), "Event rejected", func(ctx context.Context) error {
		return m.backend.RejectEvent(ctx, id, reason)
	}, KeyEvents)
}

// Delete removes an event from the cached list right away, then deletes it
// on the backend. The list is refetched afterwards either way.
func (m *Moderator) Delete(ctx context.Context, id uint) error {
	return m.remove(ctx, KeyEvents, eventKey(id), id, "Event deleted", m.backend.DeleteEvent)
}

// DeleteDraft is Delete for drafts.
func (m *Moderator) DeleteDraft(ctx context.Context, id uint) error {
	return m.remove(ctx, KeyDrafts, draftKey(id), id, "Draft deleted", m.backend.DeleteDraft)
}

func (m *Moderator) remove(ctx context.Context, collection, recordKey string, id uint, success string, call func(context.Context, uint) error) error {
	if !m.acquire(recordKey) {
		return ErrInFlight
	}
	defer m.release(recordKey)

	m.cache.Patch(collection, func(records []json.RawMessage) []json.RawMessage {
		return withoutID(records, id)
	})
	err := call(ctx, id)
	m.cache.Invalidate(collection)
	m.report(ctx, success, err)
	return err
}

func (m *Moderator) mutate(ctx context.Context, recordKey, success string, call func(context.Context) error, invalidate ...string) error {
	if !m.acquire(recordKey) {
		return ErrInFlight
	}
	defer m.release(recordKey)

	err := call(ctx)
	if err == nil {
		m.cache.Invalidate(invalidate...)
	}
	m.report(ctx, success, err)
	return err
}

func (m *Moderator) report(ctx context.Context, success string, err error) {
	if err == nil {
		m.notices.Notify(Notice{Level: NoticeSuccess, Message: success, At: time.Now()})
		return
	}
	middleware.Logger.WarnContext(ctx, "moderation call failed", slog.String("error", err.Error()))
	m.notices.Notify(Notice{Level: NoticeError, Message: noticeMessage(err), At: time.Now()})
}

// InFlight reports whether a mutation for the event id is running.
func (m *Moderator) InFlight(id uint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inFlight[eventKey(id)]
	return ok
}

func (m *Moderator) acquire(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inFlight[key]; busy {
		return false
	}
	m.inFlight[key] = struct{}{}
	return true
}

func (m *Moderator) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inFlight, key)
}

// Queue loads events, drafts and categories through the cache and returns
// the filtered, sorted moderation queue.
func (m *Moderator) Queue(ctx context.Context, c eventqueue.Criteria) ([]eventqueue.Item, error) {
	events, err := m.collection(ctx, KeyEvents)
	if err != nil {
		return nil, err
	}
	drafts, err := m.collection(ctx, KeyDrafts)
	if err != nil {
		return nil, err
	}
	categories, err := m.collection(ctx, KeyCategories)
	if err != nil {
		return nil, err
	}

	names := make(map[uint]string)
	for _, cat := range decodeRecords[models.Category](categories) {
		names[cat.ID] = cat.Name
	}

	items := decodeRecords[eventqueue.Item](events)
	for i := range items {
		if items[i].CategoryName == "" && items[i].CategoryID != nil {
			items[i].CategoryName = names[*items[i].CategoryID]
			items[i].Category = eventqueue.NormalizeCategory(items[i].CategoryName, items[i].PostType)
		}
	}
	items = append(items, eventqueue.Merge(nil, decodeRecords[models.EventDraft](drafts), names)...)
	return eventqueue.Apply(items, c), nil
}

func (m *Moderator) collection(ctx context.Context, key string) ([]json.RawMessage, error) {
	return m.cache.Fetch(ctx, key, func(ctx context.Context) ([]json.RawMessage, error) {
		return m.backend.FetchCollection(ctx, key)
	})
}

func withoutID(records []json.RawMessage, id uint) []json.RawMessage {
	out := records[:0]
	for _, rec := range records {
		var head struct {
			ID uint `json:"id"`
		}
		if json.Unmarshal(rec, &head) == nil && head.ID == id {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func noticeMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "The request was cancelled"
	}
	return "Something went wrong. Please try again."
}

func eventKey(id uint) string { return "event:" + itoa(id) }
func draftKey(id uint) string { return "draft:" + itoa(id) }
