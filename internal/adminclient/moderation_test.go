package adminclient

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"adminhub/internal/eventqueue"
	"adminhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu        sync.Mutex
	items     []eventqueue.Item
	drafts    []models.EventDraft
	cats      []models.Category
	approves  atomic.Int32
	deletes   atomic.Int32
	listCalls atomic.Int32
	gate      chan struct{}
	failWith  int
}

func (f *fakeAPI) start(t *testing.T) *Client {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	v1 := app.Group("/admin/v1")
	v1.Get("/event-post", func(c *fiber.Ctx) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listCalls.Add(1)
		limit := min(c.QueryInt("limit", 20), 100)
		offset := min(c.QueryInt("offset", 0), len(f.items))
		end := min(offset+limit, len(f.items))
		return c.JSON(fiber.Map{
			"data": f.items[offset:end],
			"meta": fiber.Map{"limit": limit, "offset": offset, "total": len(f.items)},
		})
	})
	v1.Get("/event-post/drafts", func(c *fiber.Ctx) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		// older deployments wrapped lists twice
		return c.JSON(fiber.Map{"data": fiber.Map{"data": f.drafts}})
	})
	v1.Get("/category", func(c *fiber.Ctx) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		return c.JSON(f.cats)
	})
	v1.Patch("/event-post/:id/approve", func(c *fiber.Ctx) error {
		f.approves.Add(1)
		if f.gate != nil {
			<-f.gate
		}
		if f.failWith != 0 {
			return c.Status(f.failWith).JSON(fiber.Map{"error": "Event is already Approved", "code": "CONFLICT"})
		}
		id, _ := c.ParamsInt("id")
		f.setStatus(uint(id), "Approved")
		return c.JSON(fiber.Map{"data": fiber.Map{"id": id}})
	})
	v1.Patch("/event-post/:id/reject", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"body": fiber.Map{"message": "database unavailable"}})
	})
	v1.Delete("/event-post/:id", func(c *fiber.Ctx) error {
		f.deletes.Add(1)
		if f.gate != nil {
			<-f.gate
		}
		if f.failWith != 0 {
			return c.SendStatus(f.failWith)
		}
		id, _ := c.ParamsInt("id")
		f.mu.Lock()
		defer f.mu.Unlock()
		out := f.items[:0]
		for _, it := range f.items {
			if it.ID != uint(id) {
				out = append(out, it)
			}
		}
		f.items = out
		return c.SendStatus(fiber.StatusNoContent)
	})

	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return New("http://"+ln.Addr().String()+"/admin/v1", WithToken("t"), WithTimeout(5*time.Second))
}

func (f *fakeAPI) setStatus(id uint, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Status = status
		}
	}
}

type collectSink struct {
	mu      sync.Mutex
	notices []Notice
}

func (s *collectSink) Notify(n Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
}

func (s *collectSink) last() Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notices[len(s.notices)-1]
}

func item(id uint, status, category string, at time.Time) eventqueue.Item {
	return eventqueue.Item{ID: id, Title: "item", Status: status, Category: category, PostType: category, EventTime: at}
}

func ids(items []eventqueue.Item) []uint {
	out := make([]uint, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestModerator_QueueFiltersAndMergesDrafts(t *testing.T) {
	now := time.Now()
	catID := uint(7)
	api := &fakeAPI{
		items: []eventqueue.Item{
			item(1, "Approved", "rescue", now.Add(-time.Hour)),
			item(2, "Pending", "rescue", now),
			item(3, "Approved", "incident", now),
			item(4, "Approved", "rescue", now),
		},
		drafts: []models.EventDraft{{ID: 1, Title: "draft", PostType: "general", CategoryID: &catID, CreatedAt: now}},
		cats:   []models.Category{{ID: 7, Name: "Rescue boats"}},
	}
	m := NewModerator(api.start(t), nil, nil)
	ctx := context.Background()

	got, err := m.Queue(ctx, eventqueue.Criteria{Status: "Approved", Category: "rescue"})
	require.NoError(t, err)
	assert.Equal(t, []uint{4, 1}, ids(got))

	got, err = m.Queue(ctx, eventqueue.Criteria{Status: "Pending", Category: "rescue"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	var draft eventqueue.Item
	for _, it := range got {
		if it.IsDraft {
			draft = it
		}
	}
	assert.Equal(t, "Rescue boats", draft.CategoryName)
}

func TestModerator_QueueReadsEveryPage(t *testing.T) {
	now := time.Now()
	api := &fakeAPI{}
	// 250 approved posts newer than the three pending ones
	for i := range 250 {
		api.items = append(api.items, item(uint(i+1), "Approved", "general", now.Add(-time.Duration(i)*time.Minute)))
	}
	for i := range 3 {
		api.items = append(api.items, item(uint(1000+i), "Pending", "general", now.Add(-time.Duration(300+i)*time.Minute)))
	}
	m := NewModerator(api.start(t), nil, nil)

	got, err := m.Queue(context.Background(), eventqueue.Criteria{Status: "Pending"})
	require.NoError(t, err)
	assert.Equal(t, []uint{1000, 1001, 1002}, ids(got))
	assert.Equal(t, int32(3), api.listCalls.Load())

	all, err := m.Queue(context.Background(), eventqueue.Criteria{Status: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 253)
}

func TestModerator_ApproveInvalidatesEvents(t *testing.T) {
	api := &fakeAPI{items: []eventqueue.Item{item(1, "Pending", "general", time.Now())}}
	sink := &collectSink{}
	m := NewModerator(api.start(t), nil, sink)
	ctx := context.Background()

	_, err := m.Queue(ctx, eventqueue.Criteria{})
	require.NoError(t, err)
	require.NoError(t, m.Approve(ctx, 1))
	assert.Equal(t, NoticeSuccess, sink.last().Level)

	got, err := m.Queue(ctx, eventqueue.Criteria{Status: "Approved"})
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids(got))
}

func TestModerator_FailureSurfacesServerMessage(t *testing.T) {
	api := &fakeAPI{items: []eventqueue.Item{item(1, "Approved", "general", time.Now())}, failWith: fiber.StatusConflict}
	sink := &collectSink{}
	m := NewModerator(api.start(t), nil, sink)

	err := m.Approve(context.Background(), 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, fiber.StatusConflict, apiErr.Status)
	assert.Equal(t, NoticeError, sink.last().Level)
	assert.Equal(t, "Event is already Approved", sink.last().Message)

	err = m.Reject(context.Background(), 1, "nope")
	require.Error(t, err)
	assert.Equal(t, "database unavailable", sink.last().Message)
	assert.EqualValues(t, 1, api.approves.Load(), "no retries")
}

func TestModerator_RapidApprovesMakeOneCall(t *testing.T) {
	api := &fakeAPI{items: []eventqueue.Item{item(1, "Pending", "general", time.Now())}, gate: make(chan struct{})}
	m := NewModerator(api.start(t), nil, nil)

	done := make(chan error, 1)
	go func() { done <- m.Approve(context.Background(), 1) }()
	require.Eventually(t, func() bool { return api.approves.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	assert.True(t, m.InFlight(1))
	assert.ErrorIs(t, m.Approve(context.Background(), 1), ErrInFlight)
	assert.ErrorIs(t, m.Delete(context.Background(), 1), ErrInFlight)

	close(api.gate)
	require.NoError(t, <-done)
	assert.EqualValues(t, 1, api.approves.Load())
	assert.EqualValues(t, 0, api.deletes.Load())
	assert.False(t, m.InFlight(1))
}

func TestModerator_DeleteIsOptimistic(t *testing.T) {
	api := &fakeAPI{
		items: []eventqueue.Item{item(1, "Pending", "general", time.Now()), item(2, "Pending", "general", time.Now())},
		gate:  make(chan struct{}),
	}
	m := NewModerator(api.start(t), nil, nil)
	ctx := context.Background()

	_, err := m.Queue(ctx, eventqueue.Criteria{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- m.Delete(ctx, 1) }()
	require.Eventually(t, func() bool { return api.deletes.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	cached, ok := m.Cache().Peek(KeyEvents)
	require.True(t, ok)
	assert.Equal(t, []uint{2}, ids(decodeRecords[eventqueue.Item](cached)), "removed before the backend answered")

	close(api.gate)
	require.NoError(t, <-done)

	got, err := m.Queue(ctx, eventqueue.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, ids(got))
}

func TestModerator_FailedDeleteIsReconciledByRefetch(t *testing.T) {
	api := &fakeAPI{
		items:    []eventqueue.Item{item(1, "Pending", "general", time.Now())},
		failWith: fiber.StatusInternalServerError,
	}
	sink := &collectSink{}
	m := NewModerator(api.start(t), nil, sink)
	ctx := context.Background()

	_, err := m.Queue(ctx, eventqueue.Criteria{})
	require.NoError(t, err)
	require.Error(t, m.Delete(ctx, 1))
	assert.Equal(t, "request failed with status 500", sink.last().Message)

	got, err := m.Queue(ctx, eventqueue.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids(got))
}
