package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"adminhub/internal/eventqueue"
	"adminhub/internal/featureflags"
	"adminhub/internal/models"
	"adminhub/internal/notifications"
	"adminhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEvent(t *testing.T, f *fixture, title, postType string, status models.EventStatus, lat, lng *float64) *models.EventPost {
	t.Helper()
	event := &models.EventPost{
		UserID:    f.admin.ID,
		Title:     title,
		PostType:  postType,
		MediaType: models.MediaTypeNone,
		Status:    status,
		Latitude:  lat,
		Longitude: lng,
	}
	require.NoError(t, f.db.Create(event).Error)
	return event
}

func queueTitles(page *QueuePage) []string {
	out := make([]string, 0, len(page.Items))
	for _, it := range page.Items {
		out = append(out, it.Title)
	}
	return out
}

func TestEventService_QueueStatusAndCategory(t *testing.T) {
	f := newFixture(t)
	svc := f.eventService()
	ctx := context.Background()

	seedEvent(t, f, "approved rescue", models.PostTypeRescue, models.EventStatusApproved, nil, nil)
	seedEvent(t, f, "pending rescue", models.PostTypeRescue, models.EventStatusPending, nil, nil)
	seedEvent(t, f, "approved incident", models.PostTypeIncident, models.EventStatusApproved, nil, nil)

	page, err := svc.Queue(ctx, QueueQuery{Criteria: eventqueue.Criteria{Status: "Approved", Category: "rescue"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"approved rescue"}, queueTitles(page))
	assert.Equal(t, 1, page.Total)
}

func TestEventService_QueueDistance(t *testing.T) {
	f := newFixture(t)
	svc := f.eventService()

	seedEvent(t, f, "far", models.PostTypeIncident, models.EventStatusPending, ptr(1.0), ptr(1.0))
	seedEvent(t, f, "near", models.PostTypeIncident, models.EventStatusPending, ptr(0.01), ptr(0.01))
	seedEvent(t, f, "unknown", models.PostTypeIncident, models.EventStatusPending, nil, nil)

	criteria := eventqueue.Criteria{DistanceKM: ptr(5.0), Origin: &eventqueue.Point{Lat: 0, Lng: 0}}
	page, err := svc.Queue(context.Background(), QueueQuery{Criteria: criteria})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"near", "unknown"}, queueTitles(page))

	f.flags = featureflags.NewManager("strict_distance=on")
	page, err = f.eventService().Queue(context.Background(), QueueQuery{Criteria: criteria})
	require.NoError(t, err)
	assert.Equal(t, []string{"near"}, queueTitles(page))
}

func TestEventService_QueueIncludesDraftsAndPages(t *testing.T) {
	f := newFixture(t)
	svc := f.eventService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		seedEvent(t, f, "post", models.PostTypeGeneral, models.EventStatusPending, nil, nil)
	}
	require.NoError(t, f.drafts.Create(ctx, &models.EventDraft{AuthorID: f.admin.ID, Title: "draft", PostType: models.PostTypeGeneral, MediaType: models.MediaTypeNone}))

	page, err := svc.Queue(ctx, QueueQuery{IncludeDrafts: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Len(t, page.Items, 2)

	page, err = svc.Queue(ctx, QueueQuery{IncludeDrafts: true, Criteria: eventqueue.Criteria{Status: "Approved"}})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestEventService_QueueCacheInvalidatedByDecision(t *testing.T) {
	testutil.NewRedis(t)
	f := newFixture(t)
	svc := f.eventService()
	ctx := context.Background()

	first := seedEvent(t, f, "first", models.PostTypeGeneral, models.EventStatusPending, nil, nil)
	page, err := svc.Queue(ctx, QueueQuery{Criteria: eventqueue.Criteria{Status: "Pending"}})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	// written behind the repository's back, so the cached page is still served
	seedEvent(t, f, "second", models.PostTypeGeneral, models.EventStatusPending, nil, nil)
	page, err = svc.Queue(ctx, QueueQuery{Criteria: eventqueue.Criteria{Status: "Pending"}})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	_, err = svc.Approve(ctx, f.actor, first.ID)
	require.NoError(t, err)
	page, err = svc.Queue(ctx, QueueQuery{Criteria: eventqueue.Criteria{Status: "Pending"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, queueTitles(page))
}

func TestEventService_ApproveOnce(t *testing.T) {
	f := newFixture(t)
	svc := f.eventService()
	ctx := context.Background()
	event := seedEvent(t, f, "decide me", models.PostTypeGeneral, models.EventStatusPending, nil, nil)

	approved, err := svc.Approve(ctx, f.actor, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedByUserID)
	assert.Equal(t, f.admin.ID, *approved.ReviewedByUserID)

	_, err = svc.Reject(ctx, f.actor, event.ID, "too late")
	assertAppCode(t, err, models.CodeConflict)

	assert.Equal(t, []string{notifications.EventPostApproved}, f.feed.types())
	assert.Equal(t, []string{models.ActionEventApprove}, f.auditActions(t))
}

func TestEventService_ConcurrentDecisionsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	svc := f.eventService()
	event := seedEvent(t, f, "race", models.PostTypeGeneral, models.EventStatusPending, nil, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = svc.Approve(context.Background(), f.actor, event.ID)
			} else {
				_, err = svc.Reject(context.Background(), f.actor, event.ID, "")
			}
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestEventService_RejectValidatesReason(t *testing.T) {
	f := newFixture(t)
	event := seedEvent(t, f, "x", models.PostTypeGeneral, models.EventStatusPending, nil, nil)

	_, err := f.eventService().Reject(context.Background(), f.actor, event.ID, strings.Repeat("r", 1001))
	assertAppCode(t, err, models.CodeValidation)
}

func TestEventService_Create(t *testing.T) {
	f := newFixture(t)
	svc := f.eventService()
	ctx := context.Background()

	t.Run("admin posts are approved", func(t *testing.T) {
		event, err := svc.Create(ctx, f.actor, EventInput{Title: "  Flood warning ", PostType: "Rescue", AttachmentURL: "/uploads/a.webp"})
		require.NoError(t, err)
		assert.Equal(t, "Flood warning", event.Title)
		assert.Equal(t, models.PostTypeRescue, event.PostType)
		assert.Equal(t, models.MediaTypeImage, event.MediaType)
		assert.Equal(t, models.EventStatusApproved, event.Status)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := svc.Create(ctx, f.actor, EventInput{Title: "t", CategoryID: ptr(uint(999))})
		assertAppCode(t, err, models.CodeValidation)
	})

	t.Run("half a coordinate", func(t *testing.T) {
		_, err := svc.Create(ctx, f.actor, EventInput{Title: "t", Latitude: ptr(10.0)})
		assertAppCode(t, err, models.CodeValidation)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := svc.Create(ctx, f.actor, EventInput{Title: "   "})
		assertAppCode(t, err, models.CodeValidation)
	})
}

func TestEventService_Delete(t *testing.T) {
	f := newFixture(t)
	svc := f.eventService()
	ctx := context.Background()
	event := seedEvent(t, f, "gone", models.PostTypeGeneral, models.EventStatusRejected, nil, nil)

	require.NoError(t, svc.Delete(ctx, f.actor, event.ID))
	_, err := svc.Get(ctx, event.ID)
	assertAppCode(t, err, models.CodeNotFound)

	err = svc.Delete(ctx, f.actor, event.ID)
	assertAppCode(t, err, models.CodeNotFound)
	assert.Contains(t, f.feed.types(), notifications.EventPostDeleted)
}
