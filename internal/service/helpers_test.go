package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"adminhub/internal/featureflags"
	"adminhub/internal/models"
	"adminhub/internal/notifications"
	"adminhub/internal/repository"
	"adminhub/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingFeed struct {
	mu     sync.Mutex
	events []notifications.AdminEvent
	err    error
}

func (f *recordingFeed) PublishAdmin(_ context.Context, ev notifications.AdminEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *recordingFeed) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	db    *gorm.DB
	feed  *recordingFeed
	flags *featureflags.Manager

	events     repository.EventRepository
	drafts     repository.DraftRepository
	categories repository.CategoryRepository
	comments   repository.CommentRepository
	reports    repository.ReportRepository
	notes      repository.NotificationRepository
	sos        repository.SOSRepository
	users      repository.UserRepository
	logs       repository.ActivityLogRepository

	audit *ActivityLogService
	admin *models.User
	actor Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	f := &fixture{
		db:         db,
		feed:       &recordingFeed{},
		flags:      featureflags.NewManager(""),
		events:     repository.NewEventRepository(db),
		drafts:     repository.NewDraftRepository(db),
		categories: repository.NewCategoryRepository(db),
		comments:   repository.NewCommentRepository(db),
		reports:    repository.NewReportRepository(db),
		notes:      repository.NewNotificationRepository(db),
		sos:        repository.NewSOSRepository(db),
		users:      repository.NewUserRepository(db),
		logs:       repository.NewActivityLogRepository(db),
	}
	f.audit = NewActivityLogService(f.logs)
	f.admin = testutil.CreateUser(t, db, "root", true)
	f.actor = Actor{ID: f.admin.ID, IP: "127.0.0.1"}
	return f
}

func (f *fixture) eventService() *EventService {
	return NewEventService(f.events, f.drafts, f.categories, f.audit, f.feed, f.flags)
}

func (f *fixture) userService() *UserService {
	return NewUserService(f.users, f.audit, f.feed, "test-secret-that-is-long-enough-123")
}

func (f *fixture) auditActions(t *testing.T) []string {
	t.Helper()
	logs, _, err := f.logs.List(context.Background(), repository.ActivityFilter{}, repository.Page{Limit: 100})
	require.NoError(t, err)
	out := make([]string, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Action)
	}
	return out
}

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code, appErr.Message)
}

func ptr[T any](v T) *T {
	return &v
}
