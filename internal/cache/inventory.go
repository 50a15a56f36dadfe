package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	CategoryListKey      = "categories:all"
	DashboardStatsKey    = "dashboard:stats"
	EventQueueGenKey     = "events:gen"
	EventQueuePagePrefix = "events:page:%d:%s"
	UserKeyPrefix        = "user:%d"
)

const (
	CategoryTTL   = 10 * time.Minute
	DashboardTTL  = 30 * time.Second
	EventQueueTTL = 2 * time.Minute
	UserTTL       = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// EventQueuePageKey scopes a queue page under the current queue generation,
// so bumping the generation orphans every cached page at once.
func EventQueuePageKey(ctx context.Context, fingerprint string) string {
	var gen int64
	if client != nil {
		gen, _ = client.Get(ctx, EventQueueGenKey).Int64()
	}
	return fmt.Sprintf(EventQueuePagePrefix, gen, fingerprint)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateCategories(ctx context.Context) {
	Invalidate(ctx, CategoryListKey)
}

// InvalidateEventQueue drops every cached queue page and the dashboard counters.
func InvalidateEventQueue(ctx context.Context) {
	if client == nil {
		return
	}
	client.Incr(ctx, EventQueueGenKey)
	Invalidate(ctx, DashboardStatsKey)
}

func InvalidateDashboard(ctx context.Context) {
	Invalidate(ctx, DashboardStatsKey)
}
