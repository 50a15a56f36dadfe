package adminclient

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Collection keys shared by the cache and the API client.
const (
	KeyEvents        = "events"
	KeyDrafts        = "drafts"
	KeyCategories    = "categories"
	KeyReports       = "reports"
	KeyNotifications = "notifications"
	KeySOS           = "sos"
	KeyActivity      = "activity"
	KeyUsers         = "users"
)

// Loader fetches a collection from the backend.
type Loader func(ctx context.Context) ([]json.RawMessage, error)

type cacheEntry struct {
	records   []json.RawMessage
	stale     bool
	gen       uint64
	fetchedAt time.Time
}

// QueryCache holds fetched collections in memory until they are invalidated.
// It is safe for concurrent use.
type QueryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	group   singleflight.Group
}

func NewQueryCache() *QueryCache {
	return &QueryCache{entries: make(map[string]*cacheEntry)}
}

// Fetch returns the cached collection for key, loading it when missing or
// stale. Concurrent loads of the same key share one call.
func (q *QueryCache) Fetch(ctx context.Context, key string, load Loader) ([]json.RawMessage, error) {
	if records, ok := q.fresh(key); ok {
		return records, nil
	}

	v, err, _ := q.group.Do(key, func() (any, error) {
		if records, ok := q.fresh(key); ok {
			return records, nil
		}
		gen := q.generation(key)
		records, err := load(ctx)
		if err != nil {
			return nil, err
		}
		q.store(key, records, gen)
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]json.RawMessage)), nil
}

// Invalidate marks keys stale so the next Fetch reloads them. The cached
// copy stays readable through Peek until then.
func (q *QueryCache) Invalidate(keys ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, key := range keys {
		e := q.entry(key)
		e.stale = true
		e.gen++
	}
}

// Patch applies an optimistic local change to the cached copy of key.
// Missing entries are left alone.
func (q *QueryCache) Patch(key string, fn func([]json.RawMessage) []json.RawMessage) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[key]
	if !ok || e.records == nil {
		return
	}
	e.records = fn(clone(e.records))
}

// Peek returns the cached copy of key without loading, stale or not.
func (q *QueryCache) Peek(key string) ([]json.RawMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[key]
	if !ok || e.records == nil {
		return nil, false
	}
	return clone(e.records), true
}

func (q *QueryCache) fresh(key string) ([]json.RawMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[key]
	if !ok || e.stale || e.records == nil {
		return nil, false
	}
	return clone(e.records), true
}

func (q *QueryCache) generation(key string) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.entry(key).gen
}

// store keeps records for key. A load that raced with Invalidate is kept
// but stays stale.
func (q *QueryCache) store(key string, records []json.RawMessage, gen uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e := q.entry(key)
	if records == nil {
		records = []json.RawMessage{}
	}
	e.records = clone(records)
	e.fetchedAt = time.Now()
	e.stale = e.gen != gen
}

func (q *QueryCache) entry(key string) *cacheEntry {
	e, ok := q.entries[key]
	if !ok {
		e = &cacheEntry{}
		q.entries[key] = e
	}
	return e
}

func clone(records []json.RawMessage) []json.RawMessage {
	if records == nil {
		return nil
	}
	out := make([]json.RawMessage, len(records))
	copy(out, records)
	return out
}
