package notifications

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"adminhub/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	presenceSetKey        = "admin:online"
	presenceLastSeenKeyNS = "admin:last_seen:"
	presenceTTL           = 90 * time.Second
)

// Presence tracks which admins have a live feed open. Local counts are
// mirrored into a Redis set so every replica reports the same list.
type Presence struct {
	rdb *redis.Client

	mu    sync.Mutex
	local map[uint]int
}

// NewPresence creates a presence tracker. rdb may be nil.
func NewPresence(rdb *redis.Client) *Presence {
	return &Presence{rdb: rdb, local: make(map[uint]int)}
}

// Register records a new connection and reports whether it is the admin's first.
func (p *Presence) Register(ctx context.Context, userID uint) bool {
	p.mu.Lock()
	p.local[userID]++
	first := p.local[userID] == 1
	p.mu.Unlock()

	if p.rdb != nil {
		pipe := p.rdb.TxPipeline()
		pipe.SAdd(ctx, presenceSetKey, strconv.FormatUint(uint64(userID), 10))
		pipe.Set(ctx, p.lastSeenKey(userID), time.Now().Unix(), presenceTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			middleware.Logger.Warn("presence register failed", slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
		}
	}
	return first
}

// Touch refreshes the last-seen marker for an admin.
func (p *Presence) Touch(ctx context.Context, userID uint) {
	if p.rdb == nil {
		return
	}
	_ = p.rdb.Set(ctx, p.lastSeenKey(userID), time.Now().Unix(), presenceTTL).Err()
}

// Unregister drops a connection and reports whether it was the admin's last.
func (p *Presence) Unregister(ctx context.Context, userID uint) bool {
	p.mu.Lock()
	count, ok := p.local[userID]
	if !ok {
		p.mu.Unlock()
		return false
	}
	last := count <= 1
	if last {
		delete(p.local, userID)
	} else {
		p.local[userID] = count - 1
	}
	p.mu.Unlock()

	if last && p.rdb != nil {
		pipe := p.rdb.TxPipeline()
		pipe.SRem(ctx, presenceSetKey, strconv.FormatUint(uint64(userID), 10))
		pipe.Del(ctx, p.lastSeenKey(userID))
		if _, err := pipe.Exec(ctx); err != nil {
			middleware.Logger.Warn("presence unregister failed", slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
		}
	}
	return last
}

// OnlineIDs lists admins with a live feed, sorted by id. Redis members whose
// last-seen marker expired are reaped on the way.
func (p *Presence) OnlineIDs(ctx context.Context) []uint {
	if p.rdb == nil {
		p.mu.Lock()
		ids := make([]uint, 0, len(p.local))
		for id := range p.local {
			ids = append(ids, id)
		}
		p.mu.Unlock()
		slices.Sort(ids)
		return ids
	}

	members, err := p.rdb.SMembers(ctx, presenceSetKey).Result()
	if err != nil {
		middleware.Logger.Warn("presence read failed", slog.String("error", err.Error()))
		return nil
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			p.rdb.SRem(ctx, presenceSetKey, m)
			continue
		}
		exists, err := p.rdb.Exists(ctx, p.lastSeenKey(uint(id))).Result()
		if err == nil && exists == 0 {
			p.rdb.SRem(ctx, presenceSetKey, m)
			continue
		}
		ids = append(ids, uint(id))
	}
	slices.Sort(ids)
	return ids
}

func (p *Presence) lastSeenKey(userID uint) string {
	return presenceLastSeenKeyNS + strconv.FormatUint(uint64(userID), 10)
}
