// Package notifications fans admin events out to live feed clients and
// delivers broadcasts and SOS alerts to their recipients.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"sync"

	"adminhub/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// AdminChannel carries every admin feed event.
const AdminChannel = "admin:events"

// ErrNoTransport is returned by user deliveries when no Redis client is configured.
var ErrNoTransport = errors.New("notification transport unavailable")

// Notifier publishes admin events and user notifications over Redis pub/sub.
// Without Redis, admin events are delivered in-process to local subscribers.
type Notifier struct {
	rdb *redis.Client

	mu     sync.RWMutex
	nextID int
	local  map[int]func(payload string)
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb, local: make(map[int]func(string))}
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}

// PublishAdmin sends ev to every admin feed subscriber.
func (n *Notifier) PublishAdmin(ctx context.Context, ev AdminEvent) error {
	payload, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("encode admin event: %w", err)
	}
	if n.rdb != nil {
		return n.rdb.Publish(ctx, AdminChannel, payload).Err()
	}

	n.mu.RLock()
	handlers := make([]func(string), 0, len(n.local))
	for _, h := range n.local {
		handlers = append(handlers, h)
	}
	n.mu.RUnlock()
	for _, h := range handlers {
		deliver("local", h, payload)
	}
	return nil
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return ErrNoTransport
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// Subscribe calls onMessage for every admin event until ctx is done. With
// Redis the subscription is confirmed before Subscribe returns.
func (n *Notifier) Subscribe(ctx context.Context, onMessage func(payload string)) error {
	if n.rdb == nil {
		n.mu.Lock()
		id := n.nextID
		n.nextID++
		n.local[id] = onMessage
		n.mu.Unlock()

		go func() {
			<-ctx.Done()
			n.mu.Lock()
			delete(n.local, id)
			n.mu.Unlock()
		}()
		return nil
	}

	sub := n.rdb.Subscribe(ctx, AdminChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", AdminChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				deliver(msg.Channel, onMessage, msg.Payload)
			}
		}
	}()
	return nil
}

func deliver(channel string, h func(string), payload string) {
	defer func() {
		if r := recover(); r != nil {
			middleware.Logger.Error("panic in admin event subscriber",
				slog.String("channel", channel),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()
	h(payload)
}
