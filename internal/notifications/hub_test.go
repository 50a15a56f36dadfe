package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterLimits(t *testing.T) {
	hub := NewHub(nil, nil)

	for i := 0; i < maxConnsPerAdmin; i++ {
		_, err := hub.Register(1, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrPerAdminConnLimit)

	_, err = hub.Register(2, nil)
	assert.NoError(t, err)
	assert.Equal(t, maxConnsPerAdmin+1, hub.Count())
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	hub := NewHub(nil, nil)
	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.BroadcastAll([]byte("hi"))
	assert.Equal(t, []byte("hi"), <-a.Send)
	assert.Equal(t, []byte("hi"), <-b.Send)

	hub.UnregisterClient(a)
	hub.UnregisterClient(a)
	assert.Equal(t, 1, hub.Count())

	_, open := <-a.Send
	assert.False(t, open)
}

func TestHub_SlowClientDropsOverflow(t *testing.T) {
	hub := NewHub(nil, nil)
	c, err := hub.Register(1, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer+5; i++ {
		hub.BroadcastAll([]byte("x"))
	}
	assert.Len(t, c.Send, sendBuffer)
}

func TestHub_WiringAndPresenceAnnouncements(t *testing.T) {
	notifier := NewNotifier(newTestRedis(t))
	presence := NewPresence(notifier.rdb)
	hub := NewHub(presence, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	watcher, err := hub.Register(1, nil)
	require.NoError(t, err)

	readType := func() string {
		select {
		case msg := <-watcher.Send:
			var ev AdminEvent
			require.NoError(t, json.Unmarshal(msg, &ev))
			return ev.Type
		case <-time.After(time.Second):
			t.Fatal("no feed message")
			return ""
		}
	}
	assert.Equal(t, EventAdminOnline, readType())

	second, err := hub.Register(2, nil)
	require.NoError(t, err)
	assert.Equal(t, EventAdminOnline, readType())
	assert.Equal(t, []uint{1, 2}, presence.OnlineIDs(ctx))

	hub.UnregisterClient(second)
	assert.Equal(t, EventAdminOffline, readType())
	assert.Equal(t, []uint{1}, presence.OnlineIDs(ctx))

	require.NoError(t, notifier.PublishAdmin(ctx, NewAdminEvent(EventSOSCreated, 9, 0, nil)))
	assert.Equal(t, EventSOSCreated, readType())
}

func TestHub_ShutdownRefusesNewClients(t *testing.T) {
	hub := NewHub(nil, nil)
	c, err := hub.Register(1, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Zero(t, hub.Count())

	_, open := <-c.Send
	assert.False(t, open)

	_, err = hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrHubClosed)

	assert.NotPanics(t, func() { hub.UnregisterClient(c) })
}

func TestPresence_ReapsExpiredMembers(t *testing.T) {
	rdb := newTestRedis(t)
	p := NewPresence(rdb)
	ctx := context.Background()

	require.NoError(t, rdb.SAdd(ctx, presenceSetKey, "44").Err())
	assert.Empty(t, p.OnlineIDs(ctx))

	isMember, err := rdb.SIsMember(ctx, presenceSetKey, "44").Result()
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestPresence_LocalCounts(t *testing.T) {
	p := NewPresence(nil)
	ctx := context.Background()

	assert.True(t, p.Register(ctx, 3))
	assert.False(t, p.Register(ctx, 3))
	assert.False(t, p.Unregister(ctx, 3))
	assert.Equal(t, []uint{3}, p.OnlineIDs(ctx))
	assert.True(t, p.Unregister(ctx, 3))
	assert.False(t, p.Unregister(ctx, 3))
	assert.Empty(t, p.OnlineIDs(ctx))
}
