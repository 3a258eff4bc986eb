package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Text string
}

func TestCacheStore(t *testing.T) {
	t.Run("New cache store", func(t *testing.T) {
		cs := NewCacheStore[payload]()
		assert.NotNil(t, cs)
		assert.NotNil(t, cs.cache)
		assert.Zero(t, cs.Len())
	})

	t.Run("Set and get", func(t *testing.T) {
		cs := NewCacheStore[payload]()
		ttl := time.Minute

		cs.Put("1:insights:30", payload{Text: "ok"}, ttl)

		item, found := cs.Get("1:insights:30")
		require.True(t, found)
		require.NotNil(t, item)
		assert.Equal(t, "ok", item.Data.Text)
		assert.WithinDuration(t, time.Now().Add(ttl), item.ExpiresAt, time.Second)
	})

	t.Run("Get missing key", func(t *testing.T) {
		cs := NewCacheStore[payload]()
		_, found := cs.Get("non_existent_key")
		assert.False(t, found)
	})

	t.Run("Get expired key", func(t *testing.T) {
		cs := NewCacheStore[payload]()
		cs.Put("expired", payload{}, -time.Second)

		_, found := cs.Get("expired")
		assert.False(t, found)
	})

	t.Run("Clean expired keys", func(t *testing.T) {
		cs := NewCacheStore[payload]()
		cs.Put("expired", payload{Text: "a"}, -time.Minute)
		cs.Put("valid", payload{Text: "b"}, time.Minute)

		cs.CleanupExpired()

		assert.Equal(t, 1, cs.Len())
		_, found := cs.Get("valid")
		assert.True(t, found)
	})

	t.Run("Delete by user prefix", func(t *testing.T) {
		cs := NewCacheStore[payload]()
		cs.Put("4:insights:30", payload{}, time.Minute)
		cs.Put("4:insights:7", payload{}, time.Minute)
		cs.Put("42:insights:30", payload{}, time.Minute)

		removed := cs.DeletePrefix("4:")

		assert.Equal(t, 2, removed)
		_, found := cs.Get("42:insights:30")
		assert.True(t, found)
	})

	t.Run("TTL uses injected clock", func(t *testing.T) {
		cs := NewCacheStore[payload]()
		now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
		cs.now = func() time.Time { return now }

		cs.Put("k", payload{}, time.Minute)
		now = now.Add(2 * time.Minute)

		_, found := cs.Get("k")
		assert.False(t, found)
	})

	t.Run("Cleanup ticker stops with context", func(t *testing.T) {
		cs := NewCacheStore[payload]()
		cs.Put("expired", payload{}, -time.Minute)

		ctx, cancel := context.WithCancel(context.Background())
		cs.StartCleanupTicker(ctx, 10*time.Millisecond)

		assert.Eventually(t, func() bool { return cs.Len() == 0 }, time.Second, 10*time.Millisecond)
		cancel()
	})
}
