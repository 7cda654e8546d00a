package listcache_test

import (
	"context"
	"testing"
	"time"

	"mechanic-service/internal/httputil"
	"mechanic-service/internal/listcache"
	"mechanic-service/internal/metrics"

	"github.com/stretchr/testify/assert"
)

func TestCoordinator(t *testing.T) {
	ctx := context.Background()

	t.Run("MissThenHit", func(t *testing.T) {
		cache := listcache.New(time.Minute, metrics.NewMock())
		key := listcache.PageKey(listcache.KindCustomers, httputil.PageParams{Page: 1, PerPage: 10})

		_, found := cache.Get(ctx, key)
		assert.False(t, found)

		cache.Set(key, "page-one")

		value, found := cache.Get(ctx, key)
		assert.True(t, found)
		assert.Equal(t, "page-one", value)
	})

	t.Run("KeysDistinguishPagination", func(t *testing.T) {
		cache := listcache.New(time.Minute, metrics.NewMock())

		cache.Set(listcache.PageKey(listcache.KindCustomers, httputil.PageParams{Page: 1, PerPage: 10}), "a")

		_, found := cache.Get(ctx, listcache.PageKey(listcache.KindCustomers, httputil.PageParams{Page: 2, PerPage: 10}))
		assert.False(t, found)

		_, found = cache.Get(ctx, listcache.PageKey(listcache.KindCustomers, httputil.PageParams{Page: 1, PerPage: 20}))
		assert.False(t, found)
	})

	t.Run("InvalidateIsScopedToKind", func(t *testing.T) {
		cache := listcache.New(time.Minute, metrics.NewMock())

		customerKey := listcache.PageKey(listcache.KindCustomers, httputil.PageParams{Page: 1, PerPage: 10})
		mechanicKey := listcache.PageKey(listcache.KindMechanics, httputil.PageParams{Page: 1, PerPage: 10})
		leaderboardKey := listcache.Key(listcache.KindMechanics, "leaderboard")

		cache.Set(customerKey, "customers")
		cache.Set(mechanicKey, "mechanics")
		cache.Set(leaderboardKey, "ranking")

		cache.Invalidate(listcache.KindMechanics)

		// every mechanic entry is gone, pages and derived reads alike
		_, found := cache.Get(ctx, mechanicKey)
		assert.False(t, found)
		_, found = cache.Get(ctx, leaderboardKey)
		assert.False(t, found)

		// other kinds are untouched
		_, found = cache.Get(ctx, customerKey)
		assert.True(t, found)
	})

	t.Run("InvalidateMultipleKinds", func(t *testing.T) {
		cache := listcache.New(time.Minute, metrics.NewMock())

		ticketKey := listcache.PageKey(listcache.KindTickets, httputil.PageParams{Page: 1, PerPage: 10})
		partKey := listcache.PageKey(listcache.KindParts, httputil.PageParams{Page: 1, PerPage: 10})

		cache.Set(ticketKey, "tickets")
		cache.Set(partKey, "parts")

		cache.Invalidate(listcache.KindTickets, listcache.KindParts)

		_, found := cache.Get(ctx, ticketKey)
		assert.False(t, found)
		_, found = cache.Get(ctx, partKey)
		assert.False(t, found)
	})

	t.Run("EntriesExpire", func(t *testing.T) {
		cache := listcache.New(20*time.Millisecond, metrics.NewMock())
		key := listcache.PageKey(listcache.KindParts, httputil.PageParams{Page: 1, PerPage: 10})

		cache.Set(key, "short-lived")

		_, found := cache.Get(ctx, key)
		assert.True(t, found)

		time.Sleep(50 * time.Millisecond)

		_, found = cache.Get(ctx, key)
		assert.False(t, found)
	})
}
