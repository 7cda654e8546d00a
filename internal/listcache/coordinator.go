package listcache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mechanic-service/internal/httputil"
	"mechanic-service/internal/metrics"

	gocache "github.com/patrickmn/go-cache"
)

// Entity kinds used as cache key prefixes and invalidation scopes.
const (
	KindCustomers = "customers"
	KindMechanics = "mechanics"
	KindParts     = "inventory"
	KindTickets   = "service_tickets"
)

// Coordinator serves paginated reads through a short-lived in-process
// cache. Invalidation is coarse: any mutation to an entity kind clears
// every cached page for that kind, trading an extra recompute on the
// next read for simple correctness.
type Coordinator struct {
	cache   *gocache.Cache
	metrics *metrics.Metrics
}

func New(ttl time.Duration, m *metrics.Metrics) *Coordinator {
	return &Coordinator{
		cache:   gocache.New(ttl, 2*ttl),
		metrics: m,
	}
}

// PageKey builds the cache key for a paginated list of kind.
func PageKey(kind string, params httputil.PageParams) string {
	return fmt.Sprintf("%s|page=%d|per_page=%d", kind, params.Page, params.PerPage)
}

// Key builds the cache key for a non-paginated derived read of kind,
// e.g. the mechanic leaderboard.
func Key(kind, name string) string {
	return kind + "|" + name
}

func (c *Coordinator) Get(ctx context.Context, key string) (interface{}, bool) {
	value, found := c.cache.Get(key)
	if found {
		c.metrics.RecordCacheHit(ctx)
	} else {
		c.metrics.RecordCacheMiss(ctx)
	}
	return value, found
}

func (c *Coordinator) Set(key string, value interface{}) {
	c.cache.SetDefault(key, value)
}

// Invalidate synchronously removes every cached entry for the given
// kinds. Called from mutation paths before the response is written.
func (c *Coordinator) Invalidate(kinds ...string) {
	for key := range c.cache.Items() {
		for _, kind := range kinds {
			if strings.HasPrefix(key, kind+"|") {
				c.cache.Delete(key)
				break
			}
		}
	}
}
