package adapters

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/cache"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/store"
)

const allRecurringKey = "all"

// CachedRepository decorates a store.Repository with an LRU cache in front of
// the recurring-transaction reads. Every recurring write invalidates the list
// entry and the entry for the written ID; goal and snapshot calls pass
// straight through.
//
// Reads only fill the cache when no write invalidated it while they were
// fetching; gen counts invalidations and mu orders fills against them.
type CachedRepository struct {
	store.Repository
	lists *cache.LRUCache[[]core.RecurringTransaction]
	items *cache.LRUCache[core.RecurringTransaction]

	mu  sync.Mutex
	gen uint64
}

// NewCachedRepository wraps repo. Callers should register the returned
// repository's Cleaners with a cache.Manager.
func NewCachedRepository(repo store.Repository, size int, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		Repository: repo,
		lists:      cache.NewLRUCache[[]core.RecurringTransaction](1, ttl),
		items:      cache.NewLRUCache[core.RecurringTransaction](size, ttl),
	}
}

// Cleaners returns the caches that need periodic expiry.
func (c *CachedRepository) Cleaners() []cache.Cleaner {
	return []cache.Cleaner{c.lists, c.items}
}

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (c *CachedRepository) GetRecurring(ctx context.Context, id int64) (core.RecurringTransaction, error) {
	if rt, ok := c.items.Get(idKey(id)); ok {
		return rt, nil
	}
	gen := c.generation()
	rt, err := c.Repository.GetRecurring(ctx, id)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	c.fill(gen, func() { c.items.Set(idKey(id), rt) })
	return rt, nil
}

// ListRecurring returns a copy of the cached list so callers cannot mutate it.
func (c *CachedRepository) ListRecurring(ctx context.Context) ([]core.RecurringTransaction, error) {
	if list, ok := c.lists.Get(allRecurringKey); ok {
		return append([]core.RecurringTransaction(nil), list...), nil
	}
	gen := c.generation()
	list, err := c.Repository.ListRecurring(ctx)
	if err != nil {
		return nil, err
	}
	c.fill(gen, func() { c.lists.Set(allRecurringKey, append([]core.RecurringTransaction(nil), list...)) })
	return list, nil
}

func (c *CachedRepository) CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	created, err := c.Repository.CreateRecurring(ctx, rt)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	c.mu.Lock()
	c.gen++
	c.lists.Delete(allRecurringKey)
	c.mu.Unlock()
	return created, nil
}

func (c *CachedRepository) UpdateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	defer c.invalidate(rt.ID)
	return c.Repository.UpdateRecurring(ctx, rt)
}

func (c *CachedRepository) DeleteRecurring(ctx context.Context, id int64) error {
	defer c.invalidate(id)
	return c.Repository.DeleteRecurring(ctx, id)
}

func (c *CachedRepository) invalidate(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lists.Delete(allRecurringKey)
	c.items.Delete(idKey(id))
}

func (c *CachedRepository) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// fill runs set unless an invalidation happened since gen was read.
func (c *CachedRepository) fill(gen uint64, set func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == gen {
		set()
	}
}

// Ping forwards readiness checks to the wrapped repository when it supports them.
func (c *CachedRepository) Ping(ctx context.Context) error {
	if p, ok := c.Repository.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
