package tipcache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/yanqian/carbonlens/internal/domain/recommend"
)

type entry struct {
	tips      []recommend.Tip
	expiresAt time.Time
}

// MemoryCache is an in-process tip cache for tests and local dev.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache constructs an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]entry), now: time.Now}
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// GetTips implements recommend.Cache. Expired entries are dropped on read.
func (c *MemoryCache) GetTips(_ context.Context, key string) ([]recommend.Tip, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	now := c.now()
	if !e.expired(now) {
		return cloneTips(e.tips), true, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// SaveTips may have replaced the entry after the read lock was released.
	current, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !current.expired(now) {
		return cloneTips(current.tips), true, nil
	}
	delete(c.entries, key)
	return nil, false, nil
}

// SaveTips stores tips with an optional TTL. A zero TTL never expires.
func (c *MemoryCache) SaveTips(_ context.Context, key string, tips []recommend.Tip, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.entries[key] = entry{tips: cloneTips(tips), expiresAt: exp}
	return nil
}

func cloneTips(tips []recommend.Tip) []recommend.Tip {
	out := make([]recommend.Tip, len(tips))
	for i, tip := range tips {
		tip.Steps = slices.Clone(tip.Steps)
		out[i] = tip
	}
	return out
}

var _ recommend.Cache = (*MemoryCache)(nil)
