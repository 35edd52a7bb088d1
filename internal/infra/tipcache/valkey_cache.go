package tipcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/carbonlens/internal/domain/recommend"
)

// ValkeyCache stores tips as JSON strings in a Valkey-compatible server.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache. Keys are namespaced by prefix.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "carbonlens"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

// GetTips implements recommend.Cache.
func (c *ValkeyCache) GetTips(ctx context.Context, key string) ([]recommend.Tip, bool, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var tips []recommend.Tip
	if err := json.Unmarshal([]byte(payload), &tips); err != nil {
		return nil, false, err
	}
	return tips, true, nil
}

// SaveTips implements recommend.Cache.
func (c *ValkeyCache) SaveTips(ctx context.Context, key string, tips []recommend.Tip, ttl time.Duration) error {
	payload, err := json.Marshal(tips)
	if err != nil {
		return err
	}
	cmd := setCommand(c.client.B(), c.key(key), string(payload), ttl)
	return c.client.Do(ctx, cmd).Error()
}

// setCommand builds SET with EX when the ttl is positive.
func setCommand(b valkey.Builder, key, payload string, ttl time.Duration) valkey.Completed {
	set := b.Set().Key(key).Value(payload)
	if ex, ok := expiry(ttl); ok {
		return set.Ex(ex).Build()
	}
	return set.Build()
}

// expiry floors positive ttls to one second, the smallest EX accepts.
// Non-positive ttls mean the entry does not expire.
func expiry(ttl time.Duration) (time.Duration, bool) {
	if ttl <= 0 {
		return 0, false
	}
	return max(ttl, time.Second), true
}

func (c *ValkeyCache) key(k string) string {
	return c.prefix + ":" + k
}

var _ recommend.Cache = (*ValkeyCache)(nil)
