package recommend

import (
	"context"
	"time"
)

// Cache stores generated tips by analyzer fingerprint.
type Cache interface {
	GetTips(ctx context.Context, key string) ([]Tip, bool, error)
	SaveTips(ctx context.Context, key string, tips []Tip, ttl time.Duration) error
}

// TokenCounter measures prompt size for history trimming.
type TokenCounter interface {
	Count(text string) int
}
