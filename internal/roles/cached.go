package roles

import (
	"context"
	"time"

	"daybook/internal/cache"
	"daybook/internal/ports"
)

var _ ports.RoleChecker = (*Cached)(nil)

// Cached remembers answers of a slower RoleChecker for a while.
// Errors are never cached.
type Cached struct {
	next  ports.RoleChecker
	cache *cache.LRU[int64, bool]
}

func NewCached(next ports.RoleChecker, size int, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: cache.NewLRU[int64, bool](size, ttl)}
}

func (c *Cached) IsPrivileged(ctx context.Context, userID int64) (bool, error) {
	if v, ok := c.cache.Get(userID); ok {
		return v, nil
	}
	v, err := c.next.IsPrivileged(ctx, userID)
	if err != nil {
		return false, err
	}
	c.cache.Set(userID, v)
	return v, nil
}
