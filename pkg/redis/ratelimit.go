package redis

import (
	"context"
	"time"
)

// FixedWindowAllow counts one hit against scope and reports whether the
// window still has room. The window starts at the first hit; a counter
// found without a TTL (an earlier EXPIRE failed) is given one.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	store, err := c.cmd()
	if err != nil {
		return false, 0, err
	}
	key := c.RateLimitKey(scope)

	count, err := store.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if window > 0 {
		needsTTL := count == 1
		if !needsTTL {
			ttl, err := store.TTL(ctx, key).Result()
			needsTTL = err == nil && ttl < 0
		}
		if needsTTL {
			if err := store.Expire(ctx, key, window).Err(); err != nil {
				return false, count, err
			}
		}
	}
	return count <= limit, count, nil
}
