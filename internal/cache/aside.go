package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix      = "user:%d"
	SwapKeyPrefix      = "swap:%d"
	FriendIDsKeyPrefix = "user:%d:friend_ids"
)

const (
	UserTTL      = 5 * time.Minute
	SwapTTL      = 2 * time.Minute
	FriendIDsTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func SwapKey(swapID uint) string {
	return fmt.Sprintf(SwapKeyPrefix, swapID)
}

func FriendIDsKey(userID uint) string {
	return fmt.Sprintf(FriendIDsKeyPrefix, userID)
}

// Aside implements the cache-aside pattern: on hit, dest is populated from the
// cached JSON; on miss, load is called and its result is stored under key.
// When Redis is unavailable, load runs directly and nothing is cached.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, load func() error) error {
	if client == nil {
		return load()
	}

	raw, err := client.Get(ctx, key).Result()
	if err == nil {
		if uerr := json.Unmarshal([]byte(raw), dest); uerr == nil {
			return nil
		}
		// Corrupt entry, drop it and fall through to the loader
		client.Del(ctx, key)
	} else if err != redis.Nil {
		// Redis error, degrade to the loader without caching
		return load()
	}

	if err := load(); err != nil {
		return err
	}

	if data, merr := json.Marshal(dest); merr == nil {
		client.Set(ctx, key, data, ttl)
	}
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateSwap(ctx context.Context, swapID uint) {
	Invalidate(ctx, SwapKey(swapID))
}

func InvalidateFriendIDs(ctx context.Context, userID uint) {
	Invalidate(ctx, FriendIDsKey(userID))
}
