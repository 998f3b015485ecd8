// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// rateLimitingEnabled reports whether the current APP_ENV should be throttled.
// Test, development and stress runs are exempt so local workflows and load
// tests are not slowed down.
func rateLimitingEnabled() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development", "stress":
		return false
	}
	return true
}

// CheckRateLimit checks if an actor has exceeded its budget for a resource.
// Returns true if allowed, false if the limit was exceeded.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, actor string, limit int, window time.Duration) (bool, error) {
	if !rateLimitingEnabled() {
		return true, nil
	}
	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := "rl:" + resource + ":" + actor

	// INCR, then set EXPIRE only on the first hit of the window
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`.
// It keys by authenticated userID (if set in c.Locals("userID")) otherwise by
// remote IP, and fails open when Redis is down.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit Redis failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := "ip:" + c.IP()
		if uid := c.Locals("userID"); uid != nil {
			actor = fmt.Sprintf("user:%v", uid)
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(c.Context(), rdb, resource, actor, limit, window)
		if err != nil {
			if policy == FailClosed {
				slog.Warn("rate limit store unavailable, failing closed",
					"route", c.Path(), "resource", resource, "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
