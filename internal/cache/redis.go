// Package cache provides the Redis client plus cache-aside helpers for the
// application. A failed Redis connection is not fatal: the client stays nil
// and every helper degrades to a direct load.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"aurelo/internal/observability"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

func parseOptions(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// InitRedis connects to Redis at addr, which may be a plain host:port or a
// redis:// URL.
func InitRedis(addr string) {
	opts, err := parseOptions(addr)
	if err != nil {
		slog.Warn("invalid REDIS_URL, continuing without cache", "addr", addr, "error", err)
		client = nil
		return
	}

	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, continuing without cache", "error", err)
		client = nil
		return
	}

	slog.Info("redis connected")
	client = c
}

// GetClient returns the current Redis client instance, nil when the cache is
// unavailable.
func GetClient() *redis.Client {
	return client
}
