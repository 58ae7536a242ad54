package cache

import (
	"context"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

// InitRedis connects the optional shared second-level cache. An empty address
// disables it; a connection failure is logged and also disables it, because the
// dashboard works from the in-process cache alone.
func InitRedis(ctx context.Context, addr string) *redis.Client {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		log.Println("REDIS_URL empty, shared query cache disabled")
		return nil
	}

	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := parseRedisURL(addr)
		if err != nil {
			log.Printf("failed to parse REDIS_URL, shared query cache disabled: %v", err)
			return nil
		}
		opts = parsed
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		log.Printf("failed to connect to Redis at %s, shared query cache disabled: %v", opts.Addr, err)
		_ = client.Close()
		return nil
	}
	log.Println("Connected to Redis")
	return client
}

// SharedLayer adapts the result of InitRedis for NewQueryCache so a disabled
// client stays a nil interface.
func SharedLayer(client *redis.Client) RedisClient {
	if client == nil {
		return nil
	}
	return client
}
