package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"yatube/domain"
)

// DefaultPrefix namespaces the page cache keys inside a shared Redis database.
const DefaultPrefix = "yatube:page:"

// Redis is a page cache shared by every server process connected to the same Redis.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis returns a Redis page cache storing its keys below prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

var _ domain.PageCache = &Redis{}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("err reading cached page %s: %w", key, err)
	}
	return body, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.prefix+key, body, ttl).Err(); err != nil {
		return fmt.Errorf("err caching page %s: %w", key, err)
	}
	return nil
}

// Clear deletes every key below the cache's prefix. Keys of other applications are left alone.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("err scanning cached pages: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
