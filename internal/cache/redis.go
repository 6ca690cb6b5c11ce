package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore backs the Store interface with Redis. Read errors are treated
// as misses; only invalidation failures are surfaced to the caller.
type redisStore struct {
	client *redis.Client
}

func NewRedis(addr string) Store {
	return &redisStore{
		client: redis.NewClient(&redis.Options{
			Addr:        addr,
			DialTimeout: time.Second,
			ReadTimeout: time.Second,
		}),
	}
}

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("[cache] redis get %q: %v", key, err)
		return nil, false
	}
	return val, true
}

func (r *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("[cache] redis set %q: %v", key, err)
	}
}

func (r *redisStore) DeletePattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
