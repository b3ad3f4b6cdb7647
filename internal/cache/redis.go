package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis 多实例部署时共享的读缓存，过期交给 Redis 的 EX 处理
type Redis struct {
	client    *redis.Client
	namespace string
	ttl       atomic.Int64
}

func NewRedis(client *redis.Client, namespace string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "sheetlms"
	}
	r := &Redis{client: client, namespace: namespace}
	r.ttl.Store(int64(ttl))
	return r
}

func (r *Redis) key(k string) string {
	return r.namespace + ":" + k
}

func (r *Redis) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		r.ttl.Store(int64(ttl))
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.key(key), value, time.Duration(r.ttl.Load())).Err()
}

func (r *Redis) Invalidate(ctx context.Context, pattern string) error {
	match := r.namespace + ":*" + pattern + "*"
	iter := r.client.Scan(ctx, 0, match, 100).Iterator()
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
