package cache

import (
	"context"
	"encoding/json"
	"time"

	"sheet_lms_backend/pkg/monitoring"
)

// DefaultTTL 读缓存默认有效期
const DefaultTTL = 5 * time.Minute

// Cache 进程级读缓存。值以 JSON 字节保存，便于在内存和 Redis 之间切换。
// 写操作成功之后才能调用 Invalidate，避免在变更后继续返回旧数据。
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Invalidate 删除所有包含 pattern 的 key
	Invalidate(ctx context.Context, pattern string) error
}

// Remember 读穿透：命中则直接返回，否则调用 load 并写入缓存。
// 缓存本身出错时退化为直接加载，不影响请求。
func Remember[T any](ctx context.Context, c Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	if raw, ok, err := c.Get(ctx, key); err == nil && ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			monitoring.ObserveCache(true)
			return v, nil
		}
	}
	monitoring.ObserveCache(false)

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if raw, err := json.Marshal(v); err == nil {
		_ = c.Set(ctx, key, raw)
	}
	return v, nil
}

// Nop 不缓存任何内容
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte) error         { return nil }
func (Nop) Invalidate(context.Context, string) error          { return nil }
