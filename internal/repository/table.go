package repository

import (
	"context"
	"time"

	"sheet_lms_backend/internal/cache"
	"sheet_lms_backend/internal/sheet"
	"sheet_lms_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Row 解析后的实体连同原始记录一起缓存，列匹配使用原始文本
type Row[T any] struct {
	Record sheet.Record `json:"record"`
	Value  T            `json:"value"`
}

// Table 单张表上的通用查询：线性扫描，按列做精确字符串匹配
type Table[T any] struct {
	store  sheet.Store
	cache  cache.Cache
	schema Schema[T]
	// 同一时刻的多个未命中只触发一次远程读取
	group singleflight.Group
}

func NewTable[T any](store sheet.Store, c cache.Cache, schema Schema[T]) *Table[T] {
	if c == nil {
		c = cache.Nop{}
	}
	return &Table[T]{store: store, cache: c, schema: schema}
}

func (t *Table[T]) Schema() Schema[T] {
	return t.schema
}

func (t *Table[T]) cacheKey() string {
	return t.schema.CachePrefix + ":all"
}

func (t *Table[T]) load(ctx context.Context) ([]Row[T], error) {
	records, err := t.store.ReadAll(ctx, t.schema.Table)
	if err != nil {
		return nil, err
	}
	rows := make([]Row[T], len(records))
	for i, r := range records {
		rows[i] = Row[T]{Record: r, Value: t.schema.Decode(r)}
	}
	return rows, nil
}

// sharedLoadTimeout 共享读取脱离发起者的取消，由这里限定时长
const sharedLoadTimeout = 30 * time.Second

// loadShared 共享读取不受任何单个调用方取消的影响，调用方各自按自己的 ctx 放弃等待
func (t *Table[T]) loadShared(ctx context.Context) ([]Row[T], error) {
	ch := t.group.DoChan(t.cacheKey(), func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		return t.load(loadCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Row[T]), nil
	}
}

func (t *Table[T]) rows(ctx context.Context, fresh bool) ([]Row[T], error) {
	if fresh {
		return t.load(ctx)
	}
	return cache.Remember(ctx, t.cache, t.cacheKey(), t.loadShared)
}

func values[T any](rows []Row[T]) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.Value
	}
	return out
}

// All 全部记录，可能来自缓存
func (t *Table[T]) All(ctx context.Context) ([]T, error) {
	rows, err := t.rows(ctx, false)
	if err != nil {
		return nil, err
	}
	return values(rows), nil
}

// Fresh 绕过缓存直接读取远程表
func (t *Table[T]) Fresh(ctx context.Context) ([]T, error) {
	rows, err := t.rows(ctx, true)
	if err != nil {
		return nil, err
	}
	return values(rows), nil
}

func (t *Table[T]) FindOne(ctx context.Context, column, value string) (T, bool, error) {
	var zero T
	rows, err := t.rows(ctx, false)
	if err != nil {
		return zero, false, err
	}
	for _, r := range rows {
		if r.Record.Get(column) == value {
			return r.Value, true, nil
		}
	}
	return zero, false, nil
}

// Filter 返回所有匹配行，保持表中顺序
func (t *Table[T]) Filter(ctx context.Context, column, value string) ([]T, error) {
	rows, err := t.rows(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	for _, r := range rows {
		if r.Record.Get(column) == value {
			out = append(out, r.Value)
		}
	}
	return out, nil
}

// FindPosition 总是重新读取远程表，返回的行号用于随后的覆盖写
func (t *Table[T]) FindPosition(ctx context.Context, column, value string) (int, bool, error) {
	return t.store.FindPosition(ctx, t.schema.Table, column, value)
}

// Insert 追加一行，成功后失效缓存
func (t *Table[T]) Insert(ctx context.Context, v T) error {
	if err := t.store.Append(ctx, t.schema.Table, t.schema.Encode(v)); err != nil {
		return err
	}
	t.invalidateAfterWrite(ctx)
	return nil
}

// Replace 覆盖指定行，成功后失效缓存
func (t *Table[T]) Replace(ctx context.Context, position int, v T) error {
	if err := t.store.Overwrite(ctx, t.schema.Table, position, t.schema.Encode(v)); err != nil {
		return err
	}
	t.invalidateAfterWrite(ctx)
	return nil
}

func (t *Table[T]) Invalidate(ctx context.Context) error {
	return t.cache.Invalidate(ctx, t.schema.CachePrefix)
}

// 写入已经成功，缓存失效失败只记录日志，旧条目最迟在 TTL 后过期
func (t *Table[T]) invalidateAfterWrite(ctx context.Context) {
	if err := t.Invalidate(ctx); err != nil {
		logger.Log.Warn("cache invalidation failed",
			zap.String("prefix", t.schema.CachePrefix),
			zap.Error(err),
		)
	}
}
