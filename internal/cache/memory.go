package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value []byte
	at    time.Time
}

// Memory 带 TTL 的内存缓存，读多写少，使用读写锁
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*Memory)

// WithClock 注入时钟，测试中用来模拟过期
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

func NewMemory(ttl time.Duration, opts ...Option) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// SetTTL 配置热更新时调整有效期，已有条目按新 TTL 判断
func (m *Memory) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.ttl = ttl
	m.mu.Unlock()
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	ttl := m.ttl
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if m.now().Sub(e.at) >= ttl {
		m.mu.Lock()
		// 期间可能已被重新写入
		if cur, still := m.entries[key]; still && cur.at.Equal(e.at) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.entries[key] = entry{value: value, at: m.now()}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Invalidate(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pattern == "" {
		m.entries = make(map[string]entry)
		return nil
	}
	for key := range m.entries {
		if strings.Contains(key, pattern) {
			delete(m.entries, key)
		}
	}
	return nil
}

// Len 当前条目数（含已过期但未清理的）
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
