package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache guarda lecturas del catálogo serializadas en JSON
type Cache interface {
	Get(ctx context.Context, key string, target any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

type item struct {
	value      []byte
	expiration int64
}

// Memory es la caché en proceso, usada cuando no hay Redis configurado
type Memory struct {
	items map[string]item
	mu    sync.RWMutex
	now   func() time.Time
}

// NewMemory crea la caché y limpia expirados cada cleanupEvery hasta que ctx termine
func NewMemory(ctx context.Context, cleanupEvery time.Duration) *Memory {
	m := &Memory{
		items: make(map[string]item),
		now:   time.Now,
	}
	if cleanupEvery > 0 {
		go m.cleanupExpired(ctx, cleanupEvery)
	}
	return m
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = item{
		value:      data,
		expiration: m.now().Add(ttl).UnixNano(),
	}
	return nil
}

func (m *Memory) Get(_ context.Context, key string, target any) error {
	m.mu.RLock()
	it, found := m.items[key]
	m.mu.RUnlock()

	if !found || m.now().UnixNano() > it.expiration {
		return ErrCacheMiss
	}
	return json.Unmarshal(it.value, target)
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}

func (m *Memory) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

// Size retorna el número de items en caché, incluidos los expirados aún no limpiados
func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory) cleanupExpired(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

func (m *Memory) removeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UnixNano()
	for key, it := range m.items {
		if now > it.expiration {
			delete(m.items, key)
		}
	}
}
