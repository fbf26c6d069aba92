// Package cache implements domain.PageCache, once in process memory and once
// on top of Redis for deployments running several server processes.
package cache

import (
	"context"
	"sync"
	"time"

	"yatube/domain"
)

type entry struct {
	body    []byte
	expires time.Time
}

// Memory is a process local page cache. Expired entries are dropped lazily on read.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory returns an empty Memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

var _ domain.PageCache = &Memory{}

// Get returns a copy of the body stored under key, unless it has expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.body...), true, nil
}

// Set stores body under key for ttl. A non-positive ttl stores nothing.
func (m *Memory) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{
		body:    append([]byte(nil), body...),
		expires: m.now().Add(ttl),
	}
	return nil
}

// Clear drops every entry.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
	return nil
}
