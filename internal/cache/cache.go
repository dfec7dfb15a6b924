// Package cache stores computed dashboard payloads for a short time.
//
// Entries belong to a generation. Invalidate starts a new one, and reads
// and writes tagged with an older generation miss or are dropped, so a
// payload computed before a write is never served after it.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Cache is a byte-oriented TTL cache. Callers take a Generation token
// before computing a value and pass it to Get and Set.
type Cache interface {
	Generation(ctx context.Context) string
	Get(ctx context.Context, gen, key string) ([]byte, bool)
	Set(ctx context.Context, gen, key string, value []byte)
	Invalidate(ctx context.Context)
}

type entry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process cache bounded by entry count.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]entry
	gen        uint64
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemory creates an in-process cache.
func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Memory{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *Memory) Generation(context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strconv.FormatUint(m.gen, 10)
}

func (m *Memory) current(gen string) bool {
	return gen == strconv.FormatUint(m.gen, 10)
}

func (m *Memory) Get(_ context.Context, gen, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.current(gen) {
		return nil, false
	}
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value unless gen is no longer current.
func (m *Memory) Set(_ context.Context, gen, key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.current(gen) {
		return
	}

	now := m.now()
	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.evict(now)
	}
	m.entries[key] = entry{value: value, expires: now.Add(m.ttl)}
}

func (m *Memory) Invalidate(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	clear(m.entries)
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// evict drops expired entries, or the one closest to expiry when none
// have expired. Callers hold m.mu.
func (m *Memory) evict(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
			continue
		}
		if oldestKey == "" || e.expires.Before(oldest) {
			oldestKey, oldest = k, e.expires
		}
	}
	if len(m.entries) >= m.maxEntries && oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}
