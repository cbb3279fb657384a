package cache

import (
	"context"
	"sync"
	"time"

	"askverba.app/server/internal/globaltime"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is a process-local Store. Entries are dropped lazily on read
// and when the store grows past maxEntries.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
}

func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &MemoryStore{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if entry.expired(globaltime.UTC()) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := globaltime.UTC()
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.evictLocked(now)
	}
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictLocked drops expired entries, then arbitrary ones until there is room.
func (s *MemoryStore) evictLocked(now time.Time) {
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
		}
	}
	for key := range s.entries {
		if len(s.entries) < s.maxEntries {
			return
		}
		delete(s.entries, key)
	}
}

type memoryCounter struct {
	count     int64
	expiresAt time.Time
}

type MemoryLimiter struct {
	mu       sync.Mutex
	counters map[string]memoryCounter
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{counters: make(map[string]memoryCounter)}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := globaltime.UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	counter, ok := l.counters[key]
	if !ok || !now.Before(counter.expiresAt) {
		counter = memoryCounter{expiresAt: now.Add(window)}
	}
	counter.count++
	l.counters[key] = counter

	if len(l.counters) > 4096 {
		for k, c := range l.counters {
			if !now.Before(c.expiresAt) {
				delete(l.counters, k)
			}
		}
	}

	return decide(counter.count, limit, counter.expiresAt.Sub(now)), nil
}
