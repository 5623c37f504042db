package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	defaultMaxEntries      = 10000
	defaultCleanupInterval = time.Minute
)

type memoryEntry struct {
	Entry
	expiresAt  time.Time
	lastAccess time.Time
}

// MemoryStore is the default cache backend: a TTL map with LRU eviction at
// a fixed capacity and a background sweeper for expired entries.
type MemoryStore struct {
	maxEntries int

	mu      sync.Mutex
	entries map[string]*memoryEntry
	hits    int64
	misses  int64
	writes  int64

	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates a memory cache holding at most maxEntries entries.
// Zero means the default capacity.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	s := &MemoryStore{
		maxEntries: maxEntries,
		entries:    make(map[string]*memoryEntry),
		done:       make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, nil
	}
	now := time.Now()
	if now.After(e.expiresAt) {
		delete(s.entries, key)
		s.misses++
		return nil, nil
	}

	e.lastAccess = now
	s.hits++
	cp := e.Entry
	cp.Payload = append([]byte(nil), e.Payload...)
	return &cp, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	now := time.Now()
	cp := entry
	cp.Payload = append([]byte(nil), entry.Payload...)
	if cp.CachedAt.IsZero() {
		cp.CachedAt = now
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.evictOldestLocked()
	}
	s.entries[key] = &memoryEntry{
		Entry:      cp,
		expiresAt:  now.Add(ttl),
		lastAccess: now,
	}
	s.writes++
	return nil
}

func (s *MemoryStore) InvalidatePrefix(ctx context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Entries: len(s.entries),
		Hits:    s.hits,
		Misses:  s.misses,
		Writes:  s.writes,
	}, nil
}

func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// evictOldestLocked drops the least recently accessed entry. Capacity is
// small enough that a linear scan beats maintaining an ordered structure.
func (s *MemoryStore) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, e := range s.entries {
		if oldestKey == "" || e.lastAccess.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.lastAccess
		}
	}
	if oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for key, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
