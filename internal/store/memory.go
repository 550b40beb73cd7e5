package store

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/ratelimit"
)

// MemoryCacheStore is an in-process cache store. Used in tests and as the
// backend when no persistence is configured.
type MemoryCacheStore struct {
	mu      sync.Mutex
	entries map[string]cache.Entry
}

// NewMemoryCacheStore returns an empty in-memory cache store.
func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{entries: make(map[string]cache.Entry)}
}

// Get retrieves the entry for key, or nil when absent.
func (s *MemoryCacheStore) Get(_ context.Context, key string) (*cache.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Put stores the entry, overwriting any existing entry for its key.
func (s *MemoryCacheStore) Put(_ context.Context, entry cache.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = entry
	return nil
}

// Delete removes the entry for key.
func (s *MemoryCacheStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// DeleteExpired removes entries expired before cutoff.
func (s *MemoryCacheStore) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key, entry := range s.entries {
		if !entry.ExpiresAt.After(cutoff) {
			delete(s.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

// MemoryRateLimitStore is an in-process rate-limit store. Used in tests and
// as the backend when no persistence is configured.
type MemoryRateLimitStore struct {
	mu    sync.Mutex
	usage map[string]map[ratelimit.Operation][]time.Time
}

// NewMemoryRateLimitStore returns an empty in-memory rate-limit store.
func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{usage: make(map[string]map[ratelimit.Operation][]time.Time)}
}

// Timestamps returns every recorded usage for the client and operation.
func (s *MemoryRateLimitStore) Timestamps(_ context.Context, clientID string, op ratelimit.Operation) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.usage[clientID][op]...), nil
}

// Append records one usage at the given time.
func (s *MemoryRateLimitStore) Append(_ context.Context, clientID string, op ratelimit.Operation, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usage[clientID] == nil {
		s.usage[clientID] = make(map[ratelimit.Operation][]time.Time)
	}
	s.usage[clientID][op] = append(s.usage[clientID][op], at)
	return nil
}

// DeleteBefore removes usage records older than cutoff across all clients.
func (s *MemoryRateLimitStore) DeleteBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for clientID, ops := range s.usage {
		for op, timestamps := range ops {
			kept := timestamps[:0]
			for _, at := range timestamps {
				if at.Before(cutoff) {
					deleted++
				} else {
					kept = append(kept, at)
				}
			}
			if len(kept) == 0 {
				delete(ops, op)
			} else {
				ops[op] = kept
			}
		}
		if len(ops) == 0 {
			delete(s.usage, clientID)
		}
	}
	return deleted, nil
}
