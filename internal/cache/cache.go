// Package cache provides a content-addressed, expiry-based cache for
// expensive LLM responses. Entries are keyed by a deterministic hash of the
// canonicalized request, so semantically identical requests share an entry.
//
// The cache is advisory: a miss only costs an extra LLM call, and concurrent
// writers to the same key race harmlessly because payloads for the same key
// are computed identically (last write wins).
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Entry is a single cached payload with its expiry.
type Entry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Store persists cache entries. Implementations must treat unreadable
// entries as absent and may self-heal by deleting them.
type Store interface {
	// Get returns the entry for key, or (nil, nil) when absent.
	Get(ctx context.Context, key string) (*Entry, error)
	// Put stores the entry, overwriting any existing entry for its key.
	Put(ctx context.Context, entry Entry) error
	// Delete removes the entry for key; absent keys are not an error.
	Delete(ctx context.Context, key string) error
	// DeleteExpired removes every entry with ExpiresAt before cutoff and
	// returns the number deleted, counting corrupted entries it removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// Cache wraps a Store with expiry handling.
type Cache struct {
	store Store
	now   func() time.Time
}

// New creates a Cache backed by store.
func New(store Store) *Cache {
	return &Cache{store: store, now: time.Now}
}

// Key returns the deterministic content hash for input: a sha256 digest over
// a canonical JSON serialization in which object keys and all-string arrays
// are sorted, so inputs differing only in list order collide to the same key.
func Key(input any) (string, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to serialize cache input: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("failed to canonicalize cache input: %w", err)
	}

	canonical, err := json.Marshal(canonicalize(generic))
	if err != nil {
		return "", fmt.Errorf("failed to serialize canonical form: %w", err)
	}

	digest := sha256.Sum256(canonical)
	return hex.EncodeToString(digest[:]), nil
}

// canonicalize sorts all-string arrays in place; json.Marshal already emits
// map keys in sorted order.
func canonicalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, nested := range v {
			v[key] = canonicalize(nested)
		}
		return v
	case []any:
		allStrings := true
		for i, nested := range v {
			v[i] = canonicalize(nested)
			if _, ok := v[i].(string); !ok {
				allStrings = false
			}
		}
		if allStrings {
			sort.Slice(v, func(i, j int) bool {
				return v[i].(string) < v[j].(string)
			})
		}
		return v
	default:
		return value
	}
}

// Get returns the cached payload for key, or nil on a miss. Expired entries
// are treated as absent and deleted lazily.
func (c *Cache) Get(ctx context.Context, key string) (json.RawMessage, error) {
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if entry == nil {
		return nil, nil
	}

	if !c.now().Before(entry.ExpiresAt) {
		if err := c.store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("failed to evict expired cache entry: %w", err)
		}
		return nil, nil
	}

	return entry.Payload, nil
}

// Put stores payload under key with the given time-to-live, overwriting any
// existing entry.
func (c *Cache) Put(ctx context.Context, key string, payload any, ttl time.Duration) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize cache payload: %w", err)
	}

	entry := Entry{
		Key:       key,
		Payload:   raw,
		ExpiresAt: c.now().Add(ttl),
	}
	if err := c.store.Put(ctx, entry); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// SweepExpired deletes every expired or corrupted persisted entry and returns
// the number deleted. Run periodically, independent of lookup-time eviction.
func (c *Cache) SweepExpired(ctx context.Context) (int, error) {
	deleted, err := c.store.DeleteExpired(ctx, c.now())
	if err != nil {
		return deleted, fmt.Errorf("failed to sweep cache: %w", err)
	}
	return deleted, nil
}
