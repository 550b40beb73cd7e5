package cache

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store for exercising Cache behavior.
type fakeStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	getErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]Entry)}
}

func (s *fakeStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (s *fakeStore) Put(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = entry
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *fakeStore) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
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

func TestKeyIsDeterministic(t *testing.T) {
	input := map[string]any{"job": "engineer", "skills": []string{"Go", "Python"}}

	first, err := Key(input)
	require.NoError(t, err)
	second, err := Key(input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64, "key is a hex sha256 digest")
}

func TestKeyIgnoresStringListOrder(t *testing.T) {
	a, err := Key(map[string]any{"skills": []string{"Python", "Go", "Rust"}})
	require.NoError(t, err)
	b, err := Key(map[string]any{"skills": []string{"Rust", "Python", "Go"}})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestKeyDistinguishesContent(t *testing.T) {
	a, err := Key(map[string]any{"skills": []string{"Python"}})
	require.NoError(t, err)
	b, err := Key(map[string]any{"skills": []string{"Go"}})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestKeyNestedStructures(t *testing.T) {
	a, err := Key(map[string]any{"profile": map[string]any{"skills": []string{"b", "a"}}, "n": 1})
	require.NoError(t, err)
	b, err := Key(map[string]any{"n": 1, "profile": map[string]any{"skills": []string{"a", "b"}}})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestCacheRoundTrip(t *testing.T) {
	c := New(newFakeStore())
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k1", map[string]string{"answer": "yes"}, time.Hour))

	payload, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, payload)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "yes", decoded["answer"])
}

func TestCacheMiss(t *testing.T) {
	c := New(newFakeStore())

	payload, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestCacheExpiryIsLazy(t *testing.T) {
	store := newFakeStore()
	c := New(store)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Put(ctx, "k1", "payload", 72*time.Hour))

	// Just before expiry the entry is served.
	c.now = func() time.Time { return now.Add(72*time.Hour - time.Second) }
	payload, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.NotNil(t, payload)

	// At expiry the entry is gone and has been deleted from the store.
	c.now = func() time.Time { return now.Add(72 * time.Hour) }
	payload, err = c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Empty(t, store.entries)
}

func TestSweepExpired(t *testing.T) {
	store := newFakeStore()
	c := New(store)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Put(ctx, "old", "a", time.Hour))
	require.NoError(t, c.Put(ctx, "fresh", "b", 10*time.Hour))

	c.now = func() time.Time { return now.Add(2 * time.Hour) }
	deleted, err := c.SweepExpired(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, deleted)
	_, ok := store.entries["fresh"]
	assert.True(t, ok)
}

func TestGetWrapsStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.getErr = assert.AnError
	c := New(store)

	_, err := c.Get(context.Background(), "k1")
	assert.ErrorIs(t, err, assert.AnError)
}
