package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/ratelimit"
)

func TestFileCacheStoreRoundTrip(t *testing.T) {
	store, err := NewFileCacheStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	entry := cache.Entry{
		Key:       "abc123",
		Payload:   json.RawMessage(`{"suggestions":["one"]}`),
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	require.NoError(t, store.Put(ctx, entry))

	got, err := store.Get(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.Key, got.Key)
	assert.JSONEq(t, string(entry.Payload), string(got.Payload))
	assert.True(t, entry.ExpiresAt.Equal(got.ExpiresAt))
}

func TestFileCacheStoreMissingKey(t *testing.T) {
	store, err := NewFileCacheStore(t.TempDir())
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileCacheStoreOverwrite(t *testing.T) {
	store, err := NewFileCacheStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, cache.Entry{Key: "k", Payload: json.RawMessage(`"old"`), ExpiresAt: time.Now()}))
	require.NoError(t, store.Put(ctx, cache.Entry{Key: "k", Payload: json.RawMessage(`"new"`), ExpiresAt: time.Now()}))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"new"`, string(got.Payload))
}

func TestFileCacheStoreSelfHealsCorruptedEntry(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileCacheStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	got, err := store.Get(ctx, "bad")
	require.NoError(t, err)
	assert.Nil(t, got, "corrupted entry reads as a miss")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "corrupted file is removed")
}

func TestFileCacheStoreDeleteExpired(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileCacheStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.Put(ctx, cache.Entry{Key: "expired", Payload: json.RawMessage(`1`), ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, store.Put(ctx, cache.Entry{Key: "fresh", Payload: json.RawMessage(`2`), ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.json"), []byte("junk"), 0o644))

	deleted, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)

	assert.Equal(t, 2, deleted, "expired and corrupted entries are both removed")
	got, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestFileRateLimitStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rate_limits.json")
	store, err := NewFileRateLimitStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	first := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, "1.2.3.4", ratelimit.OpAnalyze, first))
	require.NoError(t, store.Append(ctx, "1.2.3.4", ratelimit.OpAnalyze, first.Add(time.Minute)))
	require.NoError(t, store.Append(ctx, "1.2.3.4", ratelimit.OpTailor, first))

	timestamps, err := store.Timestamps(ctx, "1.2.3.4", ratelimit.OpAnalyze)
	require.NoError(t, err)
	require.Len(t, timestamps, 2)
	assert.True(t, timestamps[0].Equal(first))
}

func TestFileRateLimitStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rate_limits.json")
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Second)

	store, err := NewFileRateLimitStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, "c1", ratelimit.OpSuggestions, at))

	reopened, err := NewFileRateLimitStore(path)
	require.NoError(t, err)
	timestamps, err := reopened.Timestamps(ctx, "c1", ratelimit.OpSuggestions)
	require.NoError(t, err)
	require.Len(t, timestamps, 1)
	assert.True(t, timestamps[0].Equal(at))
}

func TestFileRateLimitStoreDeleteBefore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rate_limits.json")
	store, err := NewFileRateLimitStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	old := time.Now().Add(-25 * time.Hour)
	recent := time.Now()
	require.NoError(t, store.Append(ctx, "c1", ratelimit.OpAnalyze, old))
	require.NoError(t, store.Append(ctx, "c1", ratelimit.OpAnalyze, recent))
	require.NoError(t, store.Append(ctx, "c2", ratelimit.OpTailor, old))

	deleted, err := store.DeleteBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	timestamps, err := store.Timestamps(ctx, "c1", ratelimit.OpAnalyze)
	require.NoError(t, err)
	assert.Len(t, timestamps, 1)

	timestamps, err = store.Timestamps(ctx, "c2", ratelimit.OpTailor)
	require.NoError(t, err)
	assert.Empty(t, timestamps)
}

func TestFileRateLimitStoreResetsCorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rate_limits.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	store, err := NewFileRateLimitStore(path)
	require.NoError(t, err)

	timestamps, err := store.Timestamps(context.Background(), "c1", ratelimit.OpAnalyze)
	require.NoError(t, err)
	assert.Empty(t, timestamps)
}

func TestMemoryStoresSatisfyInterfaces(t *testing.T) {
	var _ cache.Store = NewMemoryCacheStore()
	var _ ratelimit.Store = NewMemoryRateLimitStore()
}
