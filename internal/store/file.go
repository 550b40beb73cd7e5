package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/ratelimit"
)

// FileCacheStore keeps one JSON file per cache entry under a directory.
// Keys are hex digests, so they are always safe as file names. A file that
// fails to parse is treated as absent and deleted, so a torn write heals
// itself on the next read or sweep.
type FileCacheStore struct {
	dir string
}

// NewFileCacheStore creates the directory if needed and returns the store.
func NewFileCacheStore(dir string) (*FileCacheStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileCacheStore{dir: dir}, nil
}

func (s *FileCacheStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get retrieves the entry for key, or nil when absent or unreadable.
func (s *FileCacheStore) Get(_ context.Context, key string) (*cache.Entry, error) {
	raw, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry cache.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.Printf("cache: removing corrupted entry %s: %v", key, err)
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove corrupted cache file: %w", err)
		}
		return nil, nil
	}
	return &entry, nil
}

// Put writes the entry to a temp file and renames it into place, so readers
// never observe a partial entry.
func (s *FileCacheStore) Put(_ context.Context, entry cache.Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	return writeFileAtomic(s.path(entry.Key), raw)
}

// Delete removes the entry for key; absent keys are not an error.
func (s *FileCacheStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// DeleteExpired removes entries expired before cutoff, plus any file that no
// longer parses.
func (s *FileCacheStore) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
	names, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list cache directory: %w", err)
	}

	deleted := 0
	for _, dirEntry := range names {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, dirEntry.Name())

		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry cache.Entry
		stale := json.Unmarshal(raw, &entry) != nil || !entry.ExpiresAt.After(cutoff)
		if !stale {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return deleted, fmt.Errorf("failed to remove cache file: %w", err)
		}
		deleted++
	}
	return deleted, nil
}

// usageFile is the on-disk shape of the rate-limit store: client ID to
// operation to usage timestamps.
type usageFile map[string]map[string][]time.Time

// FileRateLimitStore keeps all usage records in a single JSON file guarded by
// a mutex. Suitable for single-process deployments only.
type FileRateLimitStore struct {
	path string
	mu   sync.Mutex
}

// NewFileRateLimitStore creates the parent directory if needed and returns
// the store.
func NewFileRateLimitStore(path string) (*FileRateLimitStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create rate limit directory: %w", err)
	}
	return &FileRateLimitStore{path: path}, nil
}

// load reads the usage file. A missing or corrupted file yields an empty map;
// corruption is logged and the file is rewritten on the next save.
func (s *FileRateLimitStore) load() (usageFile, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return usageFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rate limit file: %w", err)
	}

	var usage usageFile
	if err := json.Unmarshal(raw, &usage); err != nil {
		log.Printf("rate limit: resetting corrupted usage file: %v", err)
		return usageFile{}, nil
	}
	return usage, nil
}

func (s *FileRateLimitStore) save(usage usageFile) error {
	raw, err := json.Marshal(usage)
	if err != nil {
		return fmt.Errorf("failed to marshal usage file: %w", err)
	}
	return writeFileAtomic(s.path, raw)
}

// Timestamps returns every recorded usage for the client and operation.
func (s *FileRateLimitStore) Timestamps(_ context.Context, clientID string, op ratelimit.Operation) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usage, err := s.load()
	if err != nil {
		return nil, err
	}
	return usage[clientID][string(op)], nil
}

// Append records one usage at the given time.
func (s *FileRateLimitStore) Append(_ context.Context, clientID string, op ratelimit.Operation, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	usage, err := s.load()
	if err != nil {
		return err
	}
	if usage[clientID] == nil {
		usage[clientID] = map[string][]time.Time{}
	}
	usage[clientID][string(op)] = append(usage[clientID][string(op)], at)
	return s.save(usage)
}

// DeleteBefore removes usage records older than cutoff across all clients.
func (s *FileRateLimitStore) DeleteBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	usage, err := s.load()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for clientID, ops := range usage {
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
			delete(usage, clientID)
		}
	}

	if deleted == 0 {
		return 0, nil
	}
	return deleted, s.save(usage)
}

// writeFileAtomic writes data to a temp file in the target's directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
