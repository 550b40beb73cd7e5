// Package maintenance runs the periodic background sweeps: expired cache
// entries, aged-out usage records, and orphaned resume uploads.
package maintenance

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/ratelimit"
)

// Runner owns the sweep schedule. Zero intervals disable the corresponding
// sweep.
type Runner struct {
	Cache   *cache.Cache
	Limiter *ratelimit.Limiter

	UploadDir    string
	UploadMaxAge time.Duration

	CacheInterval  time.Duration
	PruneInterval  time.Duration
	UploadInterval time.Duration
}

// Start launches the sweep loop. It returns immediately; the loop stops when
// ctx is cancelled. Sweep failures are logged and retried on the next tick.
func (r *Runner) Start(ctx context.Context) {
	go r.loop(ctx)
}

func (r *Runner) loop(ctx context.Context) {
	cacheTicks, stopCache := ticker(r.CacheInterval)
	defer stopCache()
	pruneTicks, stopPrune := ticker(r.PruneInterval)
	defer stopPrune()
	uploadTicks, stopUploads := ticker(r.UploadInterval)
	defer stopUploads()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cacheTicks:
			r.sweepCache(ctx)
		case <-pruneTicks:
			r.pruneUsage(ctx)
		case <-uploadTicks:
			r.sweepUploads()
		}
	}
}

// ticker returns a tick channel and its stop function, or a nil channel
// (never ready) with a no-op stop when the interval is zero.
func ticker(interval time.Duration) (<-chan time.Time, func()) {
	if interval <= 0 {
		return nil, func() {}
	}
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

func (r *Runner) sweepCache(ctx context.Context) {
	deleted, err := r.Cache.SweepExpired(ctx)
	if err != nil {
		log.Printf("maintenance: cache sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("maintenance: removed %d expired cache entries", deleted)
	}
}

func (r *Runner) pruneUsage(ctx context.Context) {
	deleted, err := r.Limiter.PruneExpired(ctx)
	if err != nil {
		log.Printf("maintenance: usage prune failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("maintenance: removed %d aged-out usage records", deleted)
	}
}

// sweepUploads removes uploaded files older than UploadMaxAge. Uploads are
// normally deleted right after processing; this catches files orphaned by a
// crash mid-request.
func (r *Runner) sweepUploads() {
	deleted, err := SweepUploads(r.UploadDir, r.UploadMaxAge)
	if err != nil {
		log.Printf("maintenance: upload sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("maintenance: removed %d orphaned uploads", deleted)
	}
}

// SweepUploads deletes regular files under dir whose modification time is
// older than maxAge, returning the number deleted. A missing directory is
// treated as empty.
func SweepUploads(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Printf("maintenance: failed to remove upload %s: %v", path, err)
			continue
		}
		deleted++
	}
	return deleted, nil
}
