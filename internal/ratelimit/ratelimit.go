// Package ratelimit enforces per-client, per-operation quotas over a rolling
// window. Usage timestamps are persisted through a Store so limits survive
// restarts; when persistence fails, the usage is still counted in memory and
// flushed later, so a flaky store under-serves rather than over-serves.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/jonathan/resume-matcher/internal/types"
)

// Operation identifies a rate-limited operation.
type Operation string

// The rate-limited operations.
const (
	OpAnalyze     Operation = "analyze"
	OpTailor      Operation = "tailor"
	OpSuggestions Operation = "suggestions"
)

// Operations lists every rate-limited operation in status-display order.
func Operations() []Operation {
	return []Operation{OpAnalyze, OpTailor, OpSuggestions}
}

// Store persists usage timestamps per client and operation.
type Store interface {
	// Timestamps returns every recorded usage for the client and operation,
	// including ones outside the current window; order is not significant.
	Timestamps(ctx context.Context, clientID string, op Operation) ([]time.Time, error)
	// Append records one usage at the given time.
	Append(ctx context.Context, clientID string, op Operation, at time.Time) error
	// DeleteBefore removes every usage older than cutoff, across all clients,
	// and returns the number removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Config holds quota and window settings.
type Config struct {
	// Quotas maps each operation to its maximum uses per window. Operations
	// absent from the map are unlimited.
	Quotas map[Operation]int
	// Window is the rolling interval over which quotas apply.
	Window time.Duration
	// Retention is how long usage records are kept before pruning. It must be
	// at least Window or counts would be lost while still relevant.
	Retention time.Duration
}

// DefaultConfig returns the standard quotas: 5 analyses and 2 each of the
// LLM-backed operations per rolling hour, with 24h record retention.
func DefaultConfig() Config {
	return Config{
		Quotas: map[Operation]int{
			OpAnalyze:     5,
			OpTailor:      2,
			OpSuggestions: 2,
		},
		Window:    time.Hour,
		Retention: 24 * time.Hour,
	}
}

// LimitError indicates a client has exhausted its quota for an operation.
type LimitError struct {
	Operation       Operation
	CooldownMinutes int
	Stats           types.OperationStats
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %d/%d used, retry in %d minutes",
		e.Operation, e.Stats.Used, e.Stats.Limit, e.CooldownMinutes)
}

// Limiter gates operations against a Store.
type Limiter struct {
	store  Store
	config Config
	now    func() time.Time

	mu sync.Mutex
	// unflushed holds usages the store failed to persist, keyed by client and
	// operation. They count toward quotas and are retried on the next append.
	unflushed map[string]map[Operation][]time.Time
}

// NewLimiter creates a Limiter over store with the given config.
func NewLimiter(store Store, config Config) *Limiter {
	return &Limiter{
		store:     store,
		config:    config,
		now:       time.Now,
		unflushed: make(map[string]map[Operation][]time.Time),
	}
}

// inWindow returns the timestamps within the rolling window ending now,
// merging persisted and unflushed usages.
func (l *Limiter) inWindow(ctx context.Context, clientID string, op Operation) ([]time.Time, error) {
	persisted, err := l.store.Timestamps(ctx, clientID, op)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage for %s/%s: %w", clientID, op, err)
	}

	l.mu.Lock()
	pending := append([]time.Time(nil), l.unflushed[clientID][op]...)
	l.mu.Unlock()

	windowStart := l.now().Add(-l.config.Window)
	recent := []time.Time{}
	for _, at := range append(persisted, pending...) {
		if at.After(windowStart) {
			recent = append(recent, at)
		}
	}
	return recent, nil
}

// IsLimited reports whether the client has exhausted its quota for op. It
// returns the LimitError describing the denial when limited, so callers can
// surface cooldown and usage without a second lookup.
func (l *Limiter) IsLimited(ctx context.Context, clientID string, op Operation) (*LimitError, error) {
	quota, limited := l.config.Quotas[op]
	if !limited {
		return nil, nil
	}

	recent, err := l.inWindow(ctx, clientID, op)
	if err != nil {
		return nil, err
	}
	if len(recent) < quota {
		return nil, nil
	}

	return &LimitError{
		Operation:       op,
		CooldownMinutes: cooldownMinutes(recent, l.config.Window, l.now()),
		Stats: types.OperationStats{
			Used:      len(recent),
			Limit:     quota,
			Remaining: 0,
		},
	}, nil
}

// RecordUsage records one usage of op by the client. The usage always counts:
// when the store rejects the write, the timestamp is kept in memory, counted
// by subsequent checks, and flushed on the next successful append.
func (l *Limiter) RecordUsage(ctx context.Context, clientID string, op Operation) {
	at := l.now()

	l.mu.Lock()
	pending := l.unflushed[clientID][op]
	delete(l.unflushed[clientID], op)
	l.mu.Unlock()

	failed := []time.Time{}
	for _, usage := range append(pending, at) {
		if err := l.store.Append(ctx, clientID, op, usage); err != nil {
			log.Printf("rate limit: failed to persist usage for %s/%s: %v", clientID, op, err)
			failed = append(failed, usage)
		}
	}

	if len(failed) > 0 {
		l.mu.Lock()
		if l.unflushed[clientID] == nil {
			l.unflushed[clientID] = make(map[Operation][]time.Time)
		}
		l.unflushed[clientID][op] = append(l.unflushed[clientID][op], failed...)
		l.mu.Unlock()
	}
}

// Status returns current usage and gate state for one operation.
func (l *Limiter) Status(ctx context.Context, clientID string, op Operation) (types.OperationStatus, error) {
	quota := l.config.Quotas[op]
	recent, err := l.inWindow(ctx, clientID, op)
	if err != nil {
		return types.OperationStatus{}, err
	}

	remaining := quota - len(recent)
	if remaining < 0 {
		remaining = 0
	}
	status := types.OperationStatus{
		OperationStats: types.OperationStats{
			Used:      len(recent),
			Limit:     quota,
			Remaining: remaining,
		},
	}
	if quota > 0 && len(recent) >= quota {
		status.IsLimited = true
		status.CooldownMinutes = cooldownMinutes(recent, l.config.Window, l.now())
	}
	return status, nil
}

// StatusAll returns the status of every known operation for the client.
func (l *Limiter) StatusAll(ctx context.Context, clientID string) (types.RateLimitStatus, error) {
	all := types.RateLimitStatus{}
	for _, op := range Operations() {
		status, err := l.Status(ctx, clientID, op)
		if err != nil {
			return nil, err
		}
		all[string(op)] = status
	}
	return all, nil
}

// PruneExpired deletes usage records older than the retention period and
// returns the number deleted. In-memory unflushed usages age out the same way.
func (l *Limiter) PruneExpired(ctx context.Context) (int, error) {
	cutoff := l.now().Add(-l.config.Retention)

	l.mu.Lock()
	for clientID, ops := range l.unflushed {
		for op, usages := range ops {
			kept := usages[:0]
			for _, at := range usages {
				if at.After(cutoff) {
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
			delete(l.unflushed, clientID)
		}
	}
	l.mu.Unlock()

	deleted, err := l.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return deleted, fmt.Errorf("failed to prune usage records: %w", err)
	}
	return deleted, nil
}

// cooldownMinutes is the whole number of minutes, rounded up, until the
// oldest in-window usage leaves the window and frees a slot.
func cooldownMinutes(recent []time.Time, window time.Duration, now time.Time) int {
	if len(recent) == 0 {
		return 0
	}
	oldest := recent[0]
	for _, at := range recent[1:] {
		if at.Before(oldest) {
			oldest = at
		}
	}
	wait := oldest.Add(window).Sub(now)
	if wait <= 0 {
		return 0
	}
	return int(math.Ceil(wait.Minutes()))
}
