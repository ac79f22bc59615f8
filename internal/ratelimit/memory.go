package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryLimiter struct {
	policy Policy

	mu   sync.Mutex
	logs map[string][]time.Time
}

// NewMemoryLimiter keeps a per-key log of admitted timestamps in process.
func NewMemoryLimiter(policy Policy) Limiter {
	if policy.Disabled() {
		return NewNoopLimiter()
	}
	return &memoryLimiter{policy: policy, logs: make(map[string][]time.Time)}
}

func (l *memoryLimiter) Allow(_ context.Context, key string, now time.Time) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.policy.Window)
	history := l.logs[key]
	drop := 0
	for drop < len(history) && !history[drop].After(cutoff) {
		drop++
	}
	history = history[drop:]

	if len(history) >= l.policy.Limit {
		l.logs[key] = history
		return Decision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: history[0].Add(l.policy.Window).Sub(now),
		}, nil
	}

	history = append(history, now)
	l.logs[key] = history
	return Decision{Allowed: true, Remaining: l.policy.Limit - len(history)}, nil
}

// Prune drops keys whose whole log has aged out of the window and reports how
// many were removed.
func (l *memoryLimiter) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.policy.Window)
	removed := 0
	for key, history := range l.logs {
		if len(history) == 0 || !history[len(history)-1].After(cutoff) {
			delete(l.logs, key)
			removed++
		}
	}
	return removed
}
