// Package ratelimit gates outbound friend requests per sender using a
// sliding window: an attempt is admitted iff fewer than Limit admitted
// attempts fall within the trailing Window. Rejected attempts are not recorded.
package ratelimit

import (
	"context"
	"time"
)

// Policy is the configured cap and window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Disabled reports whether the policy admits everything.
func (p Policy) Disabled() bool {
	return p.Limit <= 0 || p.Window <= 0
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether the holder of key may act at now.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) (Decision, error)
}

// Pruner is implemented by limiters that hold per-key state in process.
type Pruner interface {
	Prune(now time.Time) int
}

type noopLimiter struct{}

// NewNoopLimiter returns a limiter that admits every attempt.
func NewNoopLimiter() Limiter { return noopLimiter{} }

func (noopLimiter) Allow(context.Context, string, time.Time) (Decision, error) {
	return Decision{Allowed: true, Remaining: -1}, nil
}
