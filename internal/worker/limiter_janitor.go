package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/friendship-service/internal/ratelimit"
)

// StartLimiterJanitor periodically drops idle per-sender logs held by an
// in-process limiter. It returns immediately when the limiter keeps no local
// state, and stops when ctx is cancelled.
func StartLimiterJanitor(ctx context.Context, limiter ratelimit.Limiter, interval time.Duration, logger *zap.Logger) {
	pruner, ok := limiter.(ratelimit.Pruner)
	if !ok || interval <= 0 {
		return
	}
	go runJanitor(ctx, pruner, interval, time.Now, logger)
}

func runJanitor(ctx context.Context, pruner ratelimit.Pruner, interval time.Duration, now func() time.Time, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := pruner.Prune(now()); removed > 0 {
				logger.Debug("pruned idle rate limit keys", zap.Int("removed", removed))
			}
		}
	}
}
