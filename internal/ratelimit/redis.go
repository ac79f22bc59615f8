package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript trims the key's sorted set to the window, admits the
// attempt when below the limit, and returns {allowed, count, oldest_ms}.
// Running as one script keeps check and increment atomic across callers.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count < limit then
  redis.call('ZADD', key, now, member)
  redis.call('PEXPIRE', key, window)
  return {1, count + 1, 0}
end
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {0, count, tonumber(oldest[2])}
`)

type redisLimiter struct {
	client redis.Scripter
	policy Policy
	prefix string
}

// NewRedisLimiter shares limiter state across service instances through Redis.
func NewRedisLimiter(client redis.Scripter, policy Policy, prefix string) Limiter {
	if policy.Disabled() {
		return NewNoopLimiter()
	}
	return &redisLimiter{client: client, policy: policy, prefix: prefix}
}

func (l *redisLimiter) Allow(ctx context.Context, key string, now time.Time) (Decision, error) {
	nowMs := now.UnixMilli()
	windowMs := l.policy.Window.Milliseconds()
	member := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())

	res, err := slidingWindowScript.Run(ctx, l.client,
		[]string{l.prefix + key},
		nowMs, windowMs, l.policy.Limit, member,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	if res[0] == 1 {
		return Decision{Allowed: true, Remaining: l.policy.Limit - int(res[1])}, nil
	}
	retry := time.Duration(res[2]+windowMs-nowMs) * time.Millisecond
	if retry < 0 {
		retry = 0
	}
	return Decision{Allowed: false, Remaining: 0, RetryAfter: retry}, nil
}
