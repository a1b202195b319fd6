package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	id "medgate/pkg/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps window counters in Redis so multiple gateway instances
// share one budget per principal. A single Lua script performs the lazy
// resets, the two limit checks, and the two increments atomically; Redis's
// per-key serialization provides the required per-principal mutual exclusion.
type RedisStore struct {
	client redis.Scripter
}

func NewRedisStore(client redis.Scripter) *RedisStore {
	return &RedisStore{client: client}
}

// acquireScript holds both counters in one hash per principal:
// ss/sc = short window start (ms) / count, ls/lc = long window start / count.
// Resets are persisted even when the outcome is a throttle.
var acquireScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local sdur = tonumber(ARGV[2])
local slimit = tonumber(ARGV[3])
local ldur = tonumber(ARGV[4])
local llimit = tonumber(ARGV[5])

local h = redis.call('HMGET', KEYS[1], 'ss', 'sc', 'ls', 'lc')
local ss = tonumber(h[1]) or now
local sc = tonumber(h[2]) or 0
local ls = tonumber(h[3]) or now
local lc = tonumber(h[4]) or 0

if now - ss >= sdur then
  ss = now
  sc = 0
end
if now - ls >= ldur then
  ls = now
  lc = 0
end

local allowed = 1
local window = ''
local reset = 0
if sc >= slimit then
  allowed = 0
  window = 'short'
  reset = ss + sdur
elseif lc >= llimit then
  allowed = 0
  window = 'long'
  reset = ls + ldur
else
  sc = sc + 1
  lc = lc + 1
end

redis.call('HSET', KEYS[1], 'ss', ss, 'sc', sc, 'ls', ls, 'lc', lc)
redis.call('PEXPIRE', KEYS[1], ldur)

local sleft = slimit - sc
local lleft = llimit - lc
local remaining = sleft
local allowedReset = ss + sdur
if lleft < sleft then
  remaining = lleft
  allowedReset = ls + ldur
end
if allowed == 1 then
  reset = allowedReset
else
  remaining = 0
end

return {allowed, window, remaining, reset}
`)

func (s *RedisStore) Acquire(ctx context.Context, principalID id.PrincipalID, now time.Time, windows Windows) (Result, error) {
	key := counterKey(principalID)
	raw, err := acquireScript.Run(ctx, s.client, []string{key},
		now.UnixMilli(),
		windows.Short.Duration.Milliseconds(),
		windows.Short.Limit,
		windows.Long.Duration.Milliseconds(),
		windows.Long.Limit,
	).Slice()
	if err != nil {
		return Result{}, fmt.Errorf("run rate limit script: %w", err)
	}
	if len(raw) != 4 {
		return Result{}, fmt.Errorf("rate limit script returned %d values, want 4", len(raw))
	}

	allowed, _ := raw[0].(int64)
	window, _ := raw[1].(string)
	remaining, _ := raw[2].(int64)
	resetMillis, _ := raw[3].(int64)
	resetAt := time.UnixMilli(resetMillis)

	res := Result{
		Allowed:   allowed == 1,
		Window:    WindowKind(window),
		Remaining: int(remaining),
		ResetAt:   resetAt,
	}
	if !res.Allowed {
		res.RetryAfter = resetAt.Sub(now)
	}
	return res, nil
}

// counterKey escapes delimiter characters so a crafted identifier cannot
// collide with an adjacent principal's counters.
func counterKey(principalID id.PrincipalID) string {
	return "medgate:rl:" + strings.ReplaceAll(principalID.String(), ":", "_")
}
