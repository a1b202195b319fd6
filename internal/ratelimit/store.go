package ratelimit

import (
	"context"
	"time"

	id "medgate/pkg/domain"
)

// Store performs one atomic check-and-increment against both of a principal's
// windows. Implementations must serialize acquisitions per principal without
// contending across principals, and must apply lazy window resets before
// checking limits. On a throttled outcome neither counter is incremented.
type Store interface {
	Acquire(ctx context.Context, principalID id.PrincipalID, now time.Time, windows Windows) (Result, error)
}

// evaluate applies the fixed-window algorithm to a pair of counters already
// under the caller's per-principal mutual exclusion. It mutates the counters
// in place: resets are persisted even on a throttled outcome, increments only
// on success.
func evaluate(short, long *Counter, now time.Time, windows Windows) Result {
	if short.expired(now, windows.Short.Duration) {
		short.WindowStart = now
		short.Count = 0
	}
	if long.expired(now, windows.Long.Duration) {
		long.WindowStart = now
		long.Count = 0
	}

	if short.Count >= windows.Short.Limit {
		resetAt := short.WindowStart.Add(windows.Short.Duration)
		return Result{Window: WindowShort, RetryAfter: resetAt.Sub(now), ResetAt: resetAt}
	}
	if long.Count >= windows.Long.Limit {
		resetAt := long.WindowStart.Add(windows.Long.Duration)
		return Result{Window: WindowLong, RetryAfter: resetAt.Sub(now), ResetAt: resetAt}
	}

	short.Count++
	long.Count++

	// Report the tighter of the two residual budgets.
	shortLeft := windows.Short.Limit - short.Count
	longLeft := windows.Long.Limit - long.Count
	res := Result{Allowed: true, Remaining: shortLeft, ResetAt: short.WindowStart.Add(windows.Short.Duration)}
	if longLeft < shortLeft {
		res.Remaining = longLeft
		res.ResetAt = long.WindowStart.Add(windows.Long.Duration)
	}
	return res
}
