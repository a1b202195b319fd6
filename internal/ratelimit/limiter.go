package ratelimit

import (
	"context"
	"log/slog"

	"medgate/internal/ratelimit/metrics"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/requestcontext"
)

// Limiter enforces both quota windows for a principal. It owns no counters
// itself; the store provides atomic per-principal acquisition.
type Limiter struct {
	store   Store
	windows Windows
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// NewLimiter creates a Limiter over the given store and windows.
func NewLimiter(store Store, windows Windows, logger *slog.Logger, opts ...Option) *Limiter {
	l := &Limiter{store: store, windows: windows, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TryAcquire consumes one request from both of the principal's windows, or
// refuses when either window is exhausted. The returned Result names the
// tripped window and carries the retry-after hint on a throttle.
func (l *Limiter) TryAcquire(ctx context.Context, principalID id.PrincipalID) (Result, error) {
	now := requestcontext.Now(ctx)

	res, err := l.store.Acquire(ctx, principalID, now, l.windows)
	if err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "rate limit acquisition failed")
	}

	if !res.Allowed {
		if l.metrics != nil {
			l.metrics.RecordThrottled(string(res.Window))
		}
		l.logger.InfoContext(ctx, "request throttled",
			"principal_id", principalID.String(),
			"window", string(res.Window),
			"retry_after", res.RetryAfter.String(),
		)
		return res, nil
	}

	if l.metrics != nil {
		l.metrics.RecordAllowed()
	}
	return res, nil
}
