package gateway

import (
	"time"

	"medgate/internal/ratelimit"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
)

// ThrottleError is the refusal returned when a quota window is exhausted. It
// wraps the coded refusal so reason-code checks see it, and carries the
// retry hint the transport surfaces as Retry-After.
type ThrottleError struct {
	Err        *dErrors.Error
	Window     ratelimit.WindowKind
	RetryAfter time.Duration
	ResetAt    time.Time
}

func (e *ThrottleError) Error() string { return e.Err.Error() }

func (e *ThrottleError) Unwrap() error { return e.Err }

func newThrottleError(res ratelimit.Result) *ThrottleError {
	return &ThrottleError{
		Err: dErrors.WithReason(dErrors.CodeThrottled,
			id.ReasonThrottled.String(), "quota exhausted for "+string(res.Window)+" window"),
		Window:     res.Window,
		RetryAfter: res.RetryAfter,
		ResetAt:    res.ResetAt,
	}
}
