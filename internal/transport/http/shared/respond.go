// Package shared holds the JSON response helpers every handler uses, so
// success and refusal envelopes stay uniform across endpoints.
package shared

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"medgate/internal/gateway"
	dErrors "medgate/pkg/domain-errors"
)

// ErrorBody is the refusal envelope. Reason carries the stable refusal code
// clients branch on; Code is the coarse error class.
type ErrorBody struct {
	Code    string `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	// RetryAfterSeconds and ResetAt accompany throttled refusals.
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
	ResetAt           string `json:"reset_at,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the refusal envelope. Internal
// failures are reported without detail; the log line carries the specifics.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := ErrorBody{
		Code:    string(code),
		Reason:  dErrors.ReasonOf(err),
		Message: messageFor(code, err),
	}

	var throttle *gateway.ThrottleError
	if errors.As(err, &throttle) {
		seconds := int(math.Ceil(throttle.RetryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		body.RetryAfterSeconds = seconds
		body.ResetAt = throttle.ResetAt.UTC().Format(time.RFC3339)
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	WriteJSON(w, statusFor(code), map[string]ErrorBody{"error": body})
}

func messageFor(code dErrors.Code, err error) string {
	if code == dErrors.CodeInternal || code == dErrors.CodeInvariantViolation {
		return "internal error"
	}
	var e *dErrors.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeThrottled:
		return http.StatusTooManyRequests
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
