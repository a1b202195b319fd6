// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; services read them without importing net/http.
// Tests inject values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithRequestID(ctx, "req-1")
package requestcontext

import (
	"context"
	"time"

	id "medgate/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	principalIDKey struct{}
	clinicIDKey    struct{}
	requestIDKey   struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestTimeKey struct{}
)

// PrincipalID retrieves the authenticated principal id from the context.
// Returns the zero value if not set.
func PrincipalID(ctx context.Context) id.PrincipalID {
	if pid, ok := ctx.Value(principalIDKey{}).(id.PrincipalID); ok {
		return pid
	}
	return id.PrincipalID{}
}

// WithPrincipalID injects a principal id into the context.
func WithPrincipalID(ctx context.Context, pid id.PrincipalID) context.Context {
	return context.WithValue(ctx, principalIDKey{}, pid)
}

// ClinicID retrieves the caller's clinic scope from the context.
func ClinicID(ctx context.Context) id.ClinicID {
	if cid, ok := ctx.Value(clinicIDKey{}).(id.ClinicID); ok {
		return cid
	}
	return id.ClinicID{}
}

// WithClinicID injects a clinic id into the context.
func WithClinicID(ctx context.Context, cid id.ClinicID) context.Context {
	return context.WithValue(ctx, clinicIDKey{}, cid)
}

// RequestID retrieves the request correlation id from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request id into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the client's User-Agent family from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	ctx = context.WithValue(ctx, userAgentKey{}, userAgent)
	return ctx
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Lets tests pin the clock
// and workers keep one consistent time across a batch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
