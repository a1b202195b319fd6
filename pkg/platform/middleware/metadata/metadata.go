// Package metadata extracts client IP and User-Agent early in the chain so
// downstream services and audit records can reference them from the context.
package metadata

import (
	"net/http"
	"strings"

	"medgate/pkg/requestcontext"

	ua "github.com/mssola/useragent"
)

// ClientMetadata extracts the client IP address and a normalized User-Agent
// from the request and adds them to the context.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIPFromRequest(r)
		agent := NormalizeUserAgent(r.Header.Get("User-Agent"))
		ctx := requestcontext.WithClientMetadata(r.Context(), ip, agent)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// NormalizeUserAgent reduces a raw User-Agent string to "browser/version on
// os" form. Raw UA strings are high-cardinality and can embed junk; the
// normalized form is what audit records carry.
func NormalizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	parsed := ua.New(raw)
	name, version := parsed.Browser()
	if name == "" {
		return "unknown"
	}
	out := name
	if version != "" {
		out += "/" + version
	}
	if os := parsed.OS(); os != "" {
		out += " on " + os
	}
	return out
}

// ClientIPFromRequest extracts the real client IP, handling proxies and load
// balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs; the first is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	// RemoteAddr is "ip:port" (or "[::1]:port" for IPv6).
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return ""
}
