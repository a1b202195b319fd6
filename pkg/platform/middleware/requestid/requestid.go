// Package requestid assigns a correlation id to every request. Incoming
// X-Request-ID headers are honored so upstream proxies can stitch traces.
package requestid

import (
	"net/http"

	"medgate/pkg/requestcontext"

	"github.com/google/uuid"
)

// Header is the canonical request id header.
const Header = "X-Request-ID"

// Middleware ensures each request carries a correlation id in both the
// context and the response headers.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(Header)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		w.Header().Set(Header, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
