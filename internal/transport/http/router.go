package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medgate/pkg/platform/middleware/metadata"
	"medgate/pkg/platform/middleware/requestid"
	"medgate/pkg/platform/middleware/requesttime"
)

// NewRouter wires the public endpoints. Request id, request time, and client
// metadata run before every handler so the pipeline sees a fully populated
// context.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", h.handleQuery)
		r.Post("/operations", h.handleCreateOperation)
		r.Post("/operations/{operationID}/confirm", h.handleConfirmOperation)
		r.Post("/operations/{operationID}/execute", h.handleExecuteOperation)
	})

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
