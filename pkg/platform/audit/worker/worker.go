// Package worker drains the audit inbox into a store.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "medgate/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. Append
// failures never stop the worker: the failure is logged, counted, and
// recorded as a best-effort secondary event so the gap itself is visible in
// the trail.
type Worker struct {
	store   audit.Store
	inbox   <-chan audit.Event
	logger  *slog.Logger
	metrics *audit.Metrics
}

type Option func(*Worker)

func WithMetrics(m *audit.Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

func New(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{store: store, inbox: inbox, logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the inbox until the context is cancelled. On cancellation it
// flushes whatever is already buffered before returning.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

func (w *Worker) flush(ctx context.Context) {
	for {
		select {
		case event := <-w.inbox:
			w.append(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event audit.Event) {
	err := w.store.Append(ctx, event)
	if err == nil {
		return
	}
	if w.metrics != nil {
		w.metrics.AppendFailuresTotal.Inc()
	}
	w.logger.ErrorContext(ctx, "audit append failed",
		"event_id", event.EventID.String(),
		"action", string(event.Action),
		"error", err,
	)

	// Secondary marker so the gap is visible downstream. Single attempt,
	// errors ignored: a failed marker must not cascade.
	marker := audit.Event{
		EventID:            uuid.New(),
		Timestamp:          time.Now().UTC(),
		Action:             "audit_append_failed",
		Outcome:            audit.OutcomeRefused,
		RequestFingerprint: event.RequestFingerprint,
		RequestID:          event.RequestID,
	}
	_ = w.store.Append(ctx, marker)
}
