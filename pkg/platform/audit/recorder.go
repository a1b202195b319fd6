package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"medgate/pkg/requestcontext"
)

// Recorder is the emission side of the trail. Record never blocks and never
// returns an error: a request's outcome must not depend on whether its audit
// event could be enqueued. Events are handed to a Worker over the inbox
// channel; a full inbox drops the event, counted and logged.
type Recorder struct {
	inbox   chan<- Event
	logger  *slog.Logger
	metrics *Metrics
}

type RecorderOption func(*Recorder)

func WithRecorderMetrics(m *Metrics) RecorderOption {
	return func(r *Recorder) { r.metrics = m }
}

func NewRecorder(inbox chan<- Event, logger *slog.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{inbox: inbox, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record enqueues the event, filling EventID and Timestamp when unset. The
// timestamp comes from the request-scoped clock so a request's events share
// one instant.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}

	select {
	case r.inbox <- event:
		if r.metrics != nil {
			r.metrics.RecordedTotal.WithLabelValues(string(event.Outcome)).Inc()
		}
	default:
		if r.metrics != nil {
			r.metrics.DroppedTotal.Inc()
		}
		r.logger.ErrorContext(ctx, "audit inbox full, event dropped",
			"event_id", event.EventID.String(),
			"action", string(event.Action),
			"outcome", string(event.Outcome),
		)
	}
}
