package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "medgate/pkg/domain"
	audit "medgate/pkg/platform/audit"
	"medgate/pkg/platform/audit/store/memory"
)

func TestWorkerDrainsInboxIntoStore(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 4)
	w := New(store, inbox, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		inbox <- audit.Event{
			EventID: uuid.New(),
			Action:  audit.ActionForKind(id.KindAppointmentQuery),
			Outcome: audit.OutcomeSuccess,
		}
	}

	require.Eventually(t, func() bool {
		return len(store.Events()) == 3
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestWorkerFlushesBufferedEventsOnShutdown(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 4)
	inbox <- audit.Event{EventID: uuid.New(), Action: audit.ActionOperationCreated, Outcome: audit.OutcomeSuccess}
	inbox <- audit.Event{EventID: uuid.New(), Action: audit.ActionOperationConfirmed, Outcome: audit.OutcomeSuccess}

	w := New(store, inbox, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, store.Events(), 2)
}

type failOnceStore struct {
	inner    *memory.InMemoryStore
	failures int
}

func (s *failOnceStore) Append(ctx context.Context, event audit.Event) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("sink unavailable")
	}
	return s.inner.Append(ctx, event)
}

func TestWorkerAbsorbsAppendFailures(t *testing.T) {
	store := &failOnceStore{inner: memory.NewInMemoryStore(), failures: 1}
	inbox := make(chan audit.Event, 4)
	inbox <- audit.Event{EventID: uuid.New(), Action: audit.ActionForKind(id.KindDataExport), Outcome: audit.OutcomeSuccess, RequestID: "req-1"}
	inbox <- audit.Event{EventID: uuid.New(), Action: audit.ActionForKind(id.KindDataExport), Outcome: audit.OutcomeSuccess, RequestID: "req-2"}

	w := New(store, inbox, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	events := store.inner.Events()
	require.Len(t, events, 2)
	// First append failed and its secondary marker landed, then the second
	// event went through normally.
	assert.Equal(t, audit.Action("audit_append_failed"), events[0].Action)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, "req-2", events[1].RequestID)
}
