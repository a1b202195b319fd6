package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "medgate/pkg/domain"
	"medgate/pkg/requestcontext"
)

func TestFingerprintIsStableAcrossParamOrder(t *testing.T) {
	principal := id.PrincipalID(uuid.New())

	a := Fingerprint("POST", "/v1/query", principal, map[string]string{"clinic": "x", "kind": "patient_search"})
	b := Fingerprint("post", " /v1/query", principal, map[string]string{"kind": "patient_search", "clinic": "x"})

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprintDistinguishesPrincipals(t *testing.T) {
	params := map[string]string{"kind": "patient_search"}

	a := Fingerprint("POST", "/v1/query", id.PrincipalID(uuid.New()), params)
	b := Fingerprint("POST", "/v1/query", id.PrincipalID(uuid.New()), params)

	assert.NotEqual(t, a, b)
}

func TestEventCategory(t *testing.T) {
	for _, tc := range []struct {
		name  string
		event Event
		want  EventCategory
	}{
		{
			name:  "refusal is security",
			event: Event{Action: ActionForKind(id.KindAppointmentQuery), Outcome: OutcomeRefused, ReasonCode: id.ReasonScopeViolation},
			want:  CategorySecurity,
		},
		{
			name:  "throttle is security",
			event: Event{Action: ActionForKind(id.KindPatientSearch), Outcome: OutcomeThrottled, ReasonCode: id.ReasonThrottled},
			want:  CategorySecurity,
		},
		{
			name:  "successful data export is compliance",
			event: Event{Action: ActionForKind(id.KindDataExport), Outcome: OutcomeSuccess},
			want:  CategoryCompliance,
		},
		{
			name:  "operation transition is compliance",
			event: Event{Action: ActionOperationConfirmed, Outcome: OutcomeSuccess},
			want:  CategoryCompliance,
		},
		{
			name:  "routine query is operations",
			event: Event{Action: ActionForKind(id.KindAppointmentQuery), Outcome: OutcomeSuccess},
			want:  CategoryOperations,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.event.Category())
		})
	}
}

func TestRecorderFillsIdentityAndClock(t *testing.T) {
	now := time.Date(2026, time.April, 2, 11, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	inbox := make(chan Event, 1)
	recorder := NewRecorder(inbox, slog.New(slog.NewTextHandler(io.Discard, nil)))

	recorder.Record(ctx, Event{Action: ActionForKind(id.KindAppointmentQuery), Outcome: OutcomeSuccess})

	require.Len(t, inbox, 1)
	event := <-inbox
	assert.NotEqual(t, uuid.Nil, event.EventID)
	assert.Equal(t, now, event.Timestamp)
}

func TestRecorderDropsInsteadOfBlocking(t *testing.T) {
	inbox := make(chan Event, 1)
	recorder := NewRecorder(inbox, slog.New(slog.NewTextHandler(io.Discard, nil)))

	recorder.Record(context.Background(), Event{Action: ActionOperationCreated, Outcome: OutcomeSuccess})

	done := make(chan struct{})
	go func() {
		recorder.Record(context.Background(), Event{Action: ActionOperationCreated, Outcome: OutcomeSuccess})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full inbox")
	}
	assert.Len(t, inbox, 1)
}
