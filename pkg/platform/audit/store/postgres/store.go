// Package postgres persists audit events through a transactional outbox.
// Events land in the outbox table and are shipped to Kafka by a relay; the
// topic is the long-term source of truth for the trail.
//
// Expected schema:
//
//	CREATE TABLE audit_outbox (
//	    id           UUID PRIMARY KEY,
//	    event_id     UUID NOT NULL UNIQUE,
//	    category     TEXT NOT NULL,
//	    payload      JSONB NOT NULL,
//	    created_at   TIMESTAMPTZ NOT NULL
//	);
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	audit "medgate/pkg/platform/audit"
	txcontext "medgate/pkg/platform/tx"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// execer joins an ambient transaction when the caller opened one, so an
// outbox entry commits atomically with the business write it describes.
func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON document shipped to the topic. Field names are
// part of the consumer contract.
type outboxPayload struct {
	EventID            string `json:"event_id"`
	Timestamp          string `json:"timestamp"`
	Category           string `json:"category"`
	PrincipalID        string `json:"principal_id,omitempty"`
	ClinicID           string `json:"clinic_id,omitempty"`
	Action             string `json:"action"`
	Outcome            string `json:"outcome"`
	ReasonCode         string `json:"reason_code,omitempty"`
	RequestFingerprint string `json:"request_fingerprint"`
	OperationID        string `json:"operation_id,omitempty"`
	RequestID          string `json:"request_id,omitempty"`
	ClientIP           string `json:"client_ip,omitempty"`
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload := outboxPayload{
		EventID:            event.EventID.String(),
		Timestamp:          event.Timestamp.Format(time.RFC3339Nano),
		Category:           string(event.Category()),
		Action:             string(event.Action),
		Outcome:            string(event.Outcome),
		ReasonCode:         event.ReasonCode.String(),
		RequestFingerprint: event.RequestFingerprint,
		RequestID:          event.RequestID,
		ClientIP:           event.ClientIP,
	}
	if !event.PrincipalID.IsNil() {
		payload.PrincipalID = event.PrincipalID.String()
	}
	if !event.ClinicID.IsNil() {
		payload.ClinicID = event.ClinicID.String()
	}
	if !event.OperationID.IsNil() {
		payload.OperationID = event.OperationID.String()
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO audit_outbox (id, event_id, category, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		event.EventID,
		string(event.Category()),
		payloadBytes,
		time.Now().UTC(),
	)
	if err != nil {
		// Redelivered events are fine: the trail already holds this entry.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil
		}
		return fmt.Errorf("insert audit outbox entry: %w", err)
	}
	return nil
}
