package operation

import (
	"context"
	"errors"
	"fmt"
	"time"

	id "medgate/pkg/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists operation state for multi-instance deployments.
// Update takes a row lock (SELECT ... FOR UPDATE) on the single row matched
// by operation_id, giving the per-key mutual exclusion the state machine
// requires; rows for other operations stay untouched.
//
// Expected schema:
//
//	CREATE TABLE operation_states (
//	    operation_id       uuid PRIMARY KEY,
//	    kind               text        NOT NULL,
//	    step               text        NOT NULL,
//	    status             text        NOT NULL,
//	    payload_ref        text        NOT NULL,
//	    confirmation_token text        NOT NULL,
//	    principal_id       uuid        NOT NULL,
//	    clinic_id          uuid        NOT NULL,
//	    created_at         timestamptz NOT NULL,
//	    updated_at         timestamptz NOT NULL
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Insert(ctx context.Context, state State) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO operation_states (
			operation_id, kind, step, status, payload_ref,
			confirmation_token, principal_id, clinic_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		uuid.UUID(state.OperationID), state.Kind.String(), string(state.Step), string(state.Status),
		state.PayloadRef, state.ConfirmationToken,
		uuid.UUID(state.PrincipalID), uuid.UUID(state.ClinicID),
		state.CreatedAt, state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert operation state: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, operationID id.OperationID) (State, error) {
	row := s.pool.QueryRow(ctx, selectQuery+` WHERE operation_id = $1`, uuid.UUID(operationID))
	return scanState(row)
}

func (s *PostgresStore) Update(ctx context.Context, operationID id.OperationID, apply func(State) (State, error)) (State, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return State{}, fmt.Errorf("begin operation update: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, selectQuery+` WHERE operation_id = $1 FOR UPDATE`, uuid.UUID(operationID))
	current, err := scanState(row)
	if err != nil {
		return State{}, err
	}

	next, err := apply(current)
	if err != nil {
		// The transition was refused; release the row without writing.
		return current, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE operation_states
		SET step = $2, status = $3, updated_at = $4
		WHERE operation_id = $1
	`, uuid.UUID(operationID), string(next.Step), string(next.Status), next.UpdatedAt)
	if err != nil {
		return State{}, fmt.Errorf("update operation state: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return State{}, fmt.Errorf("commit operation update: %w", err)
	}
	return next, nil
}

const selectQuery = `
	SELECT operation_id, kind, step, status, payload_ref,
	       confirmation_token, principal_id, clinic_id, created_at, updated_at
	FROM operation_states`

func scanState(row pgx.Row) (State, error) {
	var (
		opID, principalID, clinicID uuid.UUID
		kind, step, status          string
		payloadRef, token           string
		createdAt, updatedAt        time.Time
	)
	err := row.Scan(&opID, &kind, &step, &status, &payloadRef, &token, &principalID, &clinicID, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return State{}, ErrNotFound
	}
	if err != nil {
		return State{}, fmt.Errorf("scan operation state: %w", err)
	}
	return State{
		OperationID:       id.OperationID(opID),
		Kind:              id.OperationKind(kind),
		Step:              Step(step),
		Status:            Status(status),
		PayloadRef:        payloadRef,
		ConfirmationToken: token,
		PrincipalID:       id.PrincipalID(principalID),
		ClinicID:          id.ClinicID(clinicID),
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}, nil
}
