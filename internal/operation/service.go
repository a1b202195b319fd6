package operation

import (
	"context"
	"errors"
	"log/slog"

	"medgate/internal/domain"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/requestcontext"

	"github.com/google/uuid"
)

// Service drives operation state transitions. Each transition is atomic at
// the store level; the service never retries a refused transition. Retrying
// a terminal operation is a caller decision made by creating a new intent.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create registers a new intent for the principal and returns its state,
// including the fresh operation id and the confirmation token the caller must
// echo back.
func (s *Service) Create(ctx context.Context, principal domain.Principal, kind id.OperationKind, payloadRef string) (State, error) {
	now := requestcontext.Now(ctx)
	state := State{
		OperationID:       id.NewOperationID(),
		Kind:              kind,
		Step:              StepIntent,
		Status:            StatusPending,
		PayloadRef:        payloadRef,
		ConfirmationToken: uuid.NewString(),
		PrincipalID:       principal.ID,
		ClinicID:          principal.ClinicID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Insert(ctx, state); err != nil {
		return State{}, dErrors.Wrap(err, dErrors.CodeInternal, "persist operation intent")
	}
	return state, nil
}

// Get returns the current state for an operation id.
func (s *Service) Get(ctx context.Context, operationID id.OperationID) (State, error) {
	state, err := s.store.Get(ctx, operationID)
	if errors.Is(err, ErrNotFound) {
		return State{}, notFound()
	}
	if err != nil {
		return State{}, dErrors.Wrap(err, dErrors.CodeInternal, "load operation state")
	}
	return state, nil
}

// Confirm moves a pending intent to confirmed. The lookup keys on the
// operation id alone; the confirming principal must be the creator and must
// echo the confirmation token issued at intent time.
func (s *Service) Confirm(ctx context.Context, operationID id.OperationID, principal domain.Principal, confirmationToken string) (State, error) {
	now := requestcontext.Now(ctx)
	state, err := s.store.Update(ctx, operationID, func(current State) (State, error) {
		if current.PrincipalID != principal.ID {
			return State{}, dErrors.WithReason(dErrors.CodeForbidden,
				id.ReasonPrincipalMismatch.String(), "operation belongs to a different principal")
		}
		if current.Status.Terminal() {
			return State{}, alreadyTerminal(current.Status)
		}
		if current.Status != StatusPending || confirmationToken == "" || confirmationToken != current.ConfirmationToken {
			return State{}, invalidTransition("confirm requires a pending intent and its confirmation token")
		}
		current.Step = StepConfirm
		current.Status = StatusConfirmed
		current.UpdatedAt = now
		return current, nil
	})
	return s.mapUpdateResult(state, err)
}

// BeginExecute moves a confirmed operation into execution. Double-execute
// attempts are rejected, never silently re-run.
func (s *Service) BeginExecute(ctx context.Context, operationID id.OperationID) (State, error) {
	now := requestcontext.Now(ctx)
	state, err := s.store.Update(ctx, operationID, func(current State) (State, error) {
		if current.Status != StatusConfirmed {
			return State{}, invalidTransition("execute requires a confirmed operation")
		}
		current.Step = StepExecute
		current.Status = StatusExecuting
		current.UpdatedAt = now
		return current, nil
	})
	return s.mapUpdateResult(state, err)
}

// Complete finishes an executing operation as completed or failed. The
// transition is idempotent: completing an already-terminal operation is a
// logged no-write, not an error.
func (s *Service) Complete(ctx context.Context, operationID id.OperationID, success bool) (State, error) {
	now := requestcontext.Now(ctx)
	terminalNoop := false
	state, err := s.store.Update(ctx, operationID, func(current State) (State, error) {
		if current.Status.Terminal() {
			terminalNoop = true
			return current, nil
		}
		if current.Status != StatusExecuting {
			return State{}, invalidTransition("complete requires an executing operation")
		}
		if success {
			current.Status = StatusCompleted
		} else {
			current.Status = StatusFailed
		}
		current.UpdatedAt = now
		return current, nil
	})
	if err == nil && terminalNoop {
		s.logger.InfoContext(ctx, "operation already terminal, complete is a no-op",
			"operation_id", operationID.String(),
			"status", string(state.Status),
		)
	}
	return s.mapUpdateResult(state, err)
}

func (s *Service) mapUpdateResult(state State, err error) (State, error) {
	if errors.Is(err, ErrNotFound) {
		return State{}, notFound()
	}
	if err != nil {
		if dErrors.ReasonOf(err) != "" {
			return State{}, err
		}
		return State{}, dErrors.Wrap(err, dErrors.CodeInternal, "operation state transition failed")
	}
	return state, nil
}

func notFound() error {
	return dErrors.WithReason(dErrors.CodeNotFound,
		id.ReasonOperationNotFound.String(), "no operation with this id")
}

func alreadyTerminal(status Status) error {
	return dErrors.WithReason(dErrors.CodeConflict,
		id.ReasonAlreadyTerminal.String(), "operation is already "+string(status))
}

func invalidTransition(msg string) error {
	return dErrors.WithReason(dErrors.CodeConflict,
		id.ReasonInvalidTransition.String(), msg)
}
