package operation

import (
	"context"
	"errors"

	id "medgate/pkg/domain"
)

// ErrNotFound is returned by stores when no state exists for an operation id.
var ErrNotFound = errors.New("operation state not found")

// Store persists operation state. Update performs an atomic per-key
// read-modify-write: implementations must serialize updates to one operation
// id without blocking updates to others, and must discard the mutation when
// apply returns an error.
type Store interface {
	Insert(ctx context.Context, state State) error
	Get(ctx context.Context, operationID id.OperationID) (State, error)
	Update(ctx context.Context, operationID id.OperationID, apply func(State) (State, error)) (State, error)
}
