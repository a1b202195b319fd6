// Package domain holds value types shared across the gateway: typed
// identifiers, roles, operation kinds, and refusal reasons. Constructors
// validate at trust boundaries; direct casting bypasses validation.
package domain

import (
	dErrors "medgate/pkg/domain-errors"

	"github.com/google/uuid"
)

// Typed UUID identifiers. Wrapping uuid.UUID keeps distinct identifier spaces
// from being mixed up at call sites.
type (
	PrincipalID uuid.UUID
	ClinicID    uuid.UUID
	SessionID   uuid.UUID
	OperationID uuid.UUID
)

// NewOperationID generates a fresh, globally unique operation identifier.
// Operation ids are never reused and never derived from business fields.
func NewOperationID() OperationID {
	return OperationID(uuid.New())
}

func (id PrincipalID) String() string { return uuid.UUID(id).String() }
func (id ClinicID) String() string    { return uuid.UUID(id).String() }
func (id SessionID) String() string   { return uuid.UUID(id).String() }
func (id OperationID) String() string { return uuid.UUID(id).String() }

func (id PrincipalID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ClinicID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id OperationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParsePrincipalID constructs a PrincipalID from external input.
func ParsePrincipalID(s string) (PrincipalID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return PrincipalID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid principal id")
	}
	return PrincipalID(u), nil
}

// ParseClinicID constructs a ClinicID from external input.
func ParseClinicID(s string) (ClinicID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ClinicID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid clinic id")
	}
	return ClinicID(u), nil
}

// ParseOperationID constructs an OperationID from external input.
func ParseOperationID(s string) (OperationID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return OperationID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid operation id")
	}
	return OperationID(u), nil
}

// ParseSessionID constructs a SessionID from external input.
func ParseSessionID(s string) (SessionID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return SessionID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid session id")
	}
	return SessionID(u), nil
}
