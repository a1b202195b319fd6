// Package operation tracks multi-step write workflows through an explicit
// intent → confirm → execute state machine. Operation state is the only
// queryable source of truth for workflow progress; the audit trail records
// transitions but is never read back to answer "where is this operation".
//
// Every transition keys exclusively on the generated, globally unique
// operation id. Business-visible fields are never used as lookup keys.
package operation

import (
	"time"

	id "medgate/pkg/domain"
)

// Step is the workflow phase an operation has reached.
type Step string

const (
	StepIntent  Step = "intent"
	StepConfirm Step = "confirm"
	StepExecute Step = "execute"
)

// Status is the operation's progress within its step.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusExecuting Status = "executing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// State is the authoritative record of one multi-step write.
type State struct {
	OperationID id.OperationID
	Kind        id.OperationKind
	Step        Step
	Status      Status
	// PayloadRef points at the proposed change held by the business layer.
	PayloadRef string
	// ConfirmationToken must be echoed back verbatim to confirm the intent.
	ConfirmationToken string
	PrincipalID       id.PrincipalID
	ClinicID          id.ClinicID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
