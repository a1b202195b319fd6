// Package audit captures the gateway's append-only activity trail. Events are
// emitted for every terminal disposition of a request and for every operation
// state transition, successful or refused. The trail is write-only: nothing in
// the request path ever reads it back, and operation progress is answered from
// operation state, never from here.
package audit

import (
	"time"

	"github.com/google/uuid"

	id "medgate/pkg/domain"
)

// Outcome is the terminal disposition recorded for a request.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeRefused   Outcome = "refused"
	OutcomeThrottled Outcome = "throttled"
)

// Action names what was attempted. Request-level events use the operation
// kind as the action; transition events use the operation_* constants.
type Action string

const (
	ActionOperationCreated   Action = "operation_created"
	ActionOperationConfirmed Action = "operation_confirmed"
	ActionOperationExecuting Action = "operation_executing"
	ActionOperationCompleted Action = "operation_completed"
	ActionOperationFailed    Action = "operation_failed"
)

// ActionForKind is the request-level action for an operation kind.
func ActionForKind(kind id.OperationKind) Action {
	return Action(kind)
}

// EventCategory classifies events for routing and retention. Compliance
// events need long retention, security events feed monitoring, operations
// events are routine activity that may be sampled downstream.
type EventCategory string

const (
	CategoryCompliance EventCategory = "compliance"
	CategorySecurity   EventCategory = "security"
	CategoryOperations EventCategory = "operations"
)

// Event is one appended trail entry. Fields are set by the emitting gate;
// EventID and Timestamp are filled in by the Recorder when zero.
type Event struct {
	EventID            uuid.UUID
	Timestamp          time.Time
	PrincipalID        id.PrincipalID
	ClinicID           id.ClinicID
	Action             Action
	Outcome            Outcome
	ReasonCode         id.ReasonCode
	RequestFingerprint string
	OperationID        id.OperationID
	RequestID          string
	ClientIP           string
}

// complianceKinds are operation kinds whose activity has regulatory weight
// regardless of outcome.
var complianceKinds = map[Action]struct{}{
	ActionForKind(id.KindPatientSearch):    {},
	ActionForKind(id.KindFinancialSummary): {},
	ActionForKind(id.KindDataExport):       {},
}

// Category derives the routing category from the event's contents. Refusals
// and throttles are security-relevant; consent-covered kinds and operation
// transitions are compliance; everything else is routine operations traffic.
func (e Event) Category() EventCategory {
	if e.Outcome == OutcomeRefused || e.Outcome == OutcomeThrottled {
		return CategorySecurity
	}
	if _, ok := complianceKinds[e.Action]; ok {
		return CategoryCompliance
	}
	switch e.Action {
	case ActionOperationCreated, ActionOperationConfirmed, ActionOperationExecuting,
		ActionOperationCompleted, ActionOperationFailed:
		return CategoryCompliance
	}
	return CategoryOperations
}
