// Package gateway composes the admission gates into the request pipeline:
// identity, authorization, consent, rate limiting, then the business handler.
// Every traversal ends in exactly one audited disposition, refusals included.
package gateway

import (
	"context"

	"medgate/internal/domain"
	"medgate/internal/operation"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
)

// Request carries everything the pipeline needs for one traversal. Fields are
// populated by the transport layer; nothing here is trusted until the gates
// have run.
type Request struct {
	// Credential is the raw bearer credential, empty when absent.
	Credential string
	// ClaimedRole is the caller's role assertion from request context, if
	// any. It must agree with the validated credential.
	ClaimedRole string
	// TargetClinicID is the tenant whose data the request touches.
	TargetClinicID id.ClinicID
	// Kind is the requested operation kind.
	Kind id.OperationKind
	// ConsentSignal reports whether the request carried an explicit consent
	// marker.
	ConsentSignal bool

	// Method, Resource and Params feed the request fingerprint.
	Method   string
	Resource string
	Params   map[string]string

	// PayloadRef points at the staged payload of a multi-step write.
	PayloadRef string
	// OperationID and ConfirmationToken drive confirm/execute calls.
	OperationID       id.OperationID
	ConfirmationToken string
}

// Response is the pipeline's answer for an allowed request.
type Response struct {
	Kind id.OperationKind
	// Data is whatever the business handler produced.
	Data any
	// Operation is set for multi-step calls and carries the current state.
	Operation *operation.State
}

// Handler executes the business action once every gate has passed. Multi-step
// writes additionally receive the current operation state.
type Handler interface {
	Handle(ctx context.Context, principal domain.Principal, req Request, state *operation.State) (any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, principal domain.Principal, req Request, state *operation.State) (any, error)

func (f HandlerFunc) Handle(ctx context.Context, principal domain.Principal, req Request, state *operation.State) (any, error) {
	return f(ctx, principal, req, state)
}

// Registry maps operation kinds to their business handlers.
type Registry struct {
	handlers map[id.OperationKind]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[id.OperationKind]Handler)}
}

func (r *Registry) Register(kind id.OperationKind, handler Handler) {
	r.handlers[kind] = handler
}

func (r *Registry) handler(kind id.OperationKind) (Handler, error) {
	h, ok := r.handlers[kind]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeInternal, "no handler registered for kind %s", kind)
	}
	return h, nil
}
