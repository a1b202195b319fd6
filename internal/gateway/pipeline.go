package gateway

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"medgate/internal/authz"
	"medgate/internal/consent"
	"medgate/internal/domain"
	"medgate/internal/identity"
	"medgate/internal/operation"
	"medgate/internal/ratelimit"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/platform/audit"
	"medgate/pkg/requestcontext"
)

// Pipeline runs the admission gates in a fixed order: identity, authorization,
// consent, rate limit. The first refusing gate short-circuits straight to the
// audit trail; the business handler only ever sees fully admitted requests.
type Pipeline struct {
	resolver   *identity.Resolver
	consent    *consent.Gate
	limiter    *ratelimit.Limiter
	operations *operation.Service
	handlers   *Registry
	recorder   *audit.Recorder
	logger     *slog.Logger
	metrics    *Metrics
	tracer     trace.Tracer
}

type Option func(*Pipeline)

func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func NewPipeline(
	resolver *identity.Resolver,
	consentGate *consent.Gate,
	limiter *ratelimit.Limiter,
	operations *operation.Service,
	handlers *Registry,
	recorder *audit.Recorder,
	logger *slog.Logger,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		resolver:   resolver,
		consent:    consentGate,
		limiter:    limiter,
		operations: operations,
		handlers:   handlers,
		recorder:   recorder,
		logger:     logger,
		tracer:     otel.Tracer("medgate/internal/gateway"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Query runs a single-shot read through the full pipeline.
func (p *Pipeline) Query(ctx context.Context, req Request) (Response, error) {
	ctx, span := p.startSpan(ctx, "gateway.query", req)
	defer span.End()

	if req.Kind.MultiStep() {
		err := dErrors.Newf(dErrors.CodeInvalidInput, "kind %s requires the operation workflow", req.Kind)
		return Response{}, p.finish(ctx, span, req, domain.Principal{}, nil, audit.ActionForKind(req.Kind), err)
	}

	principal, err := p.admit(ctx, req)
	if err != nil {
		return Response{}, p.finish(ctx, span, req, principal, nil, audit.ActionForKind(req.Kind), err)
	}

	handler, err := p.handlers.handler(req.Kind)
	if err != nil {
		return Response{}, p.finish(ctx, span, req, principal, nil, audit.ActionForKind(req.Kind), err)
	}

	data, err := handler.Handle(ctx, principal, req, nil)
	if err != nil {
		err = dErrors.Wrap(err, dErrors.CodeInternal, "business handler failed")
		return Response{}, p.finish(ctx, span, req, principal, nil, audit.ActionForKind(req.Kind), err)
	}

	_ = p.finish(ctx, span, req, principal, nil, audit.ActionForKind(req.Kind), nil)
	return Response{Kind: req.Kind, Data: data}, nil
}

// CreateOperation admits the request and registers a new multi-step intent.
func (p *Pipeline) CreateOperation(ctx context.Context, req Request) (Response, error) {
	ctx, span := p.startSpan(ctx, "gateway.operation.create", req)
	defer span.End()

	if !req.Kind.MultiStep() {
		err := dErrors.Newf(dErrors.CodeInvalidInput, "kind %s is single-shot, query it directly", req.Kind)
		return Response{}, p.finish(ctx, span, req, domain.Principal{}, nil, audit.ActionOperationCreated, err)
	}

	principal, err := p.admit(ctx, req)
	if err != nil {
		return Response{}, p.finish(ctx, span, req, principal, nil, audit.ActionOperationCreated, err)
	}

	state, err := p.operations.Create(ctx, principal, req.Kind, req.PayloadRef)
	if err != nil {
		return Response{}, p.finish(ctx, span, req, principal, nil, audit.ActionOperationCreated, err)
	}

	p.countTransition(state.Status)
	_ = p.finish(ctx, span, req, principal, &state, audit.ActionOperationCreated, nil)
	return Response{Kind: req.Kind, Operation: &state}, nil
}

// ConfirmOperation confirms a pending intent. The operation's own kind and
// clinic drive the gates: the transport only knows the id and token.
func (p *Pipeline) ConfirmOperation(ctx context.Context, req Request) (Response, error) {
	ctx, span := p.startSpan(ctx, "gateway.operation.confirm", req)
	defer span.End()

	principal, err := p.admitOperation(ctx, &req)
	if err != nil {
		return Response{}, p.finish(ctx, span, req, principal, nil, audit.ActionOperationConfirmed, err)
	}

	state, err := p.operations.Confirm(ctx, req.OperationID, principal, req.ConfirmationToken)
	if err != nil {
		return Response{}, p.finish(ctx, span, req, principal, nil, audit.ActionOperationConfirmed, err)
	}

	p.countTransition(state.Status)
	_ = p.finish(ctx, span, req, principal, &state, audit.ActionOperationConfirmed, nil)
	return Response{Kind: state.Kind, Operation: &state}, nil
}

// ExecuteOperation admits the request, moves the operation into execution,
// runs the business handler, and records the terminal transition. The handler
// outcome decides completed versus failed; both are audited.
func (p *Pipeline) ExecuteOperation(ctx context.Context, req Request) (Response, error) {
	ctx, span := p.startSpan(ctx, "gateway.operation.execute", req)
	defer span.End()

	principal, err := p.admitOperation(ctx, &req)
	if err != nil {
		return Response{}, p.finish(ctx, span, req, principal, nil, audit.ActionOperationExecuting, err)
	}

	state, err := p.operations.BeginExecute(ctx, req.OperationID)
	if err != nil {
		return Response{}, p.finish(ctx, span, req, principal, nil, audit.ActionOperationExecuting, err)
	}
	p.countTransition(state.Status)

	handler, err := p.handlers.handler(state.Kind)
	if err != nil {
		final, completeErr := p.operations.Complete(ctx, state.OperationID, false)
		if completeErr == nil {
			state = final
		}
		return Response{}, p.finish(ctx, span, req, principal, &state, audit.ActionOperationFailed, err)
	}

	data, handlerErr := handler.Handle(ctx, principal, req, &state)

	final, err := p.operations.Complete(ctx, state.OperationID, handlerErr == nil)
	if err != nil {
		return Response{}, p.finish(ctx, span, req, principal, &state, audit.ActionOperationFailed, err)
	}
	p.countTransition(final.Status)

	if handlerErr != nil {
		handlerErr = dErrors.Wrap(handlerErr, dErrors.CodeInternal, "business handler failed")
		return Response{}, p.finish(ctx, span, req, principal, &final, audit.ActionOperationFailed, handlerErr)
	}

	_ = p.finish(ctx, span, req, principal, &final, audit.ActionOperationCompleted, nil)
	return Response{Kind: final.Kind, Data: data, Operation: &final}, nil
}

// admit runs the four gates in order and returns the resolved principal. The
// returned principal is valid whenever identity resolution succeeded, even
// when a later gate refused; refusal audit events still name the caller.
func (p *Pipeline) admit(ctx context.Context, req Request) (domain.Principal, error) {
	principal, err := p.resolver.Resolve(req.Credential)
	if err != nil {
		return domain.Principal{}, err
	}
	return principal, p.guard(ctx, principal, req)
}

// admitOperation is admit for confirm/execute calls, where kind and target
// clinic come from the stored operation rather than the request. The lookup
// happens after identity resolution so anonymous callers cannot probe ids;
// the caller's own transition then re-checks principal ownership.
func (p *Pipeline) admitOperation(ctx context.Context, req *Request) (domain.Principal, error) {
	principal, err := p.resolver.Resolve(req.Credential)
	if err != nil {
		return domain.Principal{}, err
	}

	state, err := p.operations.Get(ctx, req.OperationID)
	if err != nil {
		return principal, err
	}
	req.Kind = state.Kind
	req.TargetClinicID = state.ClinicID

	return principal, p.guard(ctx, principal, *req)
}

// guard runs authorization, consent, and rate limiting for a resolved
// principal.
func (p *Pipeline) guard(ctx context.Context, principal domain.Principal, req Request) error {
	decision := authz.Authorize(principal, authz.Request{
		RequiredPermission: req.Kind.RequiredPermission(),
		TargetClinicID:     req.TargetClinicID,
		ClaimedRole:        req.ClaimedRole,
	})
	if !decision.Allowed {
		return dErrors.WithReason(dErrors.CodeForbidden,
			decision.Reason.String(), "authorization refused")
	}

	if err := p.consent.Check(ctx, principal, req.Kind, req.Kind.DataCategories(), req.ConsentSignal); err != nil {
		return err
	}

	res, err := p.limiter.TryAcquire(ctx, principal.ID)
	if err != nil {
		return err
	}
	if !res.Allowed {
		return newThrottleError(res)
	}

	return nil
}

// finish records the traversal's single audit event, updates metrics and the
// span, and passes the error through unchanged.
func (p *Pipeline) finish(ctx context.Context, span trace.Span, req Request, principal domain.Principal, state *operation.State, action audit.Action, err error) error {
	outcome := audit.OutcomeSuccess
	reason := id.ReasonCode(dErrors.ReasonOf(err))
	switch {
	case err == nil:
	case dErrors.HasReason(err, id.ReasonThrottled.String()):
		outcome = audit.OutcomeThrottled
	default:
		outcome = audit.OutcomeRefused
	}

	event := audit.Event{
		PrincipalID:        principal.ID,
		ClinicID:           principal.ClinicID,
		Action:             action,
		Outcome:            outcome,
		ReasonCode:         reason,
		RequestFingerprint: audit.Fingerprint(req.Method, req.Resource, principal.ID, req.Params),
		RequestID:          requestcontext.RequestID(ctx),
		ClientIP:           requestcontext.ClientIP(ctx),
	}
	if state != nil {
		event.OperationID = state.OperationID
	} else if !req.OperationID.IsNil() {
		event.OperationID = req.OperationID
	}
	p.recorder.Record(ctx, event)

	if p.metrics != nil {
		p.metrics.DecisionsTotal.WithLabelValues(string(action), string(outcome), reason.String()).Inc()
	}

	if err != nil {
		span.SetStatus(codes.Error, string(outcome))
		span.SetAttributes(attribute.String("refusal.reason", reason.String()))
		p.logger.InfoContext(ctx, "request refused",
			"action", string(action),
			"outcome", string(outcome),
			"reason", reason.String(),
			"error", err,
		)
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (p *Pipeline) startSpan(ctx context.Context, name string, req Request) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("operation.kind", req.Kind.String()),
		attribute.String("target.clinic_id", req.TargetClinicID.String()),
	))
}

func (p *Pipeline) countTransition(status operation.Status) {
	if p.metrics != nil {
		p.metrics.TransitionsTotal.WithLabelValues(string(status)).Inc()
	}
}
