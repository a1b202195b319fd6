package consent

import (
	"context"
	"log/slog"
	"time"

	"medgate/internal/domain"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/requestcontext"
)

// DefaultVerifyTimeout bounds the consent-store lookup. A slow collaborator
// must not hold the request open indefinitely; on timeout the gate refuses.
const DefaultVerifyTimeout = 2 * time.Second

// Gate enforces consent on consent-requiring operation kinds.
type Gate struct {
	store         Store
	logger        *slog.Logger
	verifyTimeout time.Duration
}

// Option configures a Gate.
type Option func(*Gate)

// WithVerifyTimeout overrides the consent-store lookup timeout.
func WithVerifyTimeout(d time.Duration) Option {
	return func(g *Gate) {
		g.verifyTimeout = d
	}
}

// NewGate creates a Gate. A nil store means no consent-management collaborator
// is wired; the explicit in-request signal then stands alone.
func NewGate(store Store, logger *slog.Logger, opts ...Option) *Gate {
	g := &Gate{
		store:         store,
		logger:        logger,
		verifyTimeout: DefaultVerifyTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check enforces consent for the principal's operation. Non-consent-requiring
// kinds always pass. For consent-requiring kinds, the caller must have sent an
// explicit consent signal AND, when a consent store is available, a live
// record covering the requested data categories must exist.
//
// Every failure path, including store errors and timeouts, refuses with
// CONSENT_REQUIRED. The gate fails closed; an unreachable collaborator is
// never an implicit pass.
func (g *Gate) Check(ctx context.Context, principal domain.Principal, kind id.OperationKind, categories []id.DataCategory, signalPresent bool) error {
	if !kind.ConsentRequired() {
		return nil
	}

	if !signalPresent {
		return refuse("no consent signal supplied")
	}

	if g.store == nil {
		return nil
	}

	now := requestcontext.Now(ctx)

	lookupCtx, cancel := context.WithTimeout(ctx, g.verifyTimeout)
	defer cancel()

	records, err := g.store.ListBySubject(lookupCtx, principal.ID, kind)
	if err != nil {
		g.logger.WarnContext(ctx, "consent verification failed, refusing",
			"error", err,
			"principal_id", principal.ID.String(),
			"operation_kind", kind.String(),
		)
		return refuse("consent could not be verified")
	}

	for _, r := range records {
		if r.IsActive(now) && r.Covers(categories) {
			return nil
		}
	}
	return refuse("no active consent covers the requested data categories")
}

func refuse(msg string) error {
	return dErrors.WithReason(dErrors.CodeForbidden, id.ReasonConsentRequired.String(), msg)
}
