package consent

import (
	"context"

	id "medgate/pkg/domain"
)

// Store reads consent records from the consent-management system. The gateway
// never writes through this interface; granting and revoking consent happen
// out-of-band.
type Store interface {
	// ListBySubject returns every record on file for the subject and purpose,
	// active or not. Filtering by liveness is the caller's concern so the
	// clock stays request-scoped.
	ListBySubject(ctx context.Context, subjectID id.PrincipalID, purpose id.OperationKind) ([]Record, error)
}
