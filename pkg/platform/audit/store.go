package audit

import "context"

// Store is an append-only sink for audit events. Implementations must treat
// every append as immutable; there is no update or delete. Read access, where
// an implementation offers it, exists for offline review tooling only and is
// never consulted by request-path code.
type Store interface {
	Append(ctx context.Context, event Event) error
}
