// Package consent gates access to privacy-sensitive operations behind an
// explicit, verifiable consent signal. Records are owned by the external
// consent-management system; the gateway only reads them.
package consent

import (
	"time"

	id "medgate/pkg/domain"
)

// Record captures a subject's standing consent for a purpose over a set of
// data categories.
type Record struct {
	SubjectID id.PrincipalID
	Purpose   id.OperationKind
	Scope     []id.DataCategory
	GrantedAt time.Time
	// ExpiresAt nil means the consent does not expire on its own.
	ExpiresAt *time.Time
}

// IsActive reports whether the record is live at the given instant.
func (r Record) IsActive(now time.Time) bool {
	if r.ExpiresAt == nil {
		return true
	}
	return now.Before(*r.ExpiresAt)
}

// Covers reports whether the record's scope is a superset of the requested
// data categories.
func (r Record) Covers(categories []id.DataCategory) bool {
	scope := make(map[id.DataCategory]bool, len(r.Scope))
	for _, c := range r.Scope {
		scope[c] = true
	}
	for _, c := range categories {
		if !scope[c] {
			return false
		}
	}
	return true
}
