// Package domain holds the gateway's request-scoped entities. Principal and
// AuthorizationDecision live for the duration of one request and are never
// persisted.
package domain

import (
	"time"

	id "medgate/pkg/domain"
)

// Principal is the resolved, authenticated caller. It is derived entirely from
// the validated credential; nothing here comes from request bodies or headers.
type Principal struct {
	ID          id.PrincipalID
	Role        id.Role
	ClinicID    id.ClinicID
	Permissions PermissionSet
	SessionID   id.SessionID
	TokenExpiry time.Time
}

// PermissionSet is the set of permission strings granted to a principal.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from a slice of permission names.
func NewPermissionSet(perms []string) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Has reports whether the permission is granted.
func (s PermissionSet) Has(perm string) bool {
	_, ok := s[perm]
	return ok
}

// Slice returns the permissions in no particular order, for serialization.
func (s PermissionSet) Slice() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	return out
}

// AuthorizationDecision is the outcome of the authorization gate. Ephemeral
// and computed per request.
type AuthorizationDecision struct {
	Allowed            bool
	Reason             id.ReasonCode
	RequiredPermission string
	TenantMismatch     bool
}
