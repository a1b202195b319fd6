// Package authz decides whether a resolved principal may perform an action
// against a tenant. The gate is a pure function of its inputs; it mutates no
// shared state.
package authz

import (
	"medgate/internal/domain"
	id "medgate/pkg/domain"
)

// Request groups the inputs to one authorization decision.
type Request struct {
	// RequiredPermission is the permission the target action demands.
	RequiredPermission string
	// TargetClinicID is the tenant whose data the action touches.
	TargetClinicID id.ClinicID
	// ClaimedRole is the role the caller asserted in request context, if any.
	// Empty means the request carried no role assertion.
	ClaimedRole string
}

// Authorize evaluates the principal against the request.
//
// Check order: role verification, then tenant scope, then permission. A role
// assertion that disagrees with the credential is a trust failure and stops
// evaluation immediately. Tenant scope is checked before permissions so a
// cross-tenant caller learns nothing about permission structure in another
// clinic.
func Authorize(principal domain.Principal, req Request) domain.AuthorizationDecision {
	if req.ClaimedRole != "" && req.ClaimedRole != principal.Role.String() {
		return domain.AuthorizationDecision{
			Allowed: false,
			Reason:  id.ReasonRoleVerificationFailed,
		}
	}

	if !principal.Role.CrossesClinics() && principal.ClinicID != req.TargetClinicID {
		return domain.AuthorizationDecision{
			Allowed:        false,
			Reason:         id.ReasonScopeViolation,
			TenantMismatch: true,
		}
	}

	if !principal.Permissions.Has(req.RequiredPermission) {
		return domain.AuthorizationDecision{
			Allowed:            false,
			Reason:             id.ReasonInsufficientPermission,
			RequiredPermission: req.RequiredPermission,
		}
	}

	return domain.AuthorizationDecision{
		Allowed:            true,
		RequiredPermission: req.RequiredPermission,
	}
}
