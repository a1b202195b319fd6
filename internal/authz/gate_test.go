package authz

import (
	"testing"

	"medgate/internal/domain"
	id "medgate/pkg/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var (
	clinicA = id.ClinicID(uuid.New())
	clinicB = id.ClinicID(uuid.New())
)

func staffPrincipal(clinic id.ClinicID, perms ...string) domain.Principal {
	return domain.Principal{
		ID:          id.PrincipalID(uuid.New()),
		Role:        id.RoleStaff,
		ClinicID:    clinic,
		Permissions: domain.NewPermissionSet(perms),
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name       string
		principal  domain.Principal
		req        Request
		allowed    bool
		reason     id.ReasonCode
		mismatched bool
	}{
		{
			name:      "permission present, same clinic",
			principal: staffPrincipal(clinicA, "billing.read"),
			req:       Request{RequiredPermission: "billing.read", TargetClinicID: clinicA},
			allowed:   true,
		},
		{
			name:      "permission absent, same clinic",
			principal: staffPrincipal(clinicA, "appointments.read"),
			req:       Request{RequiredPermission: "billing.read", TargetClinicID: clinicA},
			reason:    id.ReasonInsufficientPermission,
		},
		{
			name:       "clinic mismatch with permission present",
			principal:  staffPrincipal(clinicA, "billing.read"),
			req:        Request{RequiredPermission: "billing.read", TargetClinicID: clinicB},
			reason:     id.ReasonScopeViolation,
			mismatched: true,
		},
		{
			// Tenant isolation is reported before the permission gap so the
			// caller learns nothing about another clinic's permission layout.
			name:       "clinic mismatch with permission also absent",
			principal:  staffPrincipal(clinicA),
			req:        Request{RequiredPermission: "billing.read", TargetClinicID: clinicB},
			reason:     id.ReasonScopeViolation,
			mismatched: true,
		},
		{
			name: "admin crosses clinics",
			principal: domain.Principal{
				ID:          id.PrincipalID(uuid.New()),
				Role:        id.RoleAdmin,
				ClinicID:    clinicA,
				Permissions: domain.NewPermissionSet([]string{"billing.read"}),
			},
			req:     Request{RequiredPermission: "billing.read", TargetClinicID: clinicB},
			allowed: true,
		},
		{
			name: "admin still needs the permission",
			principal: domain.Principal{
				ID:          id.PrincipalID(uuid.New()),
				Role:        id.RoleAdmin,
				ClinicID:    clinicA,
				Permissions: domain.NewPermissionSet(nil),
			},
			req:    Request{RequiredPermission: "billing.read", TargetClinicID: clinicB},
			reason: id.ReasonInsufficientPermission,
		},
		{
			name:      "claimed role disagreeing with credential is a hard failure",
			principal: staffPrincipal(clinicA, "billing.read"),
			req: Request{
				RequiredPermission: "billing.read",
				TargetClinicID:     clinicA,
				ClaimedRole:        "admin",
			},
			reason: id.ReasonRoleVerificationFailed,
		},
		{
			name:      "role escalation beats scope violation",
			principal: staffPrincipal(clinicA, "billing.read"),
			req: Request{
				RequiredPermission: "billing.read",
				TargetClinicID:     clinicB,
				ClaimedRole:        "admin",
			},
			reason: id.ReasonRoleVerificationFailed,
		},
		{
			name:      "matching claimed role is accepted",
			principal: staffPrincipal(clinicA, "billing.read"),
			req: Request{
				RequiredPermission: "billing.read",
				TargetClinicID:     clinicA,
				ClaimedRole:        "staff",
			},
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Authorize(tt.principal, tt.req)
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.Equal(t, tt.reason, decision.Reason)
			assert.Equal(t, tt.mismatched, decision.TenantMismatch)
		})
	}
}

func TestAuthorizeStaffAgainstOtherClinicFinancials(t *testing.T) {
	// The canonical cross-tenant scenario: staff with the financial permission
	// at clinic A asking about clinic B.
	principal := staffPrincipal(clinicA, "billing.read")
	decision := Authorize(principal, Request{
		RequiredPermission: "billing.read",
		TargetClinicID:     clinicB,
	})

	assert.False(t, decision.Allowed)
	assert.Equal(t, id.ReasonScopeViolation, decision.Reason)
	assert.NotEqual(t, id.ReasonInsufficientPermission, decision.Reason)
	assert.True(t, decision.TenantMismatch)
}
