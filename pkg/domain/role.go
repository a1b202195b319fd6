package domain

import dErrors "medgate/pkg/domain-errors"

// Role is the caller's role as embedded in the validated credential. Roles are
// never taken from request bodies or headers.
type Role string

const (
	// RoleAdmin may operate across clinic boundaries.
	RoleAdmin Role = "admin"
	// RoleProfessional is a licensed practitioner scoped to one clinic.
	RoleProfessional Role = "professional"
	// RoleStaff covers reception and billing personnel scoped to one clinic.
	RoleStaff Role = "staff"
)

var validRoles = map[Role]bool{
	RoleAdmin:        true,
	RoleProfessional: true,
	RoleStaff:        true,
}

// ParseRole constructs a Role from external input.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CrossesClinics reports whether this role is exempt from tenant scoping.
func (r Role) CrossesClinics() bool {
	return r == RoleAdmin
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
