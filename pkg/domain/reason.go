package domain

// ReasonCode is the stable, machine-distinguishable identifier carried by
// every refusal. Values are part of the API contract; never rename.
type ReasonCode string

const (
	ReasonCredentialMissing      ReasonCode = "CREDENTIAL_MISSING"
	ReasonCredentialInvalid      ReasonCode = "CREDENTIAL_INVALID"
	ReasonCredentialExpired      ReasonCode = "CREDENTIAL_EXPIRED"
	ReasonScopeViolation         ReasonCode = "SCOPE_VIOLATION"
	ReasonInsufficientPermission ReasonCode = "INSUFFICIENT_PERMISSION"
	ReasonRoleVerificationFailed ReasonCode = "ROLE_VERIFICATION_FAILED"
	ReasonConsentRequired        ReasonCode = "CONSENT_REQUIRED"
	ReasonThrottled              ReasonCode = "THROTTLED"
	ReasonOperationNotFound      ReasonCode = "OPERATION_NOT_FOUND"
	ReasonPrincipalMismatch      ReasonCode = "PRINCIPAL_MISMATCH"
	ReasonAlreadyTerminal        ReasonCode = "ALREADY_TERMINAL"
	ReasonInvalidTransition      ReasonCode = "INVALID_TRANSITION"
)

// String returns the string representation of the reason code.
func (r ReasonCode) String() string {
	return string(r)
}
