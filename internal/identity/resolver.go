// Package identity validates bearer credentials and resolves the calling
// Principal. Resolution only decodes and verifies; it touches no shared state.
package identity

import (
	"errors"
	"strings"
	"time"

	"medgate/internal/domain"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	pstrings "medgate/pkg/platform/strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims carried by platform access tokens. The role,
// clinic scope, and permission set embedded here are the only trusted source
// for authorization decisions.
type Claims struct {
	Role        string   `json:"role"`
	ClinicID    string   `json:"clinic_id"`
	Permissions []string `json:"permissions"`
	SessionID   string   `json:"session_id"`
	jwt.RegisteredClaims
}

// Resolver validates credentials and produces Principals.
type Resolver struct {
	signingKey []byte
	issuer     string
	audience   string
}

// NewResolver creates a Resolver for HS256 tokens signed with signingKey.
func NewResolver(signingKey, issuer, audience string) *Resolver {
	return &Resolver{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Resolve validates rawCredential and returns the resolved Principal.
//
// Errors carry the refusal reasons CREDENTIAL_MISSING, CREDENTIAL_EXPIRED, or
// CREDENTIAL_INVALID; no other failures are expected.
func (r *Resolver) Resolve(rawCredential string) (domain.Principal, error) {
	rawCredential = strings.TrimSpace(rawCredential)
	if rawCredential == "" {
		return domain.Principal{}, dErrors.WithReason(dErrors.CodeUnauthorized,
			id.ReasonCredentialMissing.String(), "no credential supplied")
	}

	parsed, err := jwt.ParseWithClaims(rawCredential, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return r.signingKey, nil
	}, jwt.WithIssuer(r.issuer), jwt.WithAudience(r.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, dErrors.WithReason(dErrors.CodeUnauthorized,
				id.ReasonCredentialExpired.String(), "credential has expired")
		}
		return domain.Principal{}, dErrors.WithReason(dErrors.CodeUnauthorized,
			id.ReasonCredentialInvalid.String(), "malformed or unverifiable credential")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.Principal{}, dErrors.WithReason(dErrors.CodeUnauthorized,
			id.ReasonCredentialInvalid.String(), "invalid credential claims")
	}

	return principalFromClaims(claims)
}

func principalFromClaims(claims *Claims) (domain.Principal, error) {
	invalid := func(msg string) error {
		return dErrors.WithReason(dErrors.CodeUnauthorized, id.ReasonCredentialInvalid.String(), msg)
	}

	principalID, err := id.ParsePrincipalID(claims.Subject)
	if err != nil {
		return domain.Principal{}, invalid("credential subject is not a principal id")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return domain.Principal{}, invalid("credential carries an unknown role")
	}
	clinicID, err := id.ParseClinicID(claims.ClinicID)
	if err != nil {
		return domain.Principal{}, invalid("credential carries an invalid clinic scope")
	}
	sessionID, err := id.ParseSessionID(claims.SessionID)
	if err != nil {
		return domain.Principal{}, invalid("credential carries an invalid session id")
	}

	var expiry time.Time
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	return domain.Principal{
		ID:          principalID,
		Role:        role,
		ClinicID:    clinicID,
		Permissions: domain.NewPermissionSet(pstrings.DedupeAndTrim(claims.Permissions)),
		SessionID:   sessionID,
		TokenExpiry: expiry,
	}, nil
}
