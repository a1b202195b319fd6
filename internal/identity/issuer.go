package identity

import (
	"time"

	"medgate/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer mints access tokens for principals. The login flow lives outside the
// gateway; the issuer exists for that flow's use and for tests.
type Issuer struct {
	signingKey []byte
	issuer     string
	audience   string
}

// NewIssuer creates an Issuer matching the Resolver's verification settings.
func NewIssuer(signingKey, issuer, audience string) *Issuer {
	return &Issuer{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Issue signs an access token for the principal, valid for expiresIn.
func (i *Issuer) Issue(principal domain.Principal, expiresIn time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:        principal.Role.String(),
		ClinicID:    principal.ClinicID.String(),
		Permissions: principal.Permissions.Slice(),
		SessionID:   principal.SessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.issuer,
			Audience:  []string{i.audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(i.signingKey)
}
