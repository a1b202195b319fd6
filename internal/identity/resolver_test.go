package identity

import (
	"testing"
	"time"

	"medgate/internal/domain"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testSigningKey = "unit-test-signing-key"
	testIssuer     = "medgate"
	testAudience   = "clinic-platform"
)

type ResolverSuite struct {
	suite.Suite
	resolver  *Resolver
	issuer    *Issuer
	principal domain.Principal
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.resolver = NewResolver(testSigningKey, testIssuer, testAudience)
	s.issuer = NewIssuer(testSigningKey, testIssuer, testAudience)
	s.principal = domain.Principal{
		ID:          id.PrincipalID(uuid.New()),
		Role:        id.RoleProfessional,
		ClinicID:    id.ClinicID(uuid.New()),
		Permissions: domain.NewPermissionSet([]string{"appointments.read", "patients.read"}),
		SessionID:   id.SessionID(uuid.New()),
	}
}

func (s *ResolverSuite) TestResolveValidCredential() {
	token, err := s.issuer.Issue(s.principal, time.Hour)
	s.Require().NoError(err)

	resolved, err := s.resolver.Resolve(token)
	s.Require().NoError(err)
	s.Equal(s.principal.ID, resolved.ID)
	s.Equal(s.principal.Role, resolved.Role)
	s.Equal(s.principal.ClinicID, resolved.ClinicID)
	s.Equal(s.principal.SessionID, resolved.SessionID)
	s.True(resolved.Permissions.Has("appointments.read"))
	s.False(resolved.Permissions.Has("billing.write"))
	s.WithinDuration(time.Now().Add(time.Hour), resolved.TokenExpiry, time.Minute)
}

func (s *ResolverSuite) TestResolveMissingCredential() {
	for _, raw := range []string{"", "   "} {
		_, err := s.resolver.Resolve(raw)
		s.Require().Error(err)
		s.True(dErrors.HasReason(err, id.ReasonCredentialMissing.String()))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	}
}

func (s *ResolverSuite) TestResolveExpiredCredential() {
	token, err := s.issuer.Issue(s.principal, -time.Minute)
	s.Require().NoError(err)

	_, err = s.resolver.Resolve(token)
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, id.ReasonCredentialExpired.String()))
}

func (s *ResolverSuite) TestResolveMalformedCredential() {
	_, err := s.resolver.Resolve("not-a-jwt")
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, id.ReasonCredentialInvalid.String()))
}

func (s *ResolverSuite) TestResolveWrongSigningKey() {
	other := NewIssuer("some-other-key", testIssuer, testAudience)
	token, err := other.Issue(s.principal, time.Hour)
	s.Require().NoError(err)

	_, err = s.resolver.Resolve(token)
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, id.ReasonCredentialInvalid.String()))
}

func (s *ResolverSuite) TestResolveWrongIssuer() {
	other := NewIssuer(testSigningKey, "someone-else", testAudience)
	token, err := other.Issue(s.principal, time.Hour)
	s.Require().NoError(err)

	_, err = s.resolver.Resolve(token)
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, id.ReasonCredentialInvalid.String()))
}

func (s *ResolverSuite) TestResolveRejectsUnexpectedSigningMethod() {
	// An alg:none token must never validate.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  uuid.NewString(),
			Issuer:   testIssuer,
			Audience: []string{testAudience},
		},
	})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(s.T(), err)

	_, err = s.resolver.Resolve(raw)
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, id.ReasonCredentialInvalid.String()))
}

func (s *ResolverSuite) TestResolveRejectsUnknownRole() {
	raw := s.signWithClaims(Claims{
		Role:      "superuser",
		ClinicID:  uuid.NewString(),
		SessionID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    testIssuer,
			Audience:  []string{testAudience},
		},
	})

	_, err := s.resolver.Resolve(raw)
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, id.ReasonCredentialInvalid.String()))
}

func (s *ResolverSuite) signWithClaims(claims Claims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte(testSigningKey))
	s.Require().NoError(err)
	return raw
}
