package consent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"medgate/internal/domain"
	id "medgate/pkg/domain"
	dErrors "medgate/pkg/domain-errors"
	"medgate/pkg/requestcontext"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type failingStore struct {
	err error
}

func (f *failingStore) ListBySubject(context.Context, id.PrincipalID, id.OperationKind) ([]Record, error) {
	return nil, f.err
}

type hangingStore struct{}

func (hangingStore) ListBySubject(ctx context.Context, _ id.PrincipalID, _ id.OperationKind) ([]Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type GateSuite struct {
	suite.Suite
	store     *InMemoryStore
	gate      *Gate
	principal domain.Principal
	now       time.Time
	ctx       context.Context
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.gate = NewGate(s.store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.principal = domain.Principal{
		ID:       id.PrincipalID(uuid.New()),
		Role:     id.RoleStaff,
		ClinicID: id.ClinicID(uuid.New()),
	}
	s.now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *GateSuite) grant(purpose id.OperationKind, scope []id.DataCategory, expiresAt *time.Time) {
	s.Require().NoError(s.store.Save(context.Background(), Record{
		SubjectID: s.principal.ID,
		Purpose:   purpose,
		Scope:     scope,
		GrantedAt: s.now.Add(-time.Hour),
		ExpiresAt: expiresAt,
	}))
}

func (s *GateSuite) TestNonConsentRequiringKindPasses() {
	err := s.gate.Check(s.ctx, s.principal, id.KindAppointmentQuery, nil, false)
	s.NoError(err)
}

func (s *GateSuite) TestMissingSignalRefuses() {
	err := s.gate.Check(s.ctx, s.principal, id.KindFinancialSummary, []id.DataCategory{id.CategoryFinancial}, false)
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, id.ReasonConsentRequired.String()))
}

func (s *GateSuite) TestSignalWithCoveringRecordPasses() {
	s.grant(id.KindFinancialSummary, []id.DataCategory{id.CategoryFinancial, id.CategoryContact}, nil)

	err := s.gate.Check(s.ctx, s.principal, id.KindFinancialSummary, []id.DataCategory{id.CategoryFinancial}, true)
	s.NoError(err)
}

func (s *GateSuite) TestSignalWithoutRecordRefuses() {
	err := s.gate.Check(s.ctx, s.principal, id.KindFinancialSummary, []id.DataCategory{id.CategoryFinancial}, true)
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, id.ReasonConsentRequired.String()))
}

func (s *GateSuite) TestScopeMustBeSuperset() {
	s.grant(id.KindPatientSearch, []id.DataCategory{id.CategoryClinical}, nil)

	err := s.gate.Check(s.ctx, s.principal, id.KindPatientSearch,
		[]id.DataCategory{id.CategoryClinical, id.CategoryFinancial}, true)
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, id.ReasonConsentRequired.String()))

	err = s.gate.Check(s.ctx, s.principal, id.KindPatientSearch,
		[]id.DataCategory{id.CategoryClinical}, true)
	s.NoError(err)
}

func (s *GateSuite) TestExpiredRecordRefuses() {
	expired := s.now.Add(-time.Minute)
	s.grant(id.KindDataExport, []id.DataCategory{id.CategoryClinical, id.CategoryContact}, &expired)

	err := s.gate.Check(s.ctx, s.principal, id.KindDataExport, []id.DataCategory{id.CategoryClinical}, true)
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, id.ReasonConsentRequired.String()))
}

func (s *GateSuite) TestStoreErrorFailsClosed() {
	gate := NewGate(&failingStore{err: errors.New("connection refused")}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := gate.Check(s.ctx, s.principal, id.KindFinancialSummary, []id.DataCategory{id.CategoryFinancial}, true)
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, id.ReasonConsentRequired.String()))
}

func (s *GateSuite) TestStoreTimeoutFailsClosed() {
	gate := NewGate(hangingStore{}, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithVerifyTimeout(10*time.Millisecond))

	err := gate.Check(s.ctx, s.principal, id.KindFinancialSummary, []id.DataCategory{id.CategoryFinancial}, true)
	s.Require().Error(err)
	s.True(dErrors.HasReason(err, id.ReasonConsentRequired.String()))
}

func (s *GateSuite) TestNilStoreTrustsExplicitSignal() {
	gate := NewGate(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.Require().Error(gate.Check(s.ctx, s.principal, id.KindDataExport, nil, false))
	s.NoError(gate.Check(s.ctx, s.principal, id.KindDataExport, nil, true))
}
