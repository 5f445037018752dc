package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"custody/internal/core/application/usecases/commands"
	"custody/internal/core/domain/model/balance"
	"custody/internal/core/domain/model/certificate"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/request"
	"custody/internal/core/domain/model/residue"
	"custody/internal/core/ports"
)

type MockResidueRepository struct{ mock.Mock }

func (m *MockResidueRepository) Add(ctx context.Context, aggregate *residue.Residue) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockResidueRepository) Update(ctx context.Context, aggregate *residue.Residue) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockResidueRepository) Get(ctx context.Context, id kernel.UUID) (*residue.Residue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*residue.Residue), args.Error(1)
}

type MockRequestRepository struct{ mock.Mock }

func (m *MockRequestRepository) Add(ctx context.Context, aggregate *request.Request) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockRequestRepository) Get(ctx context.Context, id kernel.UUID) (*request.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*request.Request), args.Error(1)
}

func (m *MockRequestRepository) GetLineItem(ctx context.Context, id kernel.UUID) (*request.LineItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*request.LineItem), args.Error(1)
}

func (m *MockRequestRepository) UpdateLineItem(ctx context.Context, item *request.LineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRequestRepository) GetOpenLineItems(ctx context.Context) ([]*request.LineItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*request.LineItem), args.Error(1)
}

func (m *MockRequestRepository) AddOrder(ctx context.Context, order *request.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockRequestRepository) UpdateOrder(ctx context.Context, order *request.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockRequestRepository) GetOrdersByLineItem(ctx context.Context, lineItemID kernel.UUID) ([]*request.Order, error) {
	args := m.Called(ctx, lineItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*request.Order), args.Error(1)
}

type MockCertificateRepository struct{ mock.Mock }

func (m *MockCertificateRepository) Add(ctx context.Context, aggregate *certificate.Certificate) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockCertificateRepository) Update(ctx context.Context, aggregate *certificate.Certificate) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockCertificateRepository) Get(ctx context.Context, id kernel.UUID) (*certificate.Certificate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*certificate.Certificate), args.Error(1)
}

type MockBalanceRepository struct{ mock.Mock }

func (m *MockBalanceRepository) Get(ctx context.Context, owner, facility, wasteTypeID kernel.UUID) (*balance.Balance, error) {
	args := m.Called(ctx, owner, facility, wasteTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.Balance), args.Error(1)
}

func (m *MockBalanceRepository) Save(ctx context.Context, row *balance.Balance) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockBalanceRepository) GetProjectionCheckpoint(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) SaveProjectionCheckpoint(ctx context.Context, seq int64) error {
	args := m.Called(ctx, seq)
	return args.Error(0)
}

type MockNumberSequence struct{ mock.Mock }

func (m *MockNumberSequence) Next(ctx context.Context, scope string) (int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Error(1)
}

type MockDirectory struct{ mock.Mock }

func (m *MockDirectory) ResolveParty(ctx context.Context, id kernel.UUID) (ports.PartyRef, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.PartyRef), args.Error(1)
}

func (m *MockDirectory) ResolveFacility(ctx context.Context, id kernel.UUID) (ports.FacilityRef, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.FacilityRef), args.Error(1)
}

type MockBillingNotifier struct{ mock.Mock }

func (m *MockBillingNotifier) ManagementRecordCompleted(ctx context.Context, record request.ManagementRecord) {
	m.Called(ctx, record)
}

type MockEventStream struct{ mock.Mock }

func (m *MockEventStream) ReadAfter(ctx context.Context, afterSeq int64, limit int) ([]ports.StoredResidueEvent, error) {
	args := m.Called(ctx, afterSeq, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.StoredResidueEvent), args.Error(1)
}

// MockUoW satisfies every narrow unit of work interface the handlers use.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) ResidueRepository() ports.ResidueRepository {
	args := m.Called()
	return args.Get(0).(ports.ResidueRepository)
}

func (m *MockUoW) RequestRepository() ports.RequestRepository {
	args := m.Called()
	return args.Get(0).(ports.RequestRepository)
}

func (m *MockUoW) CertificateRepository() ports.CertificateRepository {
	args := m.Called()
	return args.Get(0).(ports.CertificateRepository)
}

func (m *MockUoW) BalanceRepository() ports.BalanceRepository {
	args := m.Called()
	return args.Get(0).(ports.BalanceRepository)
}

func (m *MockUoW) CertificateNumbers() ports.NumberSequence {
	args := m.Called()
	return args.Get(0).(ports.NumberSequence)
}

type stubResidueUoWFactory struct{ uow commands.ResidueUoW }

func (f stubResidueUoWFactory) Create() commands.ResidueUoW { return f.uow }

type stubRequestUoWFactory struct{ uow commands.RequestUoW }

func (f stubRequestUoWFactory) Create() commands.RequestUoW { return f.uow }

type stubAdvanceUoWFactory struct{ uow commands.AdvanceUoW }

func (f stubAdvanceUoWFactory) Create() commands.AdvanceUoW { return f.uow }

type stubCertificateUoWFactory struct{ uow commands.CertificateUoW }

func (f stubCertificateUoWFactory) Create() commands.CertificateUoW { return f.uow }

type stubBalanceUoWFactory struct{ uow commands.BalanceUoW }

func (f stubBalanceUoWFactory) Create() commands.BalanceUoW { return f.uow }

func quantityKg(t *testing.T, amount string) kernel.Quantity {
	t.Helper()
	q, err := kernel.NewQuantityFromString(amount, kernel.Kilogram)
	require.NoError(t, err)
	return q
}

func residueStorageEvent(r *residue.Residue, location kernel.UUID) (residue.Event, error) {
	return residue.NewEvent(
		kernel.NewUUID(),
		r.Status(),
		residue.Stored,
		time.Now(),
		residue.StorageOp{Location: location},
	)
}

func generatedResidue(t *testing.T, amount string) *residue.Residue {
	t.Helper()
	gen, err := residue.NewEvent(
		kernel.NewUUID(),
		residue.StatusUnknown,
		residue.Generated,
		time.Now(),
		residue.GenerationOp{
			WasteTypeID: kernel.NewUUID(),
			Quantity:    quantityKg(t, amount),
			Owner:       kernel.NewUUID(),
			Location:    kernel.NewUUID(),
		},
	)
	require.NoError(t, err)

	r, err := residue.NewResidue(kernel.NewUUID(), gen)
	require.NoError(t, err)
	return r
}
