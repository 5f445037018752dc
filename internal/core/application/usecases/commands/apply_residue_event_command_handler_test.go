package commands_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"custody/internal/core/application/usecases/commands"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/residue"
	"custody/internal/core/domain/services"
	"custody/internal/core/ports"
	"custody/internal/pkg/keylock"

	"github.com/shopspring/decimal"
)

func newApplyHandler(
	t *testing.T,
	uow commands.ResidueUoW,
	directory ports.Directory,
) commands.ApplyResidueEventCommandHandler {
	t.Helper()
	engine, err := services.NewConservationEngine(decimal.Zero)
	require.NoError(t, err)
	return commands.NewApplyResidueEventCommandHandler(
		stubResidueUoWFactory{uow: uow}, directory, engine, keylock.NewKeyLock())
}

func relocationEvent(t *testing.T, r *residue.Residue, to kernel.UUID) residue.Event {
	t.Helper()
	ev, err := residue.NewEvent(
		kernel.NewUUID(), r.Status(), residue.InTransit, time.Now(),
		residue.RelocationOp{
			FromLocation: r.Location(),
			ToLocation:   to,
			Vehicle:      "TRK-042",
		})
	require.NoError(t, err)
	return ev
}

func TestApplyResidueEventCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	r := generatedResidue(t, "100")
	dest := kernel.NewUUID()
	ev := relocationEvent(t, r, dest)

	cmd, err := commands.NewApplyResidueEventCommand(r.ID(), ev, "")
	require.NoError(t, err)

	repo := new(MockResidueRepository)
	directory := new(MockDirectory)
	uow := new(MockUoW)

	directory.On("ResolveFacility", ctx, dest).Return(ports.FacilityRef{ID: dest}, nil).Once()
	uow.On("ResidueRepository").Return(repo)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		repo.On("Get", ctx, r.ID()).Return(r, nil).Once(),
		repo.On("Update", ctx, mock.AnythingOfType("*residue.Residue")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := newApplyHandler(t, uow, directory)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, residue.InTransit, result.Status)
	assert.Equal(t, 2, result.Version)
	assert.False(t, result.AlreadyApplied)
	repo.AssertExpectations(t)
	directory.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestApplyResidueEventCommandHandler_Handle_Idempotent(t *testing.T) {
	ctx := t.Context()
	r := generatedResidue(t, "100")
	dest := kernel.NewUUID()
	ev := relocationEvent(t, r, dest)
	_, err := r.Apply(ev)
	require.NoError(t, err)

	cmd, err := commands.NewApplyResidueEventCommand(r.ID(), ev, "")
	require.NoError(t, err)

	repo := new(MockResidueRepository)
	directory := new(MockDirectory)
	uow := new(MockUoW)

	directory.On("ResolveFacility", ctx, dest).Return(ports.FacilityRef{ID: dest}, nil).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ResidueRepository").Return(repo)
	repo.On("Get", ctx, r.ID()).Return(r, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := newApplyHandler(t, uow, directory)
	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, result.AlreadyApplied)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestApplyResidueEventCommandHandler_Handle_ConservationViolation(t *testing.T) {
	ctx := t.Context()
	r := generatedResidue(t, "100")
	storage, err := residue.NewEvent(
		kernel.NewUUID(), residue.Generated, residue.Stored, time.Now(),
		residue.StorageOp{Location: kernel.NewUUID()})
	require.NoError(t, err)
	_, err = r.Apply(storage)
	require.NoError(t, err)

	transformation, err := residue.NewEvent(
		kernel.NewUUID(), residue.Stored, residue.Transformed, time.Now(),
		residue.TransformationOp{Outputs: []residue.TransformationOutput{{
			ResidueID:   kernel.NewUUID(),
			WasteTypeID: kernel.NewUUID(),
			Quantity:    quantityKg(t, "90"),
		}}})
	require.NoError(t, err)

	cmd, err := commands.NewApplyResidueEventCommand(r.ID(), transformation, "")
	require.NoError(t, err)

	repo := new(MockResidueRepository)
	directory := new(MockDirectory)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ResidueRepository").Return(repo)
	repo.On("Get", ctx, r.ID()).Return(r, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := newApplyHandler(t, uow, directory)
	_, err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, kernel.ErrConservationViolation)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestApplyResidueEventCommandHandler_Handle_StaleVersion(t *testing.T) {
	ctx := t.Context()
	r := generatedResidue(t, "100")
	dest := kernel.NewUUID()
	ev := relocationEvent(t, r, dest)

	cmd, err := commands.NewApplyResidueEventCommand(r.ID(), ev, "")
	require.NoError(t, err)

	stale := kernel.NewStaleVersionError(residue.AggregateKind, r.ID(), 1)

	repo := new(MockResidueRepository)
	directory := new(MockDirectory)
	uow := new(MockUoW)

	directory.On("ResolveFacility", ctx, dest).Return(ports.FacilityRef{ID: dest}, nil).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ResidueRepository").Return(repo)
	repo.On("Get", ctx, r.ID()).Return(r, nil).Once()
	repo.On("Update", ctx, mock.AnythingOfType("*residue.Residue")).Return(stale).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := newApplyHandler(t, uow, directory)
	_, err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, kernel.ErrStaleVersion)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestApplyResidueEventCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	handler := newApplyHandler(t, new(MockUoW), new(MockDirectory))

	_, err := handler.Handle(ctx, commands.ApplyResidueEventCommand{})

	require.ErrorIs(t, err, commands.ErrApplyResidueEventCommandIsNotConstructed)
}
