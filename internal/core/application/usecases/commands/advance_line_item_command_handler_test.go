package commands_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"custody/internal/core/application/usecases/commands"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/request"
	"custody/internal/core/domain/model/residue"
	"custody/internal/core/domain/services"
	"custody/internal/pkg/keylock"
)

func newAdvanceHandler(
	t *testing.T,
	uow commands.AdvanceUoW,
	billing *MockBillingNotifier,
) commands.AdvanceLineItemCommandHandler {
	t.Helper()
	engine, err := services.NewConservationEngine(decimal.Zero)
	require.NoError(t, err)
	return commands.NewAdvanceLineItemCommandHandler(
		stubAdvanceUoWFactory{uow: uow},
		services.NewEventDeriver(engine),
		billing,
		keylock.NewKeyLock(),
	)
}

func lineItemAt(
	t *testing.T,
	residueID kernel.UUID,
	stage request.Stage,
	phase request.Phase,
) *request.LineItem {
	t.Helper()
	item, err := request.RestoreLineItem(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		[]kernel.UUID{residueID}, request.ServiceTreatment, stage, phase, 1)
	require.NoError(t, err)
	return item
}

func TestAdvanceLineItemCommandHandler_Handle_PhaseStageMismatch(t *testing.T) {
	ctx := t.Context()
	item := lineItemAt(t, kernel.NewUUID(), request.StageValidation, request.PhasePlanning)

	cmd, err := commands.NewAdvanceLineItemCommand(
		item.ID(), request.StageUnknown, request.PhaseExecution, time.Now(),
		commands.AdvanceDetails{})
	require.NoError(t, err)

	repo := new(MockRequestRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RequestRepository").Return(repo)
	repo.On("GetLineItem", ctx, item.ID()).Return(item, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := newAdvanceHandler(t, uow, new(MockBillingNotifier))
	err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, kernel.ErrPhaseStageMismatch)
	assert.Equal(t, request.PhasePlanning, item.Phase())
	repo.AssertNotCalled(t, "UpdateLineItem", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestAdvanceLineItemCommandHandler_Handle_StageAdvanceEmitsRelocation(t *testing.T) {
	ctx := t.Context()
	r := generatedResidue(t, "100")
	item := lineItemAt(t, r.ID(), request.StageValidation, request.PhasePlanning)
	dest := kernel.NewUUID()

	cmd, err := commands.NewAdvanceLineItemCommand(
		item.ID(), request.StageTransport, request.PhaseUnknown, time.Now(),
		commands.AdvanceDetails{Destination: dest, Vehicle: "TRK-042"})
	require.NoError(t, err)

	requestRepo := new(MockRequestRepository)
	residueRepo := new(MockResidueRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RequestRepository").Return(requestRepo)
	uow.On("ResidueRepository").Return(residueRepo)
	requestRepo.On("GetLineItem", ctx, item.ID()).Return(item, nil).Once()
	residueRepo.On("Get", ctx, r.ID()).Return(r, nil).Once()
	residueRepo.On("Update", ctx, mock.AnythingOfType("*residue.Residue")).Return(nil).Once()
	requestRepo.On("UpdateLineItem", ctx, item).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := newAdvanceHandler(t, uow, new(MockBillingNotifier))
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, request.StageTransport, item.Stage())
	assert.True(t, r.Location().IsEqual(dest), "relocation was applied to the residue")
	requestRepo.AssertExpectations(t)
	residueRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestAdvanceLineItemCommandHandler_Handle_RejectedEventAbortsWholeAdvance(t *testing.T) {
	ctx := t.Context()
	r := generatedResidue(t, "100")
	// Reception requires a handover from InTransit or Stored; a residue
	// still in Generated rejects it, which must abort the stage update too.
	item := lineItemAt(t, r.ID(), request.StageTransport, request.PhasePlanning)

	cmd, err := commands.NewAdvanceLineItemCommand(
		item.ID(), request.StageReception, request.PhaseUnknown, time.Now(),
		commands.AdvanceDetails{Destination: kernel.NewUUID()})
	require.NoError(t, err)

	requestRepo := new(MockRequestRepository)
	residueRepo := new(MockResidueRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RequestRepository").Return(requestRepo)
	uow.On("ResidueRepository").Return(residueRepo)
	requestRepo.On("GetLineItem", ctx, item.ID()).Return(item, nil).Once()
	residueRepo.On("Get", ctx, r.ID()).Return(r, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := newAdvanceHandler(t, uow, new(MockBillingNotifier))
	err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, kernel.ErrInvalidTransition)
	residueRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	requestRepo.AssertNotCalled(t, "UpdateLineItem", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestAdvanceLineItemCommandHandler_Handle_ExecutionPhaseCreatesOrder(t *testing.T) {
	ctx := t.Context()
	item := lineItemAt(t, kernel.NewUUID(), request.StageTransport, request.PhasePlanning)
	start := time.Now()

	cmd, err := commands.NewAdvanceLineItemCommand(
		item.ID(), request.StageUnknown, request.PhaseExecution, start,
		commands.AdvanceDetails{
			Vehicle:     "TRK-042",
			Responsible: kernel.NewUUID(),
			WindowStart: start,
			WindowEnd:   start.Add(6 * time.Hour),
		})
	require.NoError(t, err)

	repo := new(MockRequestRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RequestRepository").Return(repo)
	repo.On("GetLineItem", ctx, item.ID()).Return(item, nil).Once()
	repo.On("AddOrder", ctx, mock.AnythingOfType("*request.Order")).Return(nil).Once()
	repo.On("UpdateLineItem", ctx, item).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := newAdvanceHandler(t, uow, new(MockBillingNotifier))
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, request.PhaseExecution, item.Phase())
	repo.AssertExpectations(t)
}

func TestAdvanceLineItemCommandHandler_Handle_MixedUnitResiduesFailTheAdvance(t *testing.T) {
	ctx := t.Context()
	kilograms := generatedResidue(t, "100")

	liters, err := kernel.NewQuantityFromString("50", kernel.Liter)
	require.NoError(t, err)
	gen, err := residue.NewEvent(
		kernel.NewUUID(), residue.StatusUnknown, residue.Generated, time.Now(),
		residue.GenerationOp{
			WasteTypeID: kernel.NewUUID(),
			Quantity:    liters,
			Owner:       kilograms.Owner(),
			Location:    kilograms.Location(),
		})
	require.NoError(t, err)
	volumetric, err := residue.NewResidue(kernel.NewUUID(), gen)
	require.NoError(t, err)

	item, err := request.RestoreLineItem(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		[]kernel.UUID{kilograms.ID(), volumetric.ID()},
		request.ServiceTreatment, request.StageValidation, request.PhasePlanning, 1)
	require.NoError(t, err)

	cmd, err := commands.NewAdvanceLineItemCommand(
		item.ID(), request.StageTransport, request.PhaseUnknown, time.Now(),
		commands.AdvanceDetails{Destination: kernel.NewUUID(), Vehicle: "TRK-042"})
	require.NoError(t, err)

	requestRepo := new(MockRequestRepository)
	residueRepo := new(MockResidueRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RequestRepository").Return(requestRepo)
	uow.On("ResidueRepository").Return(residueRepo)
	requestRepo.On("GetLineItem", ctx, item.ID()).Return(item, nil).Once()
	residueRepo.On("Get", ctx, kilograms.ID()).Return(kilograms, nil).Once()
	residueRepo.On("Get", ctx, volumetric.ID()).Return(volumetric, nil).Once()
	residueRepo.On("Update", ctx, mock.AnythingOfType("*residue.Residue")).Return(nil).Maybe()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := newAdvanceHandler(t, uow, new(MockBillingNotifier))
	err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, kernel.ErrUnitMismatch)
	requestRepo.AssertNotCalled(t, "UpdateLineItem", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestAdvanceLineItemCommandHandler_Handle_ProcessingCompletesOrderAndNotifiesBilling(t *testing.T) {
	ctx := t.Context()
	r := generatedResidue(t, "100")
	storeAt := kernel.NewUUID()

	// Bring the residue to Stored so Processing can hand it over.
	ev, err := residueStorageEvent(r, storeAt)
	require.NoError(t, err)
	_, err = r.Apply(ev)
	require.NoError(t, err)

	item := lineItemAt(t, r.ID(), request.StageReception, request.PhaseExecution)
	start := time.Now()
	open, err := request.NewOrder(
		kernel.NewUUID(), item.ID(), "TRK-042", kernel.NewUUID(),
		start, start.Add(6*time.Hour))
	require.NoError(t, err)

	cmd, err := commands.NewAdvanceLineItemCommand(
		item.ID(), request.StageProcessing, request.PhaseUnknown, time.Now(),
		commands.AdvanceDetails{Destination: kernel.NewUUID()})
	require.NoError(t, err)

	requestRepo := new(MockRequestRepository)
	residueRepo := new(MockResidueRepository)
	billing := new(MockBillingNotifier)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("RequestRepository").Return(requestRepo)
	uow.On("ResidueRepository").Return(residueRepo)
	requestRepo.On("GetLineItem", ctx, item.ID()).Return(item, nil).Once()
	residueRepo.On("Get", ctx, r.ID()).Return(r, nil).Once()
	residueRepo.On("Update", ctx, mock.AnythingOfType("*residue.Residue")).Return(nil).Once()
	requestRepo.On("GetOrdersByLineItem", ctx, item.ID()).
		Return([]*request.Order{open}, nil).Once()
	requestRepo.On("UpdateOrder", ctx, open).Return(nil).Once()
	requestRepo.On("UpdateLineItem", ctx, item).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	billing.On("ManagementRecordCompleted", ctx,
		mock.AnythingOfType("request.ManagementRecord")).Once()

	handler := newAdvanceHandler(t, uow, billing)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, open.IsCompleted())
	billing.AssertExpectations(t)
}
