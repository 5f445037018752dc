package commands

import (
	"context"

	"custody/internal/core/domain/model/residue"
	"custody/internal/core/domain/services"
	"custody/internal/core/ports"
	"custody/internal/pkg/keylock"
)

// ApplyResidueEventCommandHandler folds a submitted custody event into its
// residue under the concurrency discipline of the custody core: the
// per-aggregate keylock serializes load-apply-persist for one residue, the
// repository's optimistic version check catches races with other processes,
// and the transformation path is gated by the conservation engine.
//
// New party or facility references introduced by the event are resolved
// against the directory before the event is accepted.
type ApplyResidueEventCommandHandler struct {
	uowFactory   ResidueUoWFactory
	directory    ports.Directory
	conservation services.ConservationEngine
	locks        *keylock.KeyLock
}

// NewApplyResidueEventCommandHandler creates a handler for custody event
// application.
func NewApplyResidueEventCommandHandler(
	uowFactory ResidueUoWFactory,
	directory ports.Directory,
	conservation services.ConservationEngine,
	locks *keylock.KeyLock,
) ApplyResidueEventCommandHandler {
	return ApplyResidueEventCommandHandler{
		uowFactory:   uowFactory,
		directory:    directory,
		conservation: conservation,
		locks:        locks,
	}
}

// Handle applies the event and returns the refreshed read model. A
// re-submitted event id returns the prior result with AlreadyApplied set.
// Cancellation is honored up to the commit; after commit the event is
// irreversible and corrections require a compensating event.
func (h *ApplyResidueEventCommandHandler) Handle(
	ctx context.Context,
	cmd ApplyResidueEventCommand,
) (residue.ApplyResult, error) {
	if err := cmd.Validate(); err != nil {
		return residue.ApplyResult{}, err
	}

	if err := h.resolveReferences(ctx, cmd.Event()); err != nil {
		return residue.ApplyResult{}, err
	}

	h.locks.Lock(cmd.ResidueID().String())
	defer h.locks.Unlock(cmd.ResidueID().String())

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return residue.ApplyResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ResidueRepository()

	aggregate, err := repo.Get(ctx, cmd.ResidueID())
	if err != nil {
		return residue.ApplyResult{}, err
	}

	if op, ok := cmd.Event().Operation().(residue.TransformationOp); ok {
		if err = h.conservation.ValidateTransformation(
			aggregate.ID(), aggregate.Quantity(), op, cmd.LossReason()); err != nil {
			return residue.ApplyResult{}, err
		}
	}

	result, err := aggregate.Apply(cmd.Event())
	if err != nil {
		return residue.ApplyResult{}, err
	}

	if result.AlreadyApplied {
		return result, nil
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return residue.ApplyResult{}, err
	}

	if err = ctx.Err(); err != nil {
		return residue.ApplyResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return residue.ApplyResult{}, err
	}

	return result, nil
}

// resolveReferences validates the party and facility references an operation
// introduces. References already on the aggregate were validated when they
// entered.
func (h *ApplyResidueEventCommandHandler) resolveReferences(
	ctx context.Context,
	event residue.Event,
) error {
	switch op := event.Operation().(type) {
	case residue.RelocationOp:
		_, err := h.directory.ResolveFacility(ctx, op.ToLocation)
		return err
	case residue.TransferOp:
		_, err := h.directory.ResolveParty(ctx, op.ToOwner)
		return err
	case residue.StorageOp:
		_, err := h.directory.ResolveFacility(ctx, op.Location)
		return err
	case residue.HandoverOp:
		_, err := h.directory.ResolveParty(ctx, op.CounterpartyID)
		return err
	default:
		return nil
	}
}
