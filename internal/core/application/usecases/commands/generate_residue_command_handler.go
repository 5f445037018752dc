package commands

import (
	"context"

	"custody/internal/core/domain/model/residue"
	"custody/internal/core/ports"
)

// GenerateResidueCommandHandler creates residue aggregates from their
// generation event. Owner and location references are resolved against the
// directory before the event is accepted.
type GenerateResidueCommandHandler struct {
	uowFactory ResidueUoWFactory
	directory  ports.Directory
}

// NewGenerateResidueCommandHandler creates a handler for residue generation.
func NewGenerateResidueCommandHandler(
	uowFactory ResidueUoWFactory,
	directory ports.Directory,
) GenerateResidueCommandHandler {
	return GenerateResidueCommandHandler{
		uowFactory: uowFactory,
		directory:  directory,
	}
}

// Handle processes the generation command. The new residue and its first
// event are persisted in one transaction.
func (h *GenerateResidueCommandHandler) Handle(
	ctx context.Context,
	cmd GenerateResidueCommand,
) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if _, err := h.directory.ResolveParty(ctx, cmd.Owner()); err != nil {
		return err
	}
	if _, err := h.directory.ResolveFacility(ctx, cmd.Location()); err != nil {
		return err
	}

	generation, err := residue.NewEvent(
		cmd.EventID(),
		residue.StatusUnknown,
		residue.Generated,
		cmd.OccurredAt(),
		residue.GenerationOp{
			WasteTypeID: cmd.WasteTypeID(),
			Quantity:    cmd.Quantity(),
			Owner:       cmd.Owner(),
			Location:    cmd.Location(),
		},
	)
	if err != nil {
		return err
	}

	aggregate, err := residue.NewResidue(cmd.ResidueID(), generation)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.ResidueRepository().Add(ctx, aggregate); err != nil {
		if h.alreadyGenerated(ctx, cmd) {
			return nil
		}
		return err
	}

	return uow.Commit(ctx)
}

// alreadyGenerated reports whether the residue exists with the command's
// generation event already in its log. Clients redeliver generation commands
// under at-least-once semantics, and a redelivery that races the unique
// constraint on the residue row must report success, not a storage error.
// The check reads outside the failed transaction.
func (h *GenerateResidueCommandHandler) alreadyGenerated(
	ctx context.Context,
	cmd GenerateResidueCommand,
) bool {
	existing, err := h.uowFactory.Create().ResidueRepository().Get(ctx, cmd.ResidueID())
	if err != nil {
		return false
	}
	return existing.HasApplied(cmd.EventID())
}
