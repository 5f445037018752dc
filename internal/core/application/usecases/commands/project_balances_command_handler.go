package commands

import (
	"context"
	"errors"

	"custody/internal/core/domain/model/balance"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"
)

// ProjectBalancesCommandHandler is the balance aggregator's work loop body.
// It consumes the custody event stream as a lazy, restartable feed: each
// step reads one batch past the persisted checkpoint, folds every event into
// its balance row, and moves the checkpoint, all in one transaction.
//
// The projection is eventually consistent with custody state by design.
// Readers needing a strongly consistent snapshot replay the event log
// instead.
type ProjectBalancesCommandHandler struct {
	uowFactory BalanceUoWFactory
	stream     ports.ResidueEventStream
}

// NewProjectBalancesCommandHandler creates a handler for projection steps.
func NewProjectBalancesCommandHandler(
	uowFactory BalanceUoWFactory,
	stream ports.ResidueEventStream,
) ProjectBalancesCommandHandler {
	return ProjectBalancesCommandHandler{
		uowFactory: uowFactory,
		stream:     stream,
	}
}

// Handle runs one projection step and returns the number of events
// processed. Zero means the stream is exhausted for now.
func (h *ProjectBalancesCommandHandler) Handle(
	ctx context.Context,
	cmd ProjectBalancesCommand,
) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.BalanceRepository()

	checkpoint, err := repo.GetProjectionCheckpoint(ctx)
	if err != nil {
		return 0, err
	}

	events, err := h.stream.ReadAfter(ctx, checkpoint, cmd.BatchSize())
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	for _, stored := range events {
		if err = h.project(ctx, repo, stored); err != nil {
			return 0, err
		}
	}

	if err = repo.SaveProjectionCheckpoint(ctx, events[len(events)-1].Seq); err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return len(events), nil
}

// project folds one stored event into its balance row, creating the row on
// first contact.
func (h *ProjectBalancesCommandHandler) project(
	ctx context.Context,
	repo ports.BalanceRepository,
	stored ports.StoredResidueEvent,
) error {
	row, err := repo.Get(ctx, stored.Owner, stored.Facility, stored.WasteTypeID)
	if err != nil {
		var notFound *errs.ObjectNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		if row, err = balance.NewBalance(
			stored.Owner, stored.Facility, stored.WasteTypeID, stored.Unit); err != nil {
			return err
		}
	}

	applied, err := row.Apply(balance.Movement{
		EventID: stored.EventID,
		Seq:     stored.Seq,
		From:    stored.FromStatus,
		To:      stored.ToStatus,
		Amount:  stored.Amount,
		Unit:    stored.Unit,
	})
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	return repo.Save(ctx, row)
}
