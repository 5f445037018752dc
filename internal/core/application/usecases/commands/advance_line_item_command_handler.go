package commands

import (
	"context"
	"sort"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/request"
	"custody/internal/core/domain/model/residue"
	"custody/internal/core/domain/services"
	"custody/internal/core/ports"
	"custody/internal/pkg/keylock"
)

// AdvanceLineItemCommandHandler drives the two-axis progress model. A stage
// advance emits the derived custody events on every residue of the line
// item; a phase advance is purely administrative except for entering
// Execution, which creates the scheduled order. Everything a single advance
// touches commits or rolls back as one: if any residue rejects its derived
// event, no stage or phase update is persisted either.
//
// Billing is notified about completed management records only after commit,
// fire-and-forget.
type AdvanceLineItemCommandHandler struct {
	uowFactory AdvanceUoWFactory
	deriver    services.EventDeriver
	billing    ports.BillingNotifier
	locks      *keylock.KeyLock
}

// NewAdvanceLineItemCommandHandler creates a handler for line item advances.
func NewAdvanceLineItemCommandHandler(
	uowFactory AdvanceUoWFactory,
	deriver services.EventDeriver,
	billing ports.BillingNotifier,
	locks *keylock.KeyLock,
) AdvanceLineItemCommandHandler {
	return AdvanceLineItemCommandHandler{
		uowFactory: uowFactory,
		deriver:    deriver,
		billing:    billing,
		locks:      locks,
	}
}

// Handle processes the advance. The stage axis is advanced before the phase
// axis so that a combined call can advance the stage onto a floor and then
// the phase that needs it.
func (h *AdvanceLineItemCommandHandler) Handle(
	ctx context.Context,
	cmd AdvanceLineItemCommand,
) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.locks.Lock(cmd.LineItemID().String())
	defer h.locks.Unlock(cmd.LineItemID().String())

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	item, err := uow.RequestRepository().GetLineItem(ctx, cmd.LineItemID())
	if err != nil {
		return err
	}

	var completed *request.ManagementRecord

	if cmd.HasTargetStage() {
		unlock := h.lockResidues(item.ResidueIDs())
		defer unlock()

		if completed, err = h.advanceStage(ctx, uow, item, cmd); err != nil {
			return err
		}
	}

	if cmd.HasTargetPhase() {
		if err = h.advancePhase(ctx, uow, item, cmd); err != nil {
			return err
		}
	}

	if err = uow.RequestRepository().UpdateLineItem(ctx, item); err != nil {
		return err
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if completed != nil {
		h.billing.ManagementRecordCompleted(ctx, *completed)
	}

	return nil
}

// advanceStage moves the stage axis and applies the derived custody events.
// Entering Processing additionally completes the line item's open order with
// the management record of the executed touch.
func (h *AdvanceLineItemCommandHandler) advanceStage(
	ctx context.Context,
	uow AdvanceUoW,
	item *request.LineItem,
	cmd AdvanceLineItemCommand,
) (*request.ManagementRecord, error) {
	if err := item.AdvanceStage(cmd.TargetStage()); err != nil {
		return nil, err
	}

	residues, err := h.loadResidues(ctx, uow, item)
	if err != nil {
		return nil, err
	}

	advanceCtx := services.StageAdvanceContext{
		OccurredAt:  cmd.OccurredAt(),
		Vehicle:     cmd.Details().Vehicle,
		Destination: cmd.Details().Destination,
		Outputs:     cmd.Details().Outputs,
		LossReason:  cmd.Details().LossReason,
	}

	origin := kernel.UUID{}
	total := kernel.Quantity{}

	for i, aggregate := range residues {
		if i == 0 {
			origin = aggregate.Location()
			total = aggregate.Quantity()
		} else {
			summed, sumErr := total.Add(aggregate.Quantity())
			if sumErr != nil {
				return nil, sumErr
			}
			total = summed
		}

		event, derived, deriveErr := h.deriver.Derive(
			cmd.TargetStage(), item.Service(), aggregate, advanceCtx)
		if deriveErr != nil {
			return nil, deriveErr
		}
		if !derived {
			continue
		}

		if _, applyErr := aggregate.Apply(event); applyErr != nil {
			return nil, applyErr
		}
		if updateErr := uow.ResidueRepository().Update(ctx, aggregate); updateErr != nil {
			return nil, updateErr
		}

		if op, ok := event.Operation().(residue.TransformationOp); ok {
			if spawnErr := h.spawnOutputs(ctx, uow, aggregate, op, cmd.OccurredAt()); spawnErr != nil {
				return nil, spawnErr
			}
		}
	}

	if cmd.TargetStage() != request.StageProcessing {
		return nil, nil
	}

	return h.completeOrder(ctx, uow, item, origin, total, cmd)
}

// lockResidues acquires the keylocks of all residues in deterministic id
// order so concurrent advances over overlapping residue sets never deadlock.
// The returned func releases them in reverse order.
func (h *AdvanceLineItemCommandHandler) lockResidues(ids []kernel.UUID) func() {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		h.locks.Lock(id.String())
	}

	return func() {
		for i := len(ids) - 1; i >= 0; i-- {
			h.locks.Unlock(ids[i].String())
		}
	}
}

func (h *AdvanceLineItemCommandHandler) loadResidues(
	ctx context.Context,
	uow AdvanceUoW,
	item *request.LineItem,
) ([]*residue.Residue, error) {
	ids := item.ResidueIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	residues := make([]*residue.Residue, 0, len(ids))
	for _, id := range ids {
		aggregate, err := uow.ResidueRepository().Get(ctx, id)
		if err != nil {
			return nil, err
		}
		residues = append(residues, aggregate)
	}

	return residues, nil
}

// spawnOutputs creates the residues a transformation declares, generated at
// the input's owner and location.
func (h *AdvanceLineItemCommandHandler) spawnOutputs(
	ctx context.Context,
	uow AdvanceUoW,
	input *residue.Residue,
	op residue.TransformationOp,
	occurredAt time.Time,
) error {
	for _, output := range op.Outputs {
		generation, err := residue.NewEvent(
			kernel.NewUUID(),
			residue.StatusUnknown,
			residue.Generated,
			occurredAt,
			residue.GenerationOp{
				WasteTypeID: output.WasteTypeID,
				Quantity:    output.Quantity,
				Owner:       input.Owner(),
				Location:    input.Location(),
			},
		)
		if err != nil {
			return err
		}

		spawned, err := residue.NewResidue(output.ResidueID, generation)
		if err != nil {
			return err
		}

		if err = uow.ResidueRepository().Add(ctx, spawned); err != nil {
			return err
		}
	}

	return nil
}

// completeOrder attaches the management record of the executed touch to the
// line item's open order and returns it for the billing notification.
// A line item without a scheduled order completes nothing.
func (h *AdvanceLineItemCommandHandler) completeOrder(
	ctx context.Context,
	uow AdvanceUoW,
	item *request.LineItem,
	origin kernel.UUID,
	total kernel.Quantity,
	cmd AdvanceLineItemCommand,
) (*request.ManagementRecord, error) {
	orders, err := uow.RequestRepository().GetOrdersByLineItem(ctx, item.ID())
	if err != nil {
		return nil, err
	}

	for _, open := range orders {
		if open.IsCompleted() {
			continue
		}

		record, recordErr := request.NewManagementRecord(
			kernel.NewUUID(),
			open.ID(),
			total,
			origin,
			cmd.Details().Destination,
			item.Service(),
			cmd.OccurredAt(),
		)
		if recordErr != nil {
			return nil, recordErr
		}

		if completeErr := open.Complete(record); completeErr != nil {
			return nil, completeErr
		}
		if updateErr := uow.RequestRepository().UpdateOrder(ctx, open); updateErr != nil {
			return nil, updateErr
		}

		return &record, nil
	}

	return nil, nil
}

// advancePhase moves the phase axis. Entering Execution schedules the order
// that will carry the physical work.
func (h *AdvanceLineItemCommandHandler) advancePhase(
	ctx context.Context,
	uow AdvanceUoW,
	item *request.LineItem,
	cmd AdvanceLineItemCommand,
) error {
	if err := item.AdvancePhase(cmd.TargetPhase()); err != nil {
		return err
	}

	if cmd.TargetPhase() != request.PhaseExecution {
		return nil
	}

	order, err := request.NewOrder(
		kernel.NewUUID(),
		item.ID(),
		cmd.Details().Vehicle,
		cmd.Details().Responsible,
		cmd.Details().WindowStart,
		cmd.Details().WindowEnd,
	)
	if err != nil {
		return err
	}

	return uow.RequestRepository().AddOrder(ctx, order)
}
