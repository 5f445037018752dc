package services

import (
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/request"
	"custody/internal/core/domain/model/residue"
	"custody/internal/pkg/errs"
)

// StageAdvanceContext carries the execution details a stage advance needs to
// derive its custody event: where the residues are going, on what vehicle,
// and, for transformations, the declared outputs.
type StageAdvanceContext struct {
	OccurredAt  time.Time
	Vehicle     string
	Destination kernel.UUID
	Outputs     []residue.TransformationOutput
	LossReason  string
}

// EventDeriver translates line-item stage advances into custody events on
// the affected residues.
//
// Derivation rules:
//   - Transport derives a Relocation from the residue's current location to
//     the destination on the assigned vehicle.
//   - Reception derives a Handover to the receiving facility.
//   - Processing derives by service kind: Treatment and Disposal hand the
//     residue over to the plant or site, Transformation decomposes it into
//     the declared outputs after the conservation check.
//   - Initiation, Validation, and Finalization are purely administrative and
//     derive nothing.
type EventDeriver struct {
	conservation ConservationEngine
}

// NewEventDeriver creates an EventDeriver gated by the given conservation
// engine.
func NewEventDeriver(conservation ConservationEngine) EventDeriver {
	return EventDeriver{conservation: conservation}
}

// Derive returns the custody event a stage advance emits on the given
// residue, or false when the target stage emits none. The residue is not
// mutated; applying the event is the caller's transaction.
func (d EventDeriver) Derive(
	target request.Stage,
	service request.ServiceKind,
	r *residue.Residue,
	advanceCtx StageAdvanceContext,
) (residue.Event, bool, error) {
	if err := r.Validate(); err != nil {
		return residue.Event{}, false, err
	}

	switch target {
	case request.StageTransport:
		event, err := d.deriveRelocation(r, advanceCtx)
		return event, err == nil, err
	case request.StageReception:
		event, err := d.deriveHandover(r, residue.ReceivingFacility, advanceCtx)
		return event, err == nil, err
	case request.StageProcessing:
		return d.deriveProcessing(service, r, advanceCtx)
	default:
		return residue.Event{}, false, nil
	}
}

func (d EventDeriver) deriveRelocation(
	r *residue.Residue,
	advanceCtx StageAdvanceContext,
) (residue.Event, error) {
	return residue.NewEvent(
		kernel.NewUUID(),
		r.Status(),
		residue.InTransit,
		advanceCtx.OccurredAt,
		residue.RelocationOp{
			FromLocation: r.Location(),
			ToLocation:   advanceCtx.Destination,
			Vehicle:      advanceCtx.Vehicle,
		},
	)
}

func (d EventDeriver) deriveHandover(
	r *residue.Residue,
	counterparty residue.CounterpartyKind,
	advanceCtx StageAdvanceContext,
) (residue.Event, error) {
	return residue.NewEvent(
		kernel.NewUUID(),
		r.Status(),
		counterparty.TargetStatus(),
		advanceCtx.OccurredAt,
		residue.HandoverOp{
			Counterparty:   counterparty,
			CounterpartyID: advanceCtx.Destination,
		},
	)
}

func (d EventDeriver) deriveProcessing(
	service request.ServiceKind,
	r *residue.Residue,
	advanceCtx StageAdvanceContext,
) (residue.Event, bool, error) {
	switch service {
	case request.ServiceTreatment:
		event, err := d.deriveHandover(r, residue.TreatmentPlant, advanceCtx)
		return event, err == nil, err
	case request.ServiceDisposal:
		event, err := d.deriveHandover(r, residue.DisposalSite, advanceCtx)
		return event, err == nil, err
	case request.ServiceTransformation:
		event, err := d.deriveTransformation(r, advanceCtx)
		return event, err == nil, err
	default:
		return residue.Event{}, false, errs.NewValueIsInvalidError("service kind is invalid")
	}
}

func (d EventDeriver) deriveTransformation(
	r *residue.Residue,
	advanceCtx StageAdvanceContext,
) (residue.Event, error) {
	op := residue.TransformationOp{Outputs: advanceCtx.Outputs}

	if err := d.conservation.ValidateTransformation(
		r.ID(), r.Quantity(), op, advanceCtx.LossReason); err != nil {
		return residue.Event{}, err
	}

	return residue.NewEvent(
		kernel.NewUUID(),
		r.Status(),
		residue.Transformed,
		advanceCtx.OccurredAt,
		op,
	)
}
