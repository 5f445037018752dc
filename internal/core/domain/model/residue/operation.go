package residue

import (
	"errors"
	"fmt"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
)

// Operation is the polymorphic payload carried by a custody event.
// Exactly one concrete payload type exists per OperationKind.
type Operation interface {
	// Kind returns the discriminator for this payload.
	Kind() OperationKind

	// Validate checks the payload's own invariants.
	Validate() error
}

// CounterpartyKind classifies the receiving side of a Handover and fixes the
// status the residue assumes afterwards.
type CounterpartyKind int

const (
	// CounterpartyUnknown represents an invalid or undefined counterparty.
	CounterpartyUnknown CounterpartyKind = iota

	// ReceivingFacility accepts the residue into storage.
	ReceivingFacility

	// TreatmentPlant performs treatment on handover.
	TreatmentPlant

	// DisposalSite performs final disposal on handover.
	DisposalSite

	// FinalConsumer takes the residue out of the custody chain.
	FinalConsumer
)

func getCounterpartyStrings() map[CounterpartyKind]string {
	return map[CounterpartyKind]string{
		CounterpartyUnknown: "Unknown",
		ReceivingFacility:   "ReceivingFacility",
		TreatmentPlant:      "TreatmentPlant",
		DisposalSite:        "DisposalSite",
		FinalConsumer:       "FinalConsumer",
	}
}

// Validate checks if the CounterpartyKind is one of the defined kinds.
func (c CounterpartyKind) Validate() error {
	if c <= CounterpartyUnknown || c > FinalConsumer {
		return errs.NewValueIsInvalidErrorWithCause("counterparty kind is invalid",
			fmt.Errorf("%d is not a valid counterparty kind", c))
	}
	return nil
}

// String returns the human-readable name of the counterparty kind.
func (c CounterpartyKind) String() string {
	if s, ok := getCounterpartyStrings()[c]; ok {
		return s
	}
	return "Unknown"
}

// TargetStatus returns the status a residue assumes after a handover to this
// counterparty kind.
func (c CounterpartyKind) TargetStatus() Status {
	switch c {
	case ReceivingFacility:
		return Stored
	case TreatmentPlant:
		return Treated
	case DisposalSite:
		return Disposed
	case FinalConsumer:
		return Consumed
	default:
		return StatusUnknown
	}
}

// GenerationOp creates a residue: waste type, initial quantity, owning party
// and generation location. Always the first operation of a residue's log.
type GenerationOp struct {
	WasteTypeID kernel.UUID
	Quantity    kernel.Quantity
	Owner       kernel.UUID
	Location    kernel.UUID
}

// Kind implements Operation.
func (GenerationOp) Kind() OperationKind { return Generation }

// Validate implements Operation.
func (op GenerationOp) Validate() error {
	return errors.Join(
		op.WasteTypeID.Validate(),
		op.Quantity.Validate(),
		op.Owner.Validate(),
		op.Location.Validate(),
	)
}

// RelocationOp moves the residue from one facility location to another on a
// vehicle.
type RelocationOp struct {
	FromLocation kernel.UUID
	ToLocation   kernel.UUID
	Vehicle      string
}

// Kind implements Operation.
func (RelocationOp) Kind() OperationKind { return Relocation }

// Validate implements Operation.
func (op RelocationOp) Validate() error {
	var vehicleErr error
	if op.Vehicle == "" {
		vehicleErr = errs.NewValueIsRequiredError("vehicle")
	}
	return errors.Join(
		op.FromLocation.Validate(),
		op.ToLocation.Validate(),
		vehicleErr,
	)
}

// TransferOp changes the owning party without moving the residue.
type TransferOp struct {
	FromOwner kernel.UUID
	ToOwner   kernel.UUID
}

// Kind implements Operation.
func (TransferOp) Kind() OperationKind { return Transfer }

// Validate implements Operation.
func (op TransferOp) Validate() error {
	return errors.Join(
		op.FromOwner.Validate(),
		op.ToOwner.Validate(),
	)
}

// StorageOp places the residue at a facility location.
type StorageOp struct {
	Location kernel.UUID
}

// Kind implements Operation.
func (StorageOp) Kind() OperationKind { return Storage }

// Validate implements Operation.
func (op StorageOp) Validate() error {
	return op.Location.Validate()
}

// TransformationOutput is one output residue produced by a transformation.
// The output residue id is declared on the event so that replay creates the
// same aggregates deterministically.
type TransformationOutput struct {
	ResidueID   kernel.UUID
	WasteTypeID kernel.UUID
	Quantity    kernel.Quantity
}

// Validate checks the output's references and quantity.
func (o TransformationOutput) Validate() error {
	return errors.Join(
		o.ResidueID.Validate(),
		o.WasteTypeID.Validate(),
		o.Quantity.Validate(),
	)
}

// TransformationOp decomposes the residue into one or more output residues.
// The conservation engine gates acceptance: the summed output quantity must
// not exceed the input quantity beyond tolerance, and any unexplained
// shortfall requires an accompanying adjustment.
type TransformationOp struct {
	Outputs []TransformationOutput
}

// Kind implements Operation.
func (TransformationOp) Kind() OperationKind { return Transformation }

// Validate implements Operation.
func (op TransformationOp) Validate() error {
	if len(op.Outputs) == 0 {
		return errs.NewValueIsRequiredError("transformation outputs")
	}
	var errList []error
	for _, out := range op.Outputs {
		errList = append(errList, out.Validate())
	}
	return errors.Join(errList...)
}

// AdjustmentOp revises the residue quantity without a matching counter-flow.
// It never changes status and always requires a reason for audit purposes.
type AdjustmentOp struct {
	NewQuantity kernel.Quantity
	Reason      string
}

// Kind implements Operation.
func (AdjustmentOp) Kind() OperationKind { return Adjustment }

// Validate implements Operation.
func (op AdjustmentOp) Validate() error {
	var reasonErr error
	if op.Reason == "" {
		reasonErr = errs.NewValueIsRequiredError("adjustment reason")
	}
	return errors.Join(
		op.NewQuantity.Validate(),
		reasonErr,
	)
}

// HandoverOp passes custody to a counterparty. The counterparty kind fixes
// the resulting status; the declared target status of the carrying event must
// agree with it.
type HandoverOp struct {
	Counterparty   CounterpartyKind
	CounterpartyID kernel.UUID
}

// Kind implements Operation.
func (HandoverOp) Kind() OperationKind { return Handover }

// Validate implements Operation.
func (op HandoverOp) Validate() error {
	return errors.Join(
		op.Counterparty.Validate(),
		op.CounterpartyID.Validate(),
	)
}
