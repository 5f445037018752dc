package request

import (
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

// LineItemKind names the line-item entity in custody errors.
const LineItemKind = "line item"

// ErrLineItemIsNotConstructed is returned when a LineItem was not created
// through NewLineItem or RestoreLineItem.
var ErrLineItemIsNotConstructed = errors.New(
	"LineItem must be created via NewLineItem or RestoreLineItem constructor")

// LineItem tracks one waste type of a request through the two-axis progress
// model. The stage axis follows the physical flow, the phase axis the
// administrative one; AdvancePhase enforces the stage floor so the paperwork
// can never certify work that has not physically happened.
//
// A line item is its own concurrency unit: it carries an optimistic version
// and repositories compare-and-swap on it independently of sibling items.
type LineItem struct {
	id          kernel.UUID
	requestID   kernel.UUID
	wasteTypeID kernel.UUID
	residueIDs  []kernel.UUID
	service     ServiceKind
	stage       Stage
	phase       Phase
	version     int

	guard guard.ConstructorGuard
}

// NewLineItem creates a line item at (Initiation, Initiation).
func NewLineItem(
	id kernel.UUID,
	requestID kernel.UUID,
	wasteTypeID kernel.UUID,
	residueIDs []kernel.UUID,
	service ServiceKind,
) (*LineItem, error) {
	return RestoreLineItem(id, requestID, wasteTypeID, residueIDs, service,
		StageInitiation, PhaseInitiation, 1)
}

// RestoreLineItem reconstructs a line item from persistent storage.
func RestoreLineItem(
	id kernel.UUID,
	requestID kernel.UUID,
	wasteTypeID kernel.UUID,
	residueIDs []kernel.UUID,
	service ServiceKind,
	stage Stage,
	phase Phase,
	version int,
) (*LineItem, error) {
	item := &LineItem{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		item.setID(id),
		item.setRequestID(requestID),
		item.setWasteTypeID(wasteTypeID),
		item.setResidueIDs(residueIDs),
		item.setService(service),
		item.setProgress(stage, phase),
		item.setVersion(version),
	); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate ensures the LineItem instance was properly constructed.
func (li *LineItem) Validate() error {
	if li == nil {
		return ErrLineItemIsNotConstructed
	}
	return li.guard.Validate(ErrLineItemIsNotConstructed)
}

// ID returns the line item's unique identifier.
func (li *LineItem) ID() kernel.UUID {
	return li.id
}

// RequestID returns the owning request.
func (li *LineItem) RequestID() kernel.UUID {
	return li.requestID
}

// WasteTypeID returns the waste-type reference.
func (li *LineItem) WasteTypeID() kernel.UUID {
	return li.wasteTypeID
}

// ResidueIDs returns the residues tracked by this line item.
func (li *LineItem) ResidueIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), li.residueIDs...)
}

// Service returns the requested service kind.
func (li *LineItem) Service() ServiceKind {
	return li.service
}

// Stage returns the current logistics stage.
func (li *LineItem) Stage() Stage {
	return li.stage
}

// Phase returns the current administrative phase.
func (li *LineItem) Phase() Phase {
	return li.phase
}

// Version returns the optimistic concurrency token.
func (li *LineItem) Version() int {
	return li.version
}

// IsClosed reports whether both axes reached Finalization.
func (li *LineItem) IsClosed() bool {
	return li.stage == StageFinalization && li.phase == PhaseFinalization
}

// IsEqual compares two line items by identifier.
func (li *LineItem) IsEqual(other *LineItem) bool {
	return other != nil && li.id.IsEqual(other.id)
}

// AdvanceStage moves the stage axis to its immediate successor. Skipping or
// moving backwards is an invalid transition. Rejection leaves the item
// untouched.
func (li *LineItem) AdvanceStage(target Stage) error {
	if err := li.Validate(); err != nil {
		return err
	}
	if err := target.Validate(); err != nil {
		return err
	}

	if !li.stage.CanAdvanceTo(target) {
		return kernel.NewInvalidTransitionError(LineItemKind, li.id,
			li.stage.String(), "AdvanceStage", target.String())
	}

	li.stage = target
	li.version++

	return nil
}

// AdvancePhase moves the phase axis to its immediate successor, provided the
// stage has already reached the target phase's floor. An unmet floor is a
// PhaseStageMismatch: recoverable, the caller advances the stage first.
func (li *LineItem) AdvancePhase(target Phase) error {
	if err := li.Validate(); err != nil {
		return err
	}
	if err := target.Validate(); err != nil {
		return err
	}

	if !li.phase.CanAdvanceTo(target) {
		return kernel.NewInvalidTransitionError(LineItemKind, li.id,
			li.phase.String(), "AdvancePhase", target.String())
	}

	if floor, ok := target.RequiredStage(); ok && li.stage < floor {
		return kernel.NewPhaseStageMismatchError(
			li.id, target.String(), li.stage.String(), floor.String())
	}

	li.phase = target
	li.version++

	return nil
}

func (li *LineItem) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	li.id = id
	return nil
}

func (li *LineItem) setRequestID(requestID kernel.UUID) error {
	if err := requestID.Validate(); err != nil {
		return err
	}
	li.requestID = requestID
	return nil
}

func (li *LineItem) setWasteTypeID(wasteTypeID kernel.UUID) error {
	if err := wasteTypeID.Validate(); err != nil {
		return err
	}
	li.wasteTypeID = wasteTypeID
	return nil
}

func (li *LineItem) setResidueIDs(residueIDs []kernel.UUID) error {
	if len(residueIDs) == 0 {
		return errs.NewValueIsRequiredError("residueIDs")
	}
	for _, residueID := range residueIDs {
		if err := residueID.Validate(); err != nil {
			return err
		}
	}
	li.residueIDs = append([]kernel.UUID(nil), residueIDs...)
	return nil
}

func (li *LineItem) setService(service ServiceKind) error {
	if err := service.Validate(); err != nil {
		return err
	}
	li.service = service
	return nil
}

func (li *LineItem) setProgress(stage Stage, phase Phase) error {
	if err := errors.Join(stage.Validate(), phase.Validate()); err != nil {
		return err
	}
	li.stage = stage
	li.phase = phase
	return nil
}

func (li *LineItem) setVersion(version int) error {
	if version < 1 {
		return errs.NewVersionIsInvalidError("line item version")
	}
	li.version = version
	return nil
}
