package commands

import (
	"errors"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/request"
	"custody/internal/core/domain/model/residue"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

var (
	ErrAdvanceLineItemCommandIsNotConstructed = errors.New(
		"AdvanceLineItemCommand must be created via NewAdvanceLineItemCommand constructor",
	)
	// ErrNoAdvanceTarget is returned when neither a target stage nor a
	// target phase was requested.
	ErrNoAdvanceTarget = errors.New("advance requires a target stage, a target phase, or both")
)

// AdvanceDetails carries the execution data an advance may need: where the
// residues go and on what vehicle for stage advances, scheduling data for
// the order created on entering the Execution phase, and declared outputs
// plus loss reason for transformations.
type AdvanceDetails struct {
	Destination kernel.UUID
	Vehicle     string
	Responsible kernel.UUID
	WindowStart time.Time
	WindowEnd   time.Time
	Outputs     []residue.TransformationOutput
	LossReason  string
}

// AdvanceLineItemCommand moves a request line item along one or both
// progress axes. Both axes are validated independently; the whole advance is
// all-or-nothing, including the custody events it derives.
type AdvanceLineItemCommand struct { //nolint:recvcheck //using for validation
	lineItemID  kernel.UUID
	targetStage request.Stage
	targetPhase request.Phase
	occurredAt  time.Time
	details     AdvanceDetails

	guard guard.ConstructorGuard
}

// NewAdvanceLineItemCommand creates a command to advance a line item.
// StageUnknown and PhaseUnknown mean the corresponding axis is not being
// advanced; at least one axis must be.
func NewAdvanceLineItemCommand(
	lineItemID kernel.UUID,
	targetStage request.Stage,
	targetPhase request.Phase,
	occurredAt time.Time,
	details AdvanceDetails,
) (AdvanceLineItemCommand, error) {
	cmd := AdvanceLineItemCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setLineItemID(lineItemID),
		cmd.setTargets(targetStage, targetPhase),
		cmd.setOccurredAt(occurredAt),
	); err != nil {
		return AdvanceLineItemCommand{}, err
	}
	cmd.details = details

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AdvanceLineItemCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceLineItemCommandIsNotConstructed)
}

// LineItemID returns the target line item.
func (c AdvanceLineItemCommand) LineItemID() kernel.UUID {
	return c.lineItemID
}

// TargetStage returns the requested stage, StageUnknown when the stage axis
// is not being advanced.
func (c AdvanceLineItemCommand) TargetStage() request.Stage {
	return c.targetStage
}

// HasTargetStage reports whether the stage axis is being advanced.
func (c AdvanceLineItemCommand) HasTargetStage() bool {
	return c.targetStage != request.StageUnknown
}

// TargetPhase returns the requested phase, PhaseUnknown when the phase axis
// is not being advanced.
func (c AdvanceLineItemCommand) TargetPhase() request.Phase {
	return c.targetPhase
}

// HasTargetPhase reports whether the phase axis is being advanced.
func (c AdvanceLineItemCommand) HasTargetPhase() bool {
	return c.targetPhase != request.PhaseUnknown
}

// OccurredAt returns the time of the advance.
func (c AdvanceLineItemCommand) OccurredAt() time.Time {
	return c.occurredAt
}

// Details returns the execution data.
func (c AdvanceLineItemCommand) Details() AdvanceDetails {
	return c.details
}

func (c *AdvanceLineItemCommand) setLineItemID(lineItemID kernel.UUID) error {
	if err := lineItemID.Validate(); err != nil {
		return err
	}
	c.lineItemID = lineItemID
	return nil
}

func (c *AdvanceLineItemCommand) setTargets(stage request.Stage, phase request.Phase) error {
	if stage == request.StageUnknown && phase == request.PhaseUnknown {
		return ErrNoAdvanceTarget
	}
	if stage != request.StageUnknown {
		if err := stage.Validate(); err != nil {
			return err
		}
	}
	if phase != request.PhaseUnknown {
		if err := phase.Validate(); err != nil {
			return err
		}
	}
	c.targetStage = stage
	c.targetPhase = phase
	return nil
}

func (c *AdvanceLineItemCommand) setOccurredAt(occurredAt time.Time) error {
	if occurredAt.IsZero() {
		return errs.NewValueIsRequiredError("occurredAt")
	}
	c.occurredAt = occurredAt
	return nil
}
