package commands

import (
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/residue"
	"custody/internal/pkg/guard"
)

var ErrApplyResidueEventCommandIsNotConstructed = errors.New(
	"ApplyResidueEventCommand must be created via NewApplyResidueEventCommand constructor",
)

// ApplyResidueEventCommand submits one custody event against an existing
// residue. Re-submitting the same event id is a safe no-op, so offline
// clients can retry freely.
//
// LossReason documents an expected quantity shortfall of a transformation;
// it is ignored for every other operation kind.
type ApplyResidueEventCommand struct { //nolint:recvcheck //using for validation
	residueID  kernel.UUID
	event      residue.Event
	lossReason string

	guard guard.ConstructorGuard
}

// NewApplyResidueEventCommand creates a command to apply a custody event.
func NewApplyResidueEventCommand(
	residueID kernel.UUID,
	event residue.Event,
	lossReason string,
) (ApplyResidueEventCommand, error) {
	cmd := ApplyResidueEventCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setResidueID(residueID),
		cmd.setEvent(event),
	); err != nil {
		return ApplyResidueEventCommand{}, err
	}
	cmd.lossReason = lossReason

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ApplyResidueEventCommand) Validate() error {
	return c.guard.Validate(ErrApplyResidueEventCommandIsNotConstructed)
}

// ResidueID returns the target residue.
func (c ApplyResidueEventCommand) ResidueID() kernel.UUID {
	return c.residueID
}

// Event returns the custody event to apply.
func (c ApplyResidueEventCommand) Event() residue.Event {
	return c.event
}

// LossReason returns the documented shortfall reason, empty when none.
func (c ApplyResidueEventCommand) LossReason() string {
	return c.lossReason
}

func (c *ApplyResidueEventCommand) setResidueID(residueID kernel.UUID) error {
	if err := residueID.Validate(); err != nil {
		return err
	}
	c.residueID = residueID
	return nil
}

func (c *ApplyResidueEventCommand) setEvent(event residue.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	c.event = event
	return nil
}
