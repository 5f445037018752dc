package commands

import (
	"errors"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

var ErrGenerateResidueCommandIsNotConstructed = errors.New(
	"GenerateResidueCommand must be created via NewGenerateResidueCommand constructor",
)

// GenerateResidueCommand registers a new residue entering the custody chain:
// a quantity of a waste type produced by an owner at a location. It becomes
// the residue's initial generation event.
type GenerateResidueCommand struct { //nolint:recvcheck //using for validation
	residueID   kernel.UUID
	eventID     kernel.UUID
	wasteTypeID kernel.UUID
	quantity    kernel.Quantity
	owner       kernel.UUID
	location    kernel.UUID
	occurredAt  time.Time

	guard guard.ConstructorGuard
}

// NewGenerateResidueCommand creates a command to generate a residue.
// The caller supplies the event id so that offline clients can retry the
// submission idempotently.
func NewGenerateResidueCommand(
	residueID kernel.UUID,
	eventID kernel.UUID,
	wasteTypeID kernel.UUID,
	quantity kernel.Quantity,
	owner kernel.UUID,
	location kernel.UUID,
	occurredAt time.Time,
) (GenerateResidueCommand, error) {
	cmd := GenerateResidueCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setIDs(residueID, eventID, wasteTypeID),
		cmd.setQuantity(quantity),
		cmd.setParties(owner, location),
		cmd.setOccurredAt(occurredAt),
	); err != nil {
		return GenerateResidueCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c GenerateResidueCommand) Validate() error {
	return c.guard.Validate(ErrGenerateResidueCommandIsNotConstructed)
}

// ResidueID returns the identifier for the new residue.
func (c GenerateResidueCommand) ResidueID() kernel.UUID {
	return c.residueID
}

// EventID returns the client-supplied id of the generation event.
func (c GenerateResidueCommand) EventID() kernel.UUID {
	return c.eventID
}

// WasteTypeID returns the waste-type reference.
func (c GenerateResidueCommand) WasteTypeID() kernel.UUID {
	return c.wasteTypeID
}

// Quantity returns the generated quantity.
func (c GenerateResidueCommand) Quantity() kernel.Quantity {
	return c.quantity
}

// Owner returns the producing party.
func (c GenerateResidueCommand) Owner() kernel.UUID {
	return c.owner
}

// Location returns the facility the residue was generated at.
func (c GenerateResidueCommand) Location() kernel.UUID {
	return c.location
}

// OccurredAt returns the generation time.
func (c GenerateResidueCommand) OccurredAt() time.Time {
	return c.occurredAt
}

func (c *GenerateResidueCommand) setIDs(residueID, eventID, wasteTypeID kernel.UUID) error {
	if err := errors.Join(
		residueID.Validate(), eventID.Validate(), wasteTypeID.Validate()); err != nil {
		return err
	}
	c.residueID = residueID
	c.eventID = eventID
	c.wasteTypeID = wasteTypeID
	return nil
}

func (c *GenerateResidueCommand) setQuantity(quantity kernel.Quantity) error {
	if err := quantity.Validate(); err != nil {
		return err
	}
	c.quantity = quantity
	return nil
}

func (c *GenerateResidueCommand) setParties(owner, location kernel.UUID) error {
	if err := errors.Join(owner.Validate(), location.Validate()); err != nil {
		return err
	}
	c.owner = owner
	c.location = location
	return nil
}

func (c *GenerateResidueCommand) setOccurredAt(occurredAt time.Time) error {
	if occurredAt.IsZero() {
		return errs.NewValueIsRequiredError("occurredAt")
	}
	c.occurredAt = occurredAt
	return nil
}
