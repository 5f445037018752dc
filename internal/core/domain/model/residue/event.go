package residue

import (
	"errors"
	"fmt"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

// ErrEventIsNotConstructed is returned when an Event was not created through
// the NewEvent constructor.
var ErrEventIsNotConstructed = errors.New("Event must be created via NewEvent constructor")

// Event is an immutable custody record appended to a residue's event log.
//
// Invariants:
//   - The event id doubles as the idempotency key under at-least-once delivery.
//   - The declared fromStatus must equal the residue's status immediately
//     before application (checked in Residue.Apply).
//   - The (fromStatus, operationKind, toStatus) triple must be present in the
//     legal-transition table.
//   - Handover events must declare the target status fixed by the
//     counterparty kind.
//   - Adjustment events never change status (fromStatus == toStatus).
type Event struct { //nolint:recvcheck //using for validation
	id         kernel.UUID
	fromStatus Status
	toStatus   Status
	occurredAt time.Time
	operation  Operation

	guard guard.ConstructorGuard
}

// NewEvent creates a custody event. The operation payload determines the
// operation kind; fromStatus and toStatus declare the expected transition.
// Structural rules that do not depend on the aggregate's current state are
// validated here; state-dependent rules are validated in Residue.Apply.
func NewEvent(
	id kernel.UUID,
	fromStatus Status,
	toStatus Status,
	occurredAt time.Time,
	operation Operation,
) (Event, error) {
	event := Event{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		event.setID(id),
		event.setStatuses(fromStatus, toStatus, operation),
		event.setOccurredAt(occurredAt),
		event.setOperation(operation),
	); err != nil {
		return Event{}, err
	}

	return event, nil
}

// Validate ensures the event was created through the constructor.
func (e Event) Validate() error {
	return e.guard.Validate(ErrEventIsNotConstructed)
}

// EventID implements kernel.Event.
func (e Event) EventID() kernel.UUID {
	return e.id
}

// OccurredAt implements kernel.Event.
func (e Event) OccurredAt() time.Time {
	return e.occurredAt
}

// FromStatus returns the status the residue must hold before application.
func (e Event) FromStatus() Status {
	return e.fromStatus
}

// ToStatus returns the status the residue assumes after application.
func (e Event) ToStatus() Status {
	return e.toStatus
}

// Operation returns the polymorphic operation payload.
func (e Event) Operation() Operation {
	return e.operation
}

// Kind returns the operation kind of the payload.
func (e Event) Kind() OperationKind {
	if e.operation == nil {
		return OperationUnknown
	}
	return e.operation.Kind()
}

func (e *Event) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	e.id = id
	return nil
}

func (e *Event) setStatuses(from Status, to Status, operation Operation) error {
	if operation == nil {
		return errs.NewValueIsRequiredError("operation")
	}

	if operation.Kind() == Generation {
		if from != StatusUnknown {
			return errs.NewValueIsInvalidErrorWithCause("fromStatus is invalid",
				fmt.Errorf("generation events start from no status, got %s", from))
		}
	} else if err := from.Validate(); err != nil {
		return err
	}

	if err := to.Validate(); err != nil {
		return err
	}

	switch op := operation.(type) {
	case AdjustmentOp:
		if from != to {
			return errs.NewValueIsInvalidErrorWithCause("toStatus is invalid",
				fmt.Errorf("adjustments keep status, declared %s -> %s", from, to))
		}
	case HandoverOp:
		if want := op.Counterparty.TargetStatus(); to != want {
			return errs.NewValueIsInvalidErrorWithCause("toStatus is invalid",
				fmt.Errorf("handover to %s must declare status %s, got %s",
					op.Counterparty, want, to))
		}
	}

	e.fromStatus = from
	e.toStatus = to
	return nil
}

func (e *Event) setOccurredAt(occurredAt time.Time) error {
	if occurredAt.IsZero() {
		return errs.NewValueIsRequiredError("occurredAt")
	}
	e.occurredAt = occurredAt
	return nil
}

func (e *Event) setOperation(operation Operation) error {
	if operation == nil {
		return errs.NewValueIsRequiredError("operation")
	}
	if err := operation.Validate(); err != nil {
		return err
	}
	e.operation = operation
	return nil
}
