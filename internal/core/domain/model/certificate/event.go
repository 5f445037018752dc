package certificate

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

// Operation is the payload carried by a certificate event.
type Operation interface {
	Kind() OperationKind
	Validate() error
}

// IssueOp assigns the certificate number and records the issuance window.
// The number is immutable once assigned.
type IssueOp struct {
	Number    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Kind implements Operation.
func (IssueOp) Kind() OperationKind { return Issue }

// Validate implements Operation.
func (op IssueOp) Validate() error {
	if op.Number <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("certificate number is invalid",
			fmt.Errorf("%d is not positive", op.Number))
	}
	if op.IssuedAt.IsZero() {
		return errs.NewValueIsRequiredError("issuedAt")
	}
	if !op.ExpiresAt.IsZero() && !op.ExpiresAt.After(op.IssuedAt) {
		return errs.NewValueIsInvalidError("expiresAt must be after issuedAt")
	}
	return nil
}

// RevokeOp withdraws the document. Requires a non-empty reason for audit.
type RevokeOp struct {
	Reason    string
	RevokedAt time.Time
}

// Kind implements Operation.
func (RevokeOp) Kind() OperationKind { return Revoke }

// Validate implements Operation.
func (op RevokeOp) Validate() error {
	if op.Reason == "" {
		return errs.NewValueIsRequiredError("revocation reason")
	}
	if op.RevokedAt.IsZero() {
		return errs.NewValueIsRequiredError("revokedAt")
	}
	return nil
}

// Event is an immutable lifecycle record appended to a certificate's event
// log. Same shape and idempotent-append semantics as a custody event.
type Event struct { //nolint:recvcheck //using for validation
	id         kernel.UUID
	fromStatus Status
	toStatus   Status
	occurredAt time.Time
	operation  Operation

	guard guard.ConstructorGuard
}

// NewEvent creates a certificate event with the declared transition.
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
		event.setStatuses(fromStatus, toStatus),
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

// FromStatus returns the status the certificate must hold before application.
func (e Event) FromStatus() Status {
	return e.fromStatus
}

// ToStatus returns the status the certificate assumes after application.
func (e Event) ToStatus() Status {
	return e.toStatus
}

// Operation returns the payload.
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

func (e *Event) setStatuses(from Status, to Status) error {
	if err := errors.Join(from.Validate(), to.Validate()); err != nil {
		return err
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
