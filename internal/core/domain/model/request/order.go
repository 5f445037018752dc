package request

import (
	"errors"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

// Domain errors for order operations.
var (
	// ErrOrderIsNotConstructed is returned when using an improperly
	// initialized Order.
	ErrOrderIsNotConstructed = errors.New(
		"Order must be created via NewOrder or RestoreOrder constructor")
	// ErrManagementRecordIsNotConstructed is returned when using an
	// improperly initialized ManagementRecord.
	ErrManagementRecordIsNotConstructed = errors.New(
		"ManagementRecord must be created via NewManagementRecord constructor")
	// ErrOrderAlreadyCompleted is returned when completing an order twice.
	ErrOrderAlreadyCompleted = errors.New("order is already completed")
)

// ManagementRecord is the immutable record of one executed touch on the
// residues of a line item: what was moved or processed, from where, to
// where, and under which service. It is the payload that becomes a custody
// event, and its completion triggers the billing notification.
type ManagementRecord struct {
	id          kernel.UUID
	orderID     kernel.UUID
	quantity    kernel.Quantity
	origin      kernel.UUID
	destination kernel.UUID
	service     ServiceKind
	completedAt time.Time

	guard guard.ConstructorGuard
}

// NewManagementRecord creates an immutable management record.
func NewManagementRecord(
	id kernel.UUID,
	orderID kernel.UUID,
	quantity kernel.Quantity,
	origin kernel.UUID,
	destination kernel.UUID,
	service ServiceKind,
	completedAt time.Time,
) (ManagementRecord, error) {
	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		quantity.Validate(),
		origin.Validate(),
		destination.Validate(),
		service.Validate(),
	); err != nil {
		return ManagementRecord{}, err
	}
	if completedAt.IsZero() {
		return ManagementRecord{}, errs.NewValueIsRequiredError("completedAt")
	}

	return ManagementRecord{
		id:          id,
		orderID:     orderID,
		quantity:    quantity,
		origin:      origin,
		destination: destination,
		service:     service,
		completedAt: completedAt,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the record was created through the constructor.
func (m ManagementRecord) Validate() error {
	return m.guard.Validate(ErrManagementRecordIsNotConstructed)
}

// ID returns the record's unique identifier.
func (m ManagementRecord) ID() kernel.UUID { return m.id }

// OrderID returns the owning order.
func (m ManagementRecord) OrderID() kernel.UUID { return m.orderID }

// Quantity returns the touched quantity.
func (m ManagementRecord) Quantity() kernel.Quantity { return m.quantity }

// Origin returns the source facility.
func (m ManagementRecord) Origin() kernel.UUID { return m.origin }

// Destination returns the destination facility or site.
func (m ManagementRecord) Destination() kernel.UUID { return m.destination }

// Service returns the service performed.
func (m ManagementRecord) Service() ServiceKind { return m.service }

// CompletedAt returns the execution time.
func (m ManagementRecord) CompletedAt() time.Time { return m.completedAt }

// Order is a scheduled execution unit derived from a line item when it
// enters the Execution phase: a vehicle, a responsible party, and a time
// window. Completion attaches the immutable management record; an order is
// completed at most once.
type Order struct {
	id          kernel.UUID
	lineItemID  kernel.UUID
	vehicle     string
	responsible kernel.UUID
	windowStart time.Time
	windowEnd   time.Time
	record      *ManagementRecord

	guard guard.ConstructorGuard
}

// NewOrder creates a scheduled, not yet executed order.
func NewOrder(
	id kernel.UUID,
	lineItemID kernel.UUID,
	vehicle string,
	responsible kernel.UUID,
	windowStart time.Time,
	windowEnd time.Time,
) (*Order, error) {
	return RestoreOrder(id, lineItemID, vehicle, responsible, windowStart, windowEnd, nil)
}

// RestoreOrder reconstructs an order from persistent storage, including its
// management record when already completed.
func RestoreOrder(
	id kernel.UUID,
	lineItemID kernel.UUID,
	vehicle string,
	responsible kernel.UUID,
	windowStart time.Time,
	windowEnd time.Time,
	record *ManagementRecord,
) (*Order, error) {
	o := &Order{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setLineItemID(lineItemID),
		o.setVehicle(vehicle),
		o.setResponsible(responsible),
		o.setWindow(windowStart, windowEnd),
		o.setRecord(record),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// LineItemID returns the line item the order was derived from.
func (o *Order) LineItemID() kernel.UUID {
	return o.lineItemID
}

// Vehicle returns the assigned vehicle registration.
func (o *Order) Vehicle() string {
	return o.vehicle
}

// Responsible returns the party responsible for execution.
func (o *Order) Responsible() kernel.UUID {
	return o.responsible
}

// WindowStart returns the start of the scheduled execution window.
func (o *Order) WindowStart() time.Time {
	return o.windowStart
}

// WindowEnd returns the end of the scheduled execution window.
func (o *Order) WindowEnd() time.Time {
	return o.windowEnd
}

// Record returns the management record, nil until completion.
func (o *Order) Record() *ManagementRecord {
	return o.record
}

// IsCompleted reports whether the order has been executed.
func (o *Order) IsCompleted() bool {
	return o.record != nil
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// Complete attaches the management record. Completing an already completed
// order fails; the record is immutable once attached.
func (o *Order) Complete(record ManagementRecord) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}
	if o.record != nil {
		return ErrOrderAlreadyCompleted
	}
	if !record.OrderID().IsEqual(o.id) {
		return errs.NewValueIsInvalidError("record does not belong to this order")
	}

	o.record = &record

	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setLineItemID(lineItemID kernel.UUID) error {
	if err := lineItemID.Validate(); err != nil {
		return err
	}
	o.lineItemID = lineItemID
	return nil
}

func (o *Order) setVehicle(vehicle string) error {
	if vehicle == "" {
		return errs.NewValueIsRequiredError("vehicle")
	}
	o.vehicle = vehicle
	return nil
}

func (o *Order) setResponsible(responsible kernel.UUID) error {
	if err := responsible.Validate(); err != nil {
		return err
	}
	o.responsible = responsible
	return nil
}

func (o *Order) setWindow(start time.Time, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return errs.NewValueIsRequiredError("execution window")
	}
	if !end.After(start) {
		return errs.NewValueIsInvalidError("execution window end must be after start")
	}
	o.windowStart = start
	o.windowEnd = end
	return nil
}

func (o *Order) setRecord(record *ManagementRecord) error {
	if record == nil {
		return nil
	}
	if err := record.Validate(); err != nil {
		return err
	}
	o.record = record
	return nil
}
