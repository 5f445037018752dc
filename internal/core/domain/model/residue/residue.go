package residue

import (
	"errors"

	"custody/internal/core/domain/model/kernel"
)

// AggregateKind names this aggregate in custody errors.
const AggregateKind = "residue"

// ErrResidueIsNotConstructed is returned when a Residue instance was not
// created through NewResidue or RestoreResidue.
var ErrResidueIsNotConstructed = errors.New(
	"Residue must be created via NewResidue or RestoreResidue constructor")

// Residue is a traceable unit of waste and the aggregate root of the custody
// chain. Its status, quantity, owner, and location are derivable at any time
// by replaying the event log from the initial generation event; the cached
// fields exist only as a read model for callers that must not replay.
//
// Invariants:
//   - Quantity is never negative.
//   - Status is always the fold of the event log.
//   - Events are immutable once appended; a residue is never hard-deleted,
//     terminal statuses (Disposed, Consumed) end the chain instead.
//   - Mutation happens only through Apply.
type Residue struct {
	id          kernel.UUID
	wasteTypeID kernel.UUID
	quantity    kernel.Quantity
	status      Status
	owner       kernel.UUID
	location    kernel.UUID
	version     int
	log         *kernel.EventLog[Event]

	isConstructed bool
}

// ApplyResult is the read model returned by Apply so that callers get the
// updated fields without replaying the log.
type ApplyResult struct {
	Status         Status
	Quantity       kernel.Quantity
	Owner          kernel.UUID
	Location       kernel.UUID
	Version        int
	AlreadyApplied bool
}

// NewResidue creates a residue from its first generation event.
// A residue exists solely through generation: the event's operation must be a
// GenerationOp and its declared transition must be the initial one.
func NewResidue(id kernel.UUID, generation Event) (*Residue, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := generation.Validate(); err != nil {
		return nil, err
	}

	op, ok := generation.Operation().(GenerationOp)
	if !ok {
		return nil, kernel.NewInvalidTransitionError(AggregateKind, id,
			StatusUnknown.String(), generation.Kind().String(), generation.ToStatus().String())
	}
	if !StatusUnknown.CanTransition(Generation, generation.ToStatus()) {
		return nil, kernel.NewInvalidTransitionError(AggregateKind, id,
			StatusUnknown.String(), Generation.String(), generation.ToStatus().String())
	}

	r := &Residue{
		id:            id,
		wasteTypeID:   op.WasteTypeID,
		quantity:      op.Quantity,
		status:        generation.ToStatus(),
		owner:         op.Owner,
		location:      op.Location,
		version:       1,
		log:           kernel.NewEventLog[Event](),
		isConstructed: true,
	}
	r.log.Append(generation)

	return r, nil
}

// RestoreResidue rebuilds a residue by replaying its persisted event log from
// empty. Replay is deterministic and side-effect-free: the same sequence of
// events always yields the same state. A log that cannot be folded into a
// consistent state is reported as corrupt, never silently patched.
func RestoreResidue(id kernel.UUID, events []Event) (*Residue, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, kernel.NewCorruptEventLogError(AggregateKind, id, 0, "event log is empty")
	}

	r, err := NewResidue(id, events[0])
	if err != nil {
		return nil, kernel.NewCorruptEventLogError(AggregateKind, id, 0, err.Error())
	}

	for i, event := range events[1:] {
		if _, applyErr := r.Apply(event); applyErr != nil {
			return nil, kernel.NewCorruptEventLogError(AggregateKind, id, int64(i+1), applyErr.Error())
		}
	}

	return r, nil
}

// Validate ensures the Residue instance was properly constructed.
func (r *Residue) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrResidueIsNotConstructed
	}
	return nil
}

// ID returns the residue's unique identifier.
func (r *Residue) ID() kernel.UUID {
	return r.id
}

// WasteTypeID returns the waste-type reference.
func (r *Residue) WasteTypeID() kernel.UUID {
	return r.wasteTypeID
}

// Quantity returns the current quantity read model.
func (r *Residue) Quantity() kernel.Quantity {
	return r.quantity
}

// Status returns the current custody status.
func (r *Residue) Status() Status {
	return r.status
}

// Owner returns the current owning party.
func (r *Residue) Owner() kernel.UUID {
	return r.owner
}

// Location returns the current location.
func (r *Residue) Location() kernel.UUID {
	return r.location
}

// Version returns the optimistic concurrency token. It increases by one per
// applied event; repositories compare-and-swap on it.
func (r *Residue) Version() int {
	return r.version
}

// Events returns the ordered event log in append order.
func (r *Residue) Events() []Event {
	return r.log.Events()
}

// HasApplied reports whether an event with the given id is already in the log.
func (r *Residue) HasApplied(eventID kernel.UUID) bool {
	return r.log.Contains(eventID)
}

// IsEqual compares two residues by identifier.
func (r *Residue) IsEqual(other *Residue) bool {
	return other != nil && r.id.IsEqual(other.id)
}

// Apply folds a custody event into the residue.
//
// Application order:
//  1. Idempotency: an event id already in the log is a no-op returning the
//     current read model with AlreadyApplied set rather than an error,
//     because upstream clients retry under at-least-once delivery.
//  2. Optimistic check: the declared fromStatus must equal the current status.
//  3. Table check: the (from, kind, to) triple must be legal.
//  4. Fold: update quantity/owner/location per the operation payload, set the
//     new status, append to the log, bump the version.
//
// On rejection the residue is left untouched.
func (r *Residue) Apply(event Event) (ApplyResult, error) {
	if err := r.Validate(); err != nil {
		return ApplyResult{}, err
	}
	if err := event.Validate(); err != nil {
		return ApplyResult{}, err
	}

	if r.log.Contains(event.EventID()) {
		return r.readModel(true), nil
	}

	if event.Kind() == Generation {
		return ApplyResult{}, kernel.NewInvalidTransitionError(AggregateKind, r.id,
			r.status.String(), Generation.String(), event.ToStatus().String())
	}

	if event.FromStatus() != r.status {
		return ApplyResult{}, kernel.NewInvalidTransitionError(AggregateKind, r.id,
			event.FromStatus().String(), event.Kind().String(), event.ToStatus().String())
	}

	if !r.status.CanTransition(event.Kind(), event.ToStatus()) {
		return ApplyResult{}, kernel.NewInvalidTransitionError(AggregateKind, r.id,
			r.status.String(), event.Kind().String(), event.ToStatus().String())
	}

	if err := r.fold(event); err != nil {
		return ApplyResult{}, err
	}

	r.status = event.ToStatus()
	r.log.Append(event)
	r.version++

	return r.readModel(false), nil
}

// fold mutates the non-status read-model fields for the given operation.
func (r *Residue) fold(event Event) error {
	switch op := event.Operation().(type) {
	case RelocationOp:
		r.location = op.ToLocation
	case TransferOp:
		r.owner = op.ToOwner
	case StorageOp:
		r.location = op.Location
	case AdjustmentOp:
		r.quantity = op.NewQuantity
	case HandoverOp:
		r.owner = op.CounterpartyID
	case TransformationOp:
		// Input keeps its recorded quantity; the outputs become new
		// residues created by the orchestrator from the declared outputs.
	default:
		return kernel.NewInvalidTransitionError(AggregateKind, r.id,
			r.status.String(), event.Kind().String(), event.ToStatus().String())
	}
	return nil
}

func (r *Residue) readModel(alreadyApplied bool) ApplyResult {
	return ApplyResult{
		Status:         r.status,
		Quantity:       r.quantity,
		Owner:          r.owner,
		Location:       r.location,
		Version:        r.version,
		AlreadyApplied: alreadyApplied,
	}
}
