package balance

import (
	"errors"

	"github.com/shopspring/decimal"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/residue"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

// AggregateKind names the balance read model in custody errors.
const AggregateKind = "balance"

// ErrBalanceIsNotConstructed is returned when using an improperly
// initialized Balance.
var ErrBalanceIsNotConstructed = errors.New(
	"Balance must be created via NewBalance or RestoreBalance constructor")

// Movement is one custody event projected onto a balance row: material of
// the given amount moved from one status bucket to another.
//
// From is StatusUnknown when material enters the inventory from outside
// (generation). When From equals To the movement is an adjustment and Amount
// is the signed quantity difference; otherwise Amount is non-negative.
type Movement struct {
	EventID kernel.UUID
	Seq     int64
	From    residue.Status
	To      residue.Status
	Amount  decimal.Decimal
	Unit    kernel.Unit
}

// Validate checks the movement's identifiers and amount.
func (m Movement) Validate() error {
	if err := errors.Join(m.EventID.Validate(), m.Unit.Validate()); err != nil {
		return err
	}
	if m.Seq <= 0 {
		return errs.NewValueIsRequiredError("seq")
	}
	if m.From != m.To && m.Amount.IsNegative() {
		return errs.NewValueIsInvalidError("movement amount must not be negative")
	}
	return nil
}

// Balance is the eventually consistent inventory row for one
// (owner, facility, waste type) combination. Buckets hold the summed
// quantity currently in each custody status; the checkpoint and last-applied
// event id make incremental projection idempotent under re-delivery.
//
// Balances are a read model: the event log stays the source of truth, and a
// strongly consistent snapshot is obtained by replaying it, not by reading
// this row.
type Balance struct {
	owner       kernel.UUID
	facility    kernel.UUID
	wasteTypeID kernel.UUID
	unit        kernel.Unit

	generated decimal.Decimal
	inTransit decimal.Decimal
	stored    decimal.Decimal
	treated   decimal.Decimal
	disposed  decimal.Decimal

	checkpoint  int64
	lastApplied kernel.UUID
	version     int

	guard guard.ConstructorGuard
}

// NewBalance creates an empty balance row.
func NewBalance(owner, facility, wasteTypeID kernel.UUID, unit kernel.Unit) (*Balance, error) {
	return RestoreBalance(owner, facility, wasteTypeID, unit,
		Buckets{}, 0, kernel.UUID{}, 1)
}

// Buckets carries the five sub-quantity buckets of a balance row.
type Buckets struct {
	Generated decimal.Decimal
	InTransit decimal.Decimal
	Stored    decimal.Decimal
	Treated   decimal.Decimal
	Disposed  decimal.Decimal
}

// RestoreBalance reconstructs a balance row from persistent storage.
func RestoreBalance(
	owner, facility, wasteTypeID kernel.UUID,
	unit kernel.Unit,
	buckets Buckets,
	checkpoint int64,
	lastApplied kernel.UUID,
	version int,
) (*Balance, error) {
	if err := errors.Join(
		owner.Validate(),
		facility.Validate(),
		wasteTypeID.Validate(),
		unit.Validate(),
	); err != nil {
		return nil, err
	}
	if checkpoint < 0 {
		return nil, errs.NewValueIsInvalidError("checkpoint must not be negative")
	}
	if version < 1 {
		return nil, errs.NewVersionIsInvalidError("balance version")
	}

	return &Balance{
		owner:       owner,
		facility:    facility,
		wasteTypeID: wasteTypeID,
		unit:        unit,
		generated:   buckets.Generated,
		inTransit:   buckets.InTransit,
		stored:      buckets.Stored,
		treated:     buckets.Treated,
		disposed:    buckets.Disposed,
		checkpoint:  checkpoint,
		lastApplied: lastApplied,
		version:     version,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Balance instance was properly constructed.
func (b *Balance) Validate() error {
	if b == nil {
		return ErrBalanceIsNotConstructed
	}
	return b.guard.Validate(ErrBalanceIsNotConstructed)
}

// Owner returns the owning party.
func (b *Balance) Owner() kernel.UUID { return b.owner }

// Facility returns the facility the inventory sits at.
func (b *Balance) Facility() kernel.UUID { return b.facility }

// WasteTypeID returns the waste-type reference.
func (b *Balance) WasteTypeID() kernel.UUID { return b.wasteTypeID }

// Unit returns the measurement unit of all buckets.
func (b *Balance) Unit() kernel.Unit { return b.unit }

// BucketAmounts returns the current bucket values.
func (b *Balance) BucketAmounts() Buckets {
	return Buckets{
		Generated: b.generated,
		InTransit: b.inTransit,
		Stored:    b.stored,
		Treated:   b.treated,
		Disposed:  b.disposed,
	}
}

// Checkpoint returns the sequence number of the last projected event.
func (b *Balance) Checkpoint() int64 { return b.checkpoint }

// LastApplied returns the id of the last projected event.
func (b *Balance) LastApplied() kernel.UUID { return b.lastApplied }

// Version returns the optimistic concurrency token.
func (b *Balance) Version() int { return b.version }

// Apply projects a movement onto the buckets. Re-processing is detected by
// the sequence checkpoint and the last-applied event id; an already-applied
// movement is a no-op returning false, never a double count.
func (b *Balance) Apply(mv Movement) (bool, error) {
	if err := b.Validate(); err != nil {
		return false, err
	}
	if err := mv.Validate(); err != nil {
		return false, err
	}
	if mv.Unit != b.unit {
		return false, kernel.ErrUnitMismatch
	}

	if mv.Seq <= b.checkpoint || mv.EventID.IsEqual(b.lastApplied) {
		return false, nil
	}

	if mv.From == mv.To {
		if bucket := b.bucketRef(mv.To); bucket != nil {
			*bucket = bucket.Add(mv.Amount)
		}
	} else {
		if bucket := b.bucketRef(mv.From); bucket != nil {
			*bucket = bucket.Sub(mv.Amount)
		}
		if bucket := b.bucketRef(mv.To); bucket != nil {
			*bucket = bucket.Add(mv.Amount)
		}
	}

	b.checkpoint = mv.Seq
	b.lastApplied = mv.EventID
	b.version++

	return true, nil
}

// bucketRef maps a custody status to its bucket. Statuses that end the
// tracked inventory (Transformed, Consumed) have no bucket: material in them
// has left this row.
func (b *Balance) bucketRef(status residue.Status) *decimal.Decimal {
	switch status {
	case residue.Generated:
		return &b.generated
	case residue.InTransit:
		return &b.inTransit
	case residue.Stored:
		return &b.stored
	case residue.Treated:
		return &b.treated
	case residue.Disposed:
		return &b.disposed
	default:
		return nil
	}
}
