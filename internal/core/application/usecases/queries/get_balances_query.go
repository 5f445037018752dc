package queries

import (
	"errors"

	"github.com/shopspring/decimal"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/guard"
)

var ErrGetBalancesQueryIsNotConstructed = errors.New(
	"GetBalancesQuery must be created via NewGetBalancesQuery constructor",
)

// GetBalancesQuery retrieves balance rows from the projection. Owner and
// facility filters are optional; a zero UUID means no filter on that axis.
//
// The projection is eventually consistent with the custody event log.
// Callers needing an exact snapshot replay the residue history instead.
type GetBalancesQuery struct {
	owner    kernel.UUID
	facility kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetBalancesQuery creates a query for balance rows. Pass zero UUIDs to
// skip filtering by owner or facility.
func NewGetBalancesQuery(owner, facility kernel.UUID) GetBalancesQuery {
	return GetBalancesQuery{
		owner:    owner,
		facility: facility,
		guard:    guard.NewConstructorGuard(),
	}
}

// Validate ensures the query was created through the constructor.
func (q GetBalancesQuery) Validate() error {
	return q.guard.Validate(ErrGetBalancesQueryIsNotConstructed)
}

// Owner returns the owner filter, zero when unfiltered.
func (q GetBalancesQuery) Owner() kernel.UUID {
	return q.owner
}

// Facility returns the facility filter, zero when unfiltered.
func (q GetBalancesQuery) Facility() kernel.UUID {
	return q.facility
}

// HasOwner reports whether the owner filter is set.
func (q GetBalancesQuery) HasOwner() bool {
	return !q.owner.IsZero()
}

// HasFacility reports whether the facility filter is set.
func (q GetBalancesQuery) HasFacility() bool {
	return !q.facility.IsZero()
}

// GetBalancesQueryResponse is one balance row: the quantity of a waste type
// an owner holds at a facility, broken down by custody status.
type GetBalancesQueryResponse struct {
	Owner       kernel.UUID
	Facility    kernel.UUID
	WasteTypeID kernel.UUID
	Unit        kernel.Unit

	Generated decimal.Decimal
	InTransit decimal.Decimal
	Stored    decimal.Decimal
	Treated   decimal.Decimal
	Disposed  decimal.Decimal

	Checkpoint int64
}
