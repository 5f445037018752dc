package queries

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/residue"
	"custody/internal/pkg/guard"
)

var ErrGetResidueHistoryQueryIsNotConstructed = errors.New(
	"GetResidueHistoryQuery must be created via NewGetResidueHistoryQuery constructor",
)

// GetResidueHistoryQuery retrieves the full custody trail of one residue:
// every event from generation onward, in the order it was recorded.
type GetResidueHistoryQuery struct {
	residueID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetResidueHistoryQuery creates a query for the residue's custody trail.
func NewGetResidueHistoryQuery(residueID kernel.UUID) (GetResidueHistoryQuery, error) {
	if err := residueID.Validate(); err != nil {
		return GetResidueHistoryQuery{}, err
	}

	return GetResidueHistoryQuery{
		residueID: residueID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetResidueHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetResidueHistoryQueryIsNotConstructed)
}

// ResidueID returns the residue whose history is requested.
func (q GetResidueHistoryQuery) ResidueID() kernel.UUID {
	return q.residueID
}

// GetResidueHistoryQueryResponse is one entry of the custody trail.
type GetResidueHistoryQueryResponse struct {
	Seq        int64
	EventID    kernel.UUID
	Kind       residue.OperationKind
	FromStatus residue.Status
	ToStatus   residue.Status
	Amount     decimal.Decimal
	Unit       kernel.Unit
	OccurredAt time.Time
}
