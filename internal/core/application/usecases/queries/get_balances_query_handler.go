package queries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"custody/internal/core/domain/model/kernel"
)

// GetBalancesQueryHandler reads balance rows straight from the projection
// table. Reads bypass the domain model entirely; the projector is the only
// writer of these rows.
type GetBalancesQueryHandler struct {
	db *gorm.DB
}

// NewGetBalancesQueryHandler creates a handler for balance queries.
func NewGetBalancesQueryHandler(db *gorm.DB) GetBalancesQueryHandler {
	return GetBalancesQueryHandler{db: db}
}

// Handle executes the query. Results are sorted by owner, facility and waste
// type for stable output.
func (h GetBalancesQueryHandler) Handle(
	ctx context.Context,
	query GetBalancesQuery,
) ([]GetBalancesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sql := `
		SELECT
			owner_id,
			facility_id,
			waste_type_id,
			unit,
			generated,
			in_transit,
			stored,
			treated,
			disposed,
			checkpoint
		FROM balances
		WHERE (? OR owner_id = ?)
		  AND (? OR facility_id = ?)
		ORDER BY owner_id, facility_id, waste_type_id
	`

	rows, err := h.db.WithContext(ctx).Raw(sql,
		!query.HasOwner(), query.Owner().Bytes(),
		!query.HasFacility(), query.Facility().Bytes(),
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make([]GetBalancesQueryResponse, 0)

	for rows.Next() {
		var resp GetBalancesQueryResponse
		var ownerID, facilityID, wasteTypeID uuid.UUID
		var unit int

		if err = rows.Scan(
			&ownerID,
			&facilityID,
			&wasteTypeID,
			&unit,
			&resp.Generated,
			&resp.InTransit,
			&resp.Stored,
			&resp.Treated,
			&resp.Disposed,
			&resp.Checkpoint,
		); err != nil {
			return nil, err
		}

		if resp.Owner, err = kernel.UUIDFromBytes(ownerID[:]); err != nil {
			return nil, err
		}
		if resp.Facility, err = kernel.UUIDFromBytes(facilityID[:]); err != nil {
			return nil, err
		}
		if resp.WasteTypeID, err = kernel.UUIDFromBytes(wasteTypeID[:]); err != nil {
			return nil, err
		}
		resp.Unit = kernel.Unit(unit)

		balances = append(balances, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return balances, nil
}
