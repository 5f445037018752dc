package queries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/request"
)

// GetOpenRequestsQueryHandler lists line items that still need work, joined
// with their request header for dispatching context.
type GetOpenRequestsQueryHandler struct {
	db *gorm.DB
}

// NewGetOpenRequestsQueryHandler creates a handler for open line item
// queries.
func NewGetOpenRequestsQueryHandler(db *gorm.DB) GetOpenRequestsQueryHandler {
	return GetOpenRequestsQueryHandler{db: db}
}

// Handle executes the query. A line item is open until both its stage and
// phase reach Finalization. Results are sorted by request and line item id
// for stable output.
func (h GetOpenRequestsQueryHandler) Handle(
	ctx context.Context,
	query GetOpenRequestsQuery,
) ([]GetOpenRequestsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			r.id,
			r.requester_id,
			r.provider_id,
			li.id,
			li.waste_type_id,
			li.service,
			li.stage,
			li.phase
		FROM line_items li
		JOIN requests r ON r.id = li.request_id
		WHERE li.stage != ? OR li.phase != ?
		ORDER BY r.id, li.id
	`, int(request.StageFinalization), int(request.PhaseFinalization)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	open := make([]GetOpenRequestsQueryResponse, 0)

	for rows.Next() {
		var resp GetOpenRequestsQueryResponse
		var requestID, requesterID, providerID, lineItemID, wasteTypeID uuid.UUID
		var service, stage, phase int

		if err = rows.Scan(
			&requestID,
			&requesterID,
			&providerID,
			&lineItemID,
			&wasteTypeID,
			&service,
			&stage,
			&phase,
		); err != nil {
			return nil, err
		}

		if resp.RequestID, err = kernel.UUIDFromBytes(requestID[:]); err != nil {
			return nil, err
		}
		if resp.Requester, err = kernel.UUIDFromBytes(requesterID[:]); err != nil {
			return nil, err
		}
		if resp.Provider, err = kernel.UUIDFromBytes(providerID[:]); err != nil {
			return nil, err
		}
		if resp.LineItemID, err = kernel.UUIDFromBytes(lineItemID[:]); err != nil {
			return nil, err
		}
		if resp.WasteTypeID, err = kernel.UUIDFromBytes(wasteTypeID[:]); err != nil {
			return nil, err
		}
		resp.Service = request.ServiceKind(service)
		resp.Stage = request.Stage(stage)
		resp.Phase = request.Phase(phase)

		open = append(open, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return open, nil
}
