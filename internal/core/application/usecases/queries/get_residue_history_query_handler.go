package queries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/residue"
	"custody/internal/pkg/errs"
)

// GetResidueHistoryQueryHandler reads a residue's event rows straight from
// the event table, in recorded order. The rows are the source of truth, so
// this read is always exact, unlike the balance projection.
type GetResidueHistoryQueryHandler struct {
	db *gorm.DB
}

// NewGetResidueHistoryQueryHandler creates a handler for custody trail
// queries.
func NewGetResidueHistoryQueryHandler(db *gorm.DB) GetResidueHistoryQueryHandler {
	return GetResidueHistoryQueryHandler{db: db}
}

// Handle executes the query. An unknown residue id is reported as not found
// rather than an empty trail: a residue without a generation event does not
// exist.
func (h GetResidueHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetResidueHistoryQuery,
) ([]GetResidueHistoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			seq,
			event_id,
			kind,
			from_status,
			to_status,
			amount,
			unit,
			occurred_at
		FROM residue_events
		WHERE residue_id = ?
		ORDER BY seq
	`, query.ResidueID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]GetResidueHistoryQueryResponse, 0)

	for rows.Next() {
		var entry GetResidueHistoryQueryResponse
		var eventID uuid.UUID
		var kind, fromStatus, toStatus, unit int

		if err = rows.Scan(
			&entry.Seq,
			&eventID,
			&kind,
			&fromStatus,
			&toStatus,
			&entry.Amount,
			&unit,
			&entry.OccurredAt,
		); err != nil {
			return nil, err
		}

		if entry.EventID, err = kernel.UUIDFromBytes(eventID[:]); err != nil {
			return nil, err
		}
		entry.Kind = residue.OperationKind(kind)
		entry.FromStatus = residue.Status(fromStatus)
		entry.ToStatus = residue.Status(toStatus)
		entry.Unit = kernel.Unit(unit)

		history = append(history, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(history) == 0 {
		return nil, errs.NewObjectNotFoundError("residueID", query.ResidueID())
	}

	return history, nil
}
