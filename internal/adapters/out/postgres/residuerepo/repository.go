package residuerepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/residue"
	"custody/internal/pkg/errs"
)

// GormResidueRepository implements ResidueRepository using GORM.
//
// Writes append the aggregate's events with ON CONFLICT DO NOTHING on the
// event id, so redelivered events never produce duplicate rows, and update
// the read-model row with a version compare-and-swap. The aggregate's
// version equals its event count, which makes the CAS a strict
// monotonic check.
type GormResidueRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormResidueRepository creates a new GORM residue repository.
func NewGormResidueRepository(db *gorm.DB, tracker aggregateTracker) *GormResidueRepository {
	return &GormResidueRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new residue and its generation event.
//
// Generation commands are redelivered under at-least-once semantics, so the
// read-model insert runs with ON CONFLICT DO NOTHING on the residue id. When
// the row already exists and carries the same generation event the add is a
// no-op; a different aggregate claiming the id fails with StaleVersionError.
func (r *GormResidueRepository) Add(ctx context.Context, aggregate *residue.Residue) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		existing, err := r.Get(ctx, aggregate.ID())
		if err != nil {
			return err
		}
		if existing.HasApplied(aggregate.Events()[0].EventID()) {
			r.tracker.TrackAggregate(aggregate.ID(), existing)
			return nil
		}
		return kernel.NewStaleVersionError(
			residue.AggregateKind, aggregate.ID(), aggregate.Version())
	}

	if err := r.appendEvents(ctx, aggregate); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update appends the aggregate's new events and swaps the read-model row.
// A concurrent writer that got there first makes the swap fail with a
// StaleVersionError; the caller retries from a fresh Get.
func (r *GormResidueRepository) Update(ctx context.Context, aggregate *residue.Residue) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	if err := r.appendEvents(ctx, aggregate); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&ResidueDTO{}).
		Where("id = ? AND version < ?", dto.ID, dto.Version).
		Updates(map[string]any{
			"waste_type_id": dto.WasteTypeID,
			"owner_id":      dto.OwnerID,
			"location_id":   dto.LocationID,
			"status":        dto.Status,
			"amount":        dto.Amount,
			"unit":          dto.Unit,
			"version":       dto.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return kernel.NewStaleVersionError(residue.AggregateKind, aggregate.ID(), aggregate.Version())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get rebuilds a residue by replaying its event rows in sequence order.
func (r *GormResidueRepository) Get(ctx context.Context, id kernel.UUID) (*residue.Residue, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dtos []ResidueEventDTO
	err := r.db.WithContext(ctx).
		Order("seq").
		Find(&dtos, "residue_id = ?", id.Bytes()).Error
	if err != nil {
		return nil, err
	}
	if len(dtos) == 0 {
		return nil, errs.NewObjectNotFoundError("residue", id.String())
	}

	events := make([]residue.Event, 0, len(dtos))
	for _, dto := range dtos {
		event, eventErr := toDomainEvent(dto)
		if eventErr != nil {
			return nil, kernel.NewCorruptEventLogError(
				residue.AggregateKind, id, dto.Seq, eventErr.Error())
		}
		events = append(events, event)
	}

	return residue.RestoreResidue(id, events)
}

func (r *GormResidueRepository) appendEvents(ctx context.Context, aggregate *residue.Residue) error {
	rows, err := eventRows(aggregate)
	if err != nil {
		return err
	}

	for i := range rows {
		err = r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "event_id"}},
				DoNothing: true,
			}).
			Create(&rows[i]).Error
		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}

	return nil
}
