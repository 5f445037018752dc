package balancerepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"custody/internal/core/domain/model/balance"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
)

// checkpointName keys the single projector checkpoint row.
const checkpointName = "residue_balances"

// GormBalanceRepository implements BalanceRepository using GORM.
type GormBalanceRepository struct {
	db *gorm.DB
}

// NewGormBalanceRepository creates a new GORM balance repository.
func NewGormBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// Get retrieves the balance row for the key.
func (r *GormBalanceRepository) Get(
	ctx context.Context,
	owner, facility, wasteTypeID kernel.UUID,
) (*balance.Balance, error) {
	if err := errors.Join(owner.Validate(), facility.Validate(), wasteTypeID.Validate()); err != nil {
		return nil, err
	}

	var dto BalanceDTO
	err := r.db.WithContext(ctx).
		First(&dto, "owner_id = ? AND facility_id = ? AND waste_type_id = ?",
			owner.Bytes(), facility.Bytes(), wasteTypeID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("balance", wasteTypeID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Save upserts a balance row. An existing row swaps under a version
// compare-and-swap; losing the race returns a StaleVersionError.
func (r *GormBalanceRepository) Save(ctx context.Context, row *balance.Balance) error {
	if err := row.Validate(); err != nil {
		return err
	}

	dto := fromDomain(row)
	result := r.db.WithContext(ctx).Model(&BalanceDTO{}).
		Where("owner_id = ? AND facility_id = ? AND waste_type_id = ? AND version < ?",
			dto.OwnerID, dto.FacilityID, dto.WasteTypeID, dto.Version).
		Updates(map[string]any{
			"unit":         dto.Unit,
			"generated":    dto.Generated,
			"in_transit":   dto.InTransit,
			"stored":       dto.Stored,
			"treated":      dto.Treated,
			"disposed":     dto.Disposed,
			"checkpoint":   dto.Checkpoint,
			"last_applied": dto.LastApplied,
			"version":      dto.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&BalanceDTO{}).
		Where("owner_id = ? AND facility_id = ? AND waste_type_id = ?",
			dto.OwnerID, dto.FacilityID, dto.WasteTypeID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return kernel.NewStaleVersionError(balance.AggregateKind, row.WasteTypeID(), row.Version())
	}

	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetProjectionCheckpoint returns the stream position the projector has
// processed up to, zero before the first run.
func (r *GormBalanceRepository) GetProjectionCheckpoint(ctx context.Context) (int64, error) {
	var dto ProjectionCheckpointDTO
	err := r.db.WithContext(ctx).First(&dto, "name = ?", checkpointName).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return dto.Seq, nil
}

// SaveProjectionCheckpoint upserts the stream position.
func (r *GormBalanceRepository) SaveProjectionCheckpoint(ctx context.Context, seq int64) error {
	if seq < 0 {
		return errs.NewValueIsInvalidError("checkpoint must not be negative")
	}

	dto := ProjectionCheckpointDTO{Name: checkpointName, Seq: seq}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{"seq": seq}),
		}).
		Create(&dto).Error
}
