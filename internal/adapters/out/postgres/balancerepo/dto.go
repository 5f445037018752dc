// Package balancerepo persists the balance read model and the projection
// checkpoint it is folded up to.
package balancerepo

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"custody/internal/core/domain/model/balance"
	"custody/internal/core/domain/model/kernel"
)

// BalanceDTO is one inventory row keyed by owner, facility and waste type.
type BalanceDTO struct {
	OwnerID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	FacilityID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	WasteTypeID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Unit        int

	Generated decimal.Decimal `gorm:"type:numeric"`
	InTransit decimal.Decimal `gorm:"type:numeric"`
	Stored    decimal.Decimal `gorm:"type:numeric"`
	Treated   decimal.Decimal `gorm:"type:numeric"`
	Disposed  decimal.Decimal `gorm:"type:numeric"`

	Checkpoint  int64
	LastApplied uuid.UUID `gorm:"type:uuid"`
	Version     int
}

// TableName overrides GORM's default naming to use "balances".
func (BalanceDTO) TableName() string {
	return "balances"
}

// ProjectionCheckpointDTO is the single row holding the global stream
// position the balance projector has processed up to.
type ProjectionCheckpointDTO struct {
	Name string `gorm:"primaryKey"`
	Seq  int64
}

// TableName overrides GORM's default naming to use "projection_checkpoints".
func (ProjectionCheckpointDTO) TableName() string {
	return "projection_checkpoints"
}

func fromDomain(row *balance.Balance) BalanceDTO {
	buckets := row.BucketAmounts()
	return BalanceDTO{
		OwnerID:     row.Owner().Bytes(),
		FacilityID:  row.Facility().Bytes(),
		WasteTypeID: row.WasteTypeID().Bytes(),
		Unit:        int(row.Unit()),
		Generated:   buckets.Generated,
		InTransit:   buckets.InTransit,
		Stored:      buckets.Stored,
		Treated:     buckets.Treated,
		Disposed:    buckets.Disposed,
		Checkpoint:  row.Checkpoint(),
		LastApplied: row.LastApplied().Bytes(),
		Version:     row.Version(),
	}
}

func toDomain(dto BalanceDTO) (*balance.Balance, error) {
	owner, err := kernel.UUIDFromBytes(dto.OwnerID[:])
	if err != nil {
		return nil, err
	}
	facility, err := kernel.UUIDFromBytes(dto.FacilityID[:])
	if err != nil {
		return nil, err
	}
	wasteTypeID, err := kernel.UUIDFromBytes(dto.WasteTypeID[:])
	if err != nil {
		return nil, err
	}

	// The zero uuid is a valid LastApplied before the first projection.
	var lastApplied kernel.UUID
	if dto.LastApplied != uuid.Nil {
		if lastApplied, err = kernel.UUIDFromBytes(dto.LastApplied[:]); err != nil {
			return nil, err
		}
	}

	return balance.RestoreBalance(
		owner,
		facility,
		wasteTypeID,
		kernel.Unit(dto.Unit),
		balance.Buckets{
			Generated: dto.Generated,
			InTransit: dto.InTransit,
			Stored:    dto.Stored,
			Treated:   dto.Treated,
			Disposed:  dto.Disposed,
		},
		dto.Checkpoint,
		lastApplied,
		dto.Version,
	)
}
