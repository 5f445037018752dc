// Package directoryrepo resolves party and facility references against the
// master-data tables.
package directoryrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"
)

// PartyDTO is one party that can own residues or hold certificates.
type PartyDTO struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string
}

// TableName overrides GORM's default naming to use "parties".
func (PartyDTO) TableName() string {
	return "parties"
}

// FacilityDTO is one facility, plant, or site residues can be located at.
type FacilityDTO struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string
}

// TableName overrides GORM's default naming to use "facilities".
func (FacilityDTO) TableName() string {
	return "facilities"
}

// GormDirectory implements Directory against the master-data tables.
type GormDirectory struct {
	db *gorm.DB
}

// NewGormDirectory creates a new GORM directory.
func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

// ResolveParty looks up a party reference.
func (d *GormDirectory) ResolveParty(ctx context.Context, id kernel.UUID) (ports.PartyRef, error) {
	if err := id.Validate(); err != nil {
		return ports.PartyRef{}, err
	}

	var dto PartyDTO
	if err := d.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PartyRef{}, errs.NewObjectNotFoundError("party", id.String())
		}
		return ports.PartyRef{}, err
	}

	partyID, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.PartyRef{}, err
	}

	return ports.PartyRef{ID: partyID, Name: dto.Name}, nil
}

// ResolveFacility looks up a facility reference.
func (d *GormDirectory) ResolveFacility(ctx context.Context, id kernel.UUID) (ports.FacilityRef, error) {
	if err := id.Validate(); err != nil {
		return ports.FacilityRef{}, err
	}

	var dto FacilityDTO
	if err := d.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.FacilityRef{}, errs.NewObjectNotFoundError("facility", id.String())
		}
		return ports.FacilityRef{}, err
	}

	facilityID, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.FacilityRef{}, err
	}

	return ports.FacilityRef{ID: facilityID, Name: dto.Name}, nil
}
