package residuerepo

import (
	"context"

	"gorm.io/gorm"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/residue"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"
)

// GormResidueEventStream reads the custody event table as a forward-only feed
// ordered by append sequence. The balance projector is its only consumer.
type GormResidueEventStream struct {
	db *gorm.DB
}

// NewGormResidueEventStream creates an event stream over the given handle.
func NewGormResidueEventStream(db *gorm.DB) *GormResidueEventStream {
	return &GormResidueEventStream{db: db}
}

// ReadAfter returns up to limit events with Seq greater than afterSeq, in
// ascending sequence order.
func (s *GormResidueEventStream) ReadAfter(
	ctx context.Context,
	afterSeq int64,
	limit int,
) ([]ports.StoredResidueEvent, error) {
	if afterSeq < 0 {
		return nil, errs.NewValueIsInvalidError("afterSeq must not be negative")
	}
	if limit <= 0 {
		return nil, errs.NewValueIsRequiredError("limit")
	}

	var dtos []ResidueEventDTO
	err := s.db.WithContext(ctx).
		Where("seq > ?", afterSeq).
		Order("seq").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	events := make([]ports.StoredResidueEvent, 0, len(dtos))
	for _, dto := range dtos {
		event, eventErr := toStoredEvent(dto)
		if eventErr != nil {
			return nil, eventErr
		}
		events = append(events, event)
	}

	return events, nil
}

// toStoredEvent maps an event row to its projection envelope. The payload is
// not needed: the denormalized columns already carry everything the projector
// folds.
func toStoredEvent(dto ResidueEventDTO) (ports.StoredResidueEvent, error) {
	eventID, err := kernel.UUIDFromBytes(dto.EventID[:])
	if err != nil {
		return ports.StoredResidueEvent{}, err
	}
	residueID, err := kernel.UUIDFromBytes(dto.ResidueID[:])
	if err != nil {
		return ports.StoredResidueEvent{}, err
	}
	wasteTypeID, err := kernel.UUIDFromBytes(dto.WasteTypeID[:])
	if err != nil {
		return ports.StoredResidueEvent{}, err
	}
	owner, err := kernel.UUIDFromBytes(dto.OwnerID[:])
	if err != nil {
		return ports.StoredResidueEvent{}, err
	}
	facility, err := kernel.UUIDFromBytes(dto.FacilityID[:])
	if err != nil {
		return ports.StoredResidueEvent{}, err
	}

	return ports.StoredResidueEvent{
		Seq:         dto.Seq,
		EventID:     eventID,
		ResidueID:   residueID,
		WasteTypeID: wasteTypeID,
		Owner:       owner,
		Facility:    facility,
		FromStatus:  residue.Status(dto.FromStatus),
		ToStatus:    residue.Status(dto.ToStatus),
		Kind:        residue.OperationKind(dto.Kind),
		Amount:      dto.Amount,
		Unit:        kernel.Unit(dto.Unit),
		OccurredAt:  dto.OccurredAt,
	}, nil
}
