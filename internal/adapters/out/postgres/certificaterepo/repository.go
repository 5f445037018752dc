package certificaterepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"custody/internal/core/domain/model/certificate"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
)

// GormCertificateRepository implements CertificateRepository using GORM.
//
// Lifecycle events append with ON CONFLICT DO NOTHING on the event id and the
// header row swaps under a version compare-and-swap, same discipline as the
// residue repository.
type GormCertificateRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormCertificateRepository creates a new GORM certificate repository.
func NewGormCertificateRepository(db *gorm.DB, tracker aggregateTracker) *GormCertificateRepository {
	return &GormCertificateRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new pending certificate and any already applied events.
func (r *GormCertificateRepository) Add(ctx context.Context, aggregate *certificate.Certificate) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	if err = r.appendEvents(ctx, aggregate); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update appends the aggregate's new events and swaps the header row.
// A concurrent writer that got there first makes the swap fail with a
// StaleVersionError; the caller retries from a fresh Get.
func (r *GormCertificateRepository) Update(ctx context.Context, aggregate *certificate.Certificate) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	if err := r.appendEvents(ctx, aggregate); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&CertificateDTO{}).
		Where("id = ? AND version < ?", dto.ID, dto.Version).
		Updates(map[string]any{
			"document_ref": dto.DocumentRef,
			"number":       dto.Number,
			"status":       dto.Status,
			"issued_at":    dto.IssuedAt,
			"expires_at":   dto.ExpiresAt,
			"revoked_at":   dto.RevokedAt,
			"reason":       dto.Reason,
			"version":      dto.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return kernel.NewStaleVersionError(
			certificate.AggregateKind, aggregate.ID(), aggregate.Version())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get restores a certificate from its header row and persisted event log.
func (r *GormCertificateRepository) Get(
	ctx context.Context,
	id kernel.UUID,
) (*certificate.Certificate, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CertificateDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("certificate", id.String())
		}
		return nil, err
	}

	var eventDTOs []CertificateEventDTO
	err := r.db.WithContext(ctx).
		Order("seq").
		Find(&eventDTOs, "certificate_id = ?", id.Bytes()).Error
	if err != nil {
		return nil, err
	}

	return toDomain(dto, eventDTOs)
}

func (r *GormCertificateRepository) appendEvents(
	ctx context.Context,
	aggregate *certificate.Certificate,
) error {
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
