package certificaterepo

import (
	"context"

	"gorm.io/gorm"

	"custody/internal/pkg/errs"
)

// NumberSequenceDTO is one counter row per issuing scope.
type NumberSequenceDTO struct {
	Scope     string `gorm:"primaryKey"`
	LastValue int64
}

// TableName overrides GORM's default naming to use "certificate_numbers".
func (NumberSequenceDTO) TableName() string {
	return "certificate_numbers"
}

// GormNumberSequence allocates gapless certificate numbers from a per-scope
// counter row. The upsert takes a row lock until the surrounding transaction
// ends, so concurrent issuances in one scope serialize and an aborted
// issuance rolls its number back instead of burning it. It must run on a
// transaction-bound db handle.
type GormNumberSequence struct {
	db *gorm.DB
}

// NewGormNumberSequence creates a number sequence on the given handle.
func NewGormNumberSequence(db *gorm.DB) *GormNumberSequence {
	return &GormNumberSequence{db: db}
}

// Next returns the next number for the scope, starting at 1.
func (s *GormNumberSequence) Next(ctx context.Context, scope string) (int64, error) {
	if scope == "" {
		return 0, errs.NewValueIsRequiredError("scope")
	}

	var next int64
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO certificate_numbers (scope, last_value)
		VALUES (?, 1)
		ON CONFLICT (scope)
		DO UPDATE SET last_value = certificate_numbers.last_value + 1
		RETURNING last_value
	`, scope).Scan(&next).Error
	if err != nil {
		return 0, err
	}

	return next, nil
}
