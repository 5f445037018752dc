package ports

import (
	"context"

	"custody/internal/core/domain/model/certificate"
	"custody/internal/core/domain/model/kernel"
)

// CertificateRepository defines the persistence contract for certificate
// aggregates and their lifecycle event logs.
type CertificateRepository interface {
	// Add persists a new pending certificate.
	Add(ctx context.Context, aggregate *certificate.Certificate) error

	// Update persists newly applied lifecycle events.
	// Fails with StaleVersionError on a lost optimistic-concurrency race.
	Update(ctx context.Context, aggregate *certificate.Certificate) error

	// Get restores a certificate by replaying its persisted event log.
	Get(ctx context.Context, id kernel.UUID) (*certificate.Certificate, error)
}

// NumberSequence hands out monotonic, gapless certificate numbers within an
// issuing scope. Implementations must allocate inside the caller's
// transaction so an aborted issuance never burns a number.
type NumberSequence interface {
	// Next returns the next number for the scope, starting at 1.
	Next(ctx context.Context, scope string) (int64, error)
}
