package ports

import (
	"context"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/residue"
)

// ResidueRepository defines the persistence contract for residue aggregates.
// Implementations persist the event log as the source of truth plus a
// read-model row, and enforce the optimistic version: Update must fail with
// a StaleVersionError when the stored version no longer matches the version
// the aggregate was loaded at.
type ResidueRepository interface {
	// Add persists a freshly generated residue with its generation event.
	Add(ctx context.Context, aggregate *residue.Residue) error

	// Update persists newly applied events and the refreshed read model.
	// Fails with StaleVersionError on a lost optimistic-concurrency race.
	Update(ctx context.Context, aggregate *residue.Residue) error

	// Get restores a residue by replaying its persisted event log.
	Get(ctx context.Context, id kernel.UUID) (*residue.Residue, error)
}
