package ports

import (
	"context"

	"custody/internal/core/domain/model/balance"
	"custody/internal/core/domain/model/kernel"
)

// BalanceRepository defines the persistence contract for balance rows.
type BalanceRepository interface {
	// Get retrieves the balance row for the key, or an ObjectNotFoundError
	// when no events have been projected for it yet.
	Get(ctx context.Context, owner, facility, wasteTypeID kernel.UUID) (*balance.Balance, error)

	// Save upserts a balance row, checking the optimistic version.
	Save(ctx context.Context, row *balance.Balance) error

	// GetProjectionCheckpoint returns the global stream position the
	// projector has processed up to, zero before the first run.
	GetProjectionCheckpoint(ctx context.Context) (int64, error)

	// SaveProjectionCheckpoint persists the global stream position.
	SaveProjectionCheckpoint(ctx context.Context, seq int64) error
}
