package commands

import (
	"errors"

	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

var ErrProjectBalancesCommandIsNotConstructed = errors.New(
	"ProjectBalancesCommand must be created via NewProjectBalancesCommand constructor",
)

// ProjectBalancesCommand runs one incremental projection step: read a batch
// of custody events past the checkpoint and fold them into the balance rows.
// Steps are resumable and idempotent, so the projector can crash or re-read
// freely without double-counting.
type ProjectBalancesCommand struct { //nolint:recvcheck //using for validation
	batchSize int

	guard guard.ConstructorGuard
}

// NewProjectBalancesCommand creates a command for one projection step.
func NewProjectBalancesCommand(batchSize int) (ProjectBalancesCommand, error) {
	cmd := ProjectBalancesCommand{
		guard: guard.NewConstructorGuard(),
	}

	if batchSize <= 0 {
		return ProjectBalancesCommand{}, errs.NewValueIsInvalidError(
			"batch size must be positive")
	}
	cmd.batchSize = batchSize

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ProjectBalancesCommand) Validate() error {
	return c.guard.Validate(ErrProjectBalancesCommandIsNotConstructed)
}

// BatchSize returns the maximum number of events one step processes.
func (c ProjectBalancesCommand) BatchSize() int {
	return c.batchSize
}
