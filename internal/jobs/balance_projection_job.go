package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"custody/internal/core/application/usecases/commands"
)

// BalanceProjectionJob drives the balance aggregator. It runs every second,
// consuming one batch of custody events past the checkpoint per tick. A tick
// that drains a full batch leaves the rest for the next one; the projection
// catches up instead of blocking.
type BalanceProjectionJob struct {
	handler   commands.ProjectBalancesCommandHandler
	batchSize int
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewBalanceProjectionJob creates a job projecting balances in batches of the
// given size.
func NewBalanceProjectionJob(
	handler commands.ProjectBalancesCommandHandler,
	batchSize int,
	logger *slog.Logger,
) *BalanceProjectionJob {
	return &BalanceProjectionJob{
		handler:   handler,
		batchSize: batchSize,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "balance_projection_job"),
	}
}

// Start begins the projection job to run every second.
func (j *BalanceProjectionJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() {
		ctx := context.Background()

		cmd, cmdErr := commands.NewProjectBalancesCommand(j.batchSize)
		if cmdErr != nil {
			j.logger.ErrorContext(ctx, "Balance projection job misconfigured", "error", cmdErr)
			return
		}

		processed, handleErr := j.handler.Handle(ctx, cmd)
		if handleErr != nil {
			j.logger.ErrorContext(ctx, "Balance projection job failed", "error", handleErr)
			return
		}
		if processed > 0 {
			j.logger.InfoContext(ctx, "Projected custody events", "count", processed)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Balance projection job started (running every second)")
	return nil
}

// Stop stops the projection job.
func (j *BalanceProjectionJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Balance projection job stopped")
}
