// Package jobs provides scheduled background tasks for the custody system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required by the workflow engine.
//
// # Available Jobs
//
// 1. BalanceProjectionJob - Runs every second to fold newly appended custody
// events into the balance read model and advance the projection checkpoint
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(projectBalancesHandler, batchSize, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The projection job uses the cron expression "* * * * * *", running every
// second. Each tick processes at most one batch, so a burst of custody events
// is worked off across consecutive ticks without blocking.
//
// # Error Handling
//
// - An exhausted stream is not an error; the tick is a no-op
// - Projection failures are logged and retried on the next tick, which is
// safe because every movement application is idempotent
package jobs
