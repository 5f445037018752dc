// Package postgres provides the GORM-based implementation of the Unit of Work
// pattern. The Unit of Work maintains a list of aggregates affected by a
// business transaction and coordinates writing out changes and resolving
// concurrency problems.
//
// Key Features:
//   - Transaction management across multiple repositories
//   - Aggregate tracking for domain event processing
//   - Proper isolation between concurrent operations
//   - Repository factory pattern for consistent database connections
//
// Usage Pattern:
//
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//
//	// All operations within the same transaction
//	if err := uow.ResidueRepository().Update(ctx, residue); err != nil {
//	    uow.Rollback(ctx)
//	    return err
//	}
//
//	if err := uow.RequestRepository().UpdateLineItem(ctx, item); err != nil {
//	    uow.Rollback(ctx)
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Error Handling Best Practices:
//   - Always handle Begin() errors
//   - Explicit rollback on business logic errors
//   - Check commit errors for transaction conflicts
//
// Concurrency Considerations:
//   - Each UnitOfWork instance provides isolated transactions
//   - Multiple goroutines should use separate UnitOfWork instances
//   - Optimistic version checks surface lost races as StaleVersionError
package postgres

import (
	"context"

	"gorm.io/gorm"

	"custody/internal/adapters/out/postgres/balancerepo"
	"custody/internal/adapters/out/postgres/certificaterepo"
	"custody/internal/adapters/out/postgres/requestrepo"
	"custody/internal/adapters/out/postgres/residuerepo"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/ports"
)

// trackedAggregate represents an aggregate modified during the unit of work.
// This is useful for implementing patterns like event sourcing or outbox pattern.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database
// connections. The factory ensures each business operation gets a fresh unit
// of work instance with proper isolation from other concurrent operations.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work
// instances. The provided database connection will be used for all created
// unit of work instances.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork instance ready for business transaction
// management. Each instance maintains its own transaction state and aggregate
// tracking.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates database transactions and tracks aggregate
// changes for custody operations. The gapless certificate numbering depends
// on this boundary: numbers allocate inside the transaction, so an aborted
// issuance rolls its number back.
//
// The unit of work tracks all aggregates modified during the transaction,
// enabling patterns like domain event publishing after successful commits.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin initiates a new database transaction for the unit of work.
// Subsequent repository operations will execute within this transaction
// context. Multiple calls to Begin on the same instance are safe and will not
// create nested transactions.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		return uow.tx.Error
	}

	return nil
}

// Commit finalizes all changes made within the current transaction. After
// commit, the transaction is closed and cannot be reused.
//
// Returns error if no active transaction exists or if the commit fails.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards all changes made within the current transaction. After
// rollback, the transaction is closed and cannot be reused.
//
// Returns error if no active transaction exists or if the rollback fails.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// ResidueRepository provides residue persistence bound to the current
// transaction if one is active, otherwise to the main connection.
func (uow *GormUnitOfWork) ResidueRepository() ports.ResidueRepository {
	return residuerepo.NewGormResidueRepository(uow.handle(), uow)
}

// RequestRepository provides request, line item, and order persistence bound
// to the current transaction if one is active.
func (uow *GormUnitOfWork) RequestRepository() ports.RequestRepository {
	return requestrepo.NewGormRequestRepository(uow.handle(), uow)
}

// CertificateRepository provides certificate persistence bound to the current
// transaction if one is active.
func (uow *GormUnitOfWork) CertificateRepository() ports.CertificateRepository {
	return certificaterepo.NewGormCertificateRepository(uow.handle(), uow)
}

// BalanceRepository provides balance read-model persistence bound to the
// current transaction if one is active.
func (uow *GormUnitOfWork) BalanceRepository() ports.BalanceRepository {
	return balancerepo.NewGormBalanceRepository(uow.handle())
}

// CertificateNumbers provides the gapless number sequence bound to the
// current transaction if one is active. Callers must allocate within an open
// transaction; otherwise an aborted issuance burns a number.
func (uow *GormUnitOfWork) CertificateNumbers() ports.NumberSequence {
	return certificaterepo.NewGormNumberSequence(uow.handle())
}

// TrackAggregate registers a domain aggregate as modified within this unit of
// work. Repository implementations call this when aggregates are added or
// updated; the tracked aggregates enable post-transaction processing such as
// domain event publishing.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

func (uow *GormUnitOfWork) handle() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
