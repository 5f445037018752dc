package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// It provides transaction control and hands out repositories bound to the
// current transaction. Client code must explicitly manage the transaction
// lifecycle; commit is the point of no return for every custody operation.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// ResidueRepository returns a ResidueRepository bound to the current
	// transaction.
	ResidueRepository() ResidueRepository

	// RequestRepository returns a RequestRepository bound to the current
	// transaction.
	RequestRepository() RequestRepository

	// CertificateRepository returns a CertificateRepository bound to the
	// current transaction.
	CertificateRepository() CertificateRepository

	// BalanceRepository returns a BalanceRepository bound to the current
	// transaction.
	BalanceRepository() BalanceRepository

	// CertificateNumbers returns the gapless number sequence bound to the
	// current transaction.
	CertificateNumbers() NumberSequence
}
