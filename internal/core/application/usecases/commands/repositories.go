// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, per-aggregate locking
// where needed, transaction management, and persistence.
package commands

import (
	"context"

	"custody/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Each handler depends on the narrowest interface that covers the aggregates
// it touches.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// ResidueRepoFactory provides access to the residue repository within a
	// transaction.
	ResidueRepoFactory interface {
		ResidueRepository() ports.ResidueRepository
	}

	// RequestRepoFactory provides access to the request repository within a
	// transaction.
	RequestRepoFactory interface {
		RequestRepository() ports.RequestRepository
	}

	// CertificateRepoFactory provides access to the certificate repository
	// within a transaction.
	CertificateRepoFactory interface {
		CertificateRepository() ports.CertificateRepository
	}

	// BalanceRepoFactory provides access to the balance repository within a
	// transaction.
	BalanceRepoFactory interface {
		BalanceRepository() ports.BalanceRepository
	}

	// NumberSequenceFactory provides access to the gapless certificate
	// number sequence within a transaction.
	NumberSequenceFactory interface {
		CertificateNumbers() ports.NumberSequence
	}

	// ResidueUoW manages transactions for residue-only operations.
	ResidueUoW interface {
		TxManager
		ResidueRepoFactory
	}

	// ResidueUoWFactory creates new residue unit of work instances.
	ResidueUoWFactory interface {
		Create() ResidueUoW
	}

	// RequestUoW manages transactions for request-only operations.
	RequestUoW interface {
		TxManager
		RequestRepoFactory
	}

	// RequestUoWFactory creates new request unit of work instances.
	RequestUoWFactory interface {
		Create() RequestUoW
	}

	// AdvanceUoW manages transactions spanning a line item and the residues
	// its stage advance touches. Used by AdvanceLineItem so that the
	// stage/phase update and the derived custody events commit or roll back
	// as one.
	AdvanceUoW interface {
		TxManager
		RequestRepoFactory
		ResidueRepoFactory
	}

	// AdvanceUoWFactory creates new advance unit of work instances.
	AdvanceUoWFactory interface {
		Create() AdvanceUoW
	}

	// CertificateUoW manages transactions spanning a certificate, the
	// residue read models its precondition consults, and the number
	// sequence.
	CertificateUoW interface {
		TxManager
		CertificateRepoFactory
		ResidueRepoFactory
		NumberSequenceFactory
	}

	// CertificateUoWFactory creates new certificate unit of work instances.
	CertificateUoWFactory interface {
		Create() CertificateUoW
	}

	// BalanceUoW manages transactions for balance projection steps.
	BalanceUoW interface {
		TxManager
		BalanceRepoFactory
	}

	// BalanceUoWFactory creates new balance unit of work instances.
	BalanceUoWFactory interface {
		Create() BalanceUoW
	}
)
