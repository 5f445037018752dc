package commands

import (
	"context"
	"fmt"

	"custody/internal/core/domain/model/certificate"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/keylock"
)

// IssueCertificateCommandHandler issues pending certificates. The
// precondition that every covered residue is currently Treated or Disposed
// is enforced against the custody read model inside the issuing transaction,
// never trusted from the caller. The gapless number is allocated in the same
// transaction, so an aborted issuance burns no number.
type IssueCertificateCommandHandler struct {
	uowFactory CertificateUoWFactory
	locks      *keylock.KeyLock
}

// NewIssueCertificateCommandHandler creates a handler for certificate
// issuance.
func NewIssueCertificateCommandHandler(
	uowFactory CertificateUoWFactory,
	locks *keylock.KeyLock,
) IssueCertificateCommandHandler {
	return IssueCertificateCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
	}
}

// Handle loads the pending certificate, checks the residue precondition,
// allocates the number and applies the Issue event, all in one transaction.
// On a failed precondition nothing is persisted and the certificate stays
// Pending.
func (h *IssueCertificateCommandHandler) Handle(
	ctx context.Context,
	cmd IssueCertificateCommand,
) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.locks.Lock(cmd.CertificateID().String())
	defer h.locks.Unlock(cmd.CertificateID().String())

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.CertificateRepository().Get(ctx, cmd.CertificateID())
	if err != nil {
		return err
	}

	if err = h.checkResiduesCertifiable(ctx, uow, aggregate.ResidueIDs()); err != nil {
		return err
	}

	number, err := uow.CertificateNumbers().Next(ctx, cmd.Scope())
	if err != nil {
		return err
	}

	issue, err := certificate.NewEvent(
		kernel.NewUUID(),
		certificate.Pending,
		certificate.Issued,
		cmd.IssuedAt(),
		certificate.IssueOp{
			Number:    number,
			IssuedAt:  cmd.IssuedAt(),
			ExpiresAt: cmd.ExpiresAt(),
		},
	)
	if err != nil {
		return err
	}

	if err = aggregate.Apply(issue); err != nil {
		return err
	}

	if err = uow.CertificateRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// checkResiduesCertifiable verifies every covered residue is in a
// certifiable status right now, per the custody read model.
func (h *IssueCertificateCommandHandler) checkResiduesCertifiable(
	ctx context.Context,
	uow CertificateUoW,
	residueIDs []kernel.UUID,
) error {
	for _, id := range residueIDs {
		aggregate, err := uow.ResidueRepository().Get(ctx, id)
		if err != nil {
			return err
		}
		if !aggregate.Status().IsCertifiable() {
			return errs.NewValueIsInvalidErrorWithCause("residue is not certifiable",
				fmt.Errorf("residue %s is %s, certification requires Treated or Disposed",
					id, aggregate.Status()))
		}
	}
	return nil
}
