package commands

import (
	"context"

	"custody/internal/core/domain/model/certificate"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/keylock"
)

// RevokeCertificateCommandHandler withdraws issued certificates. The number
// stays assigned; revocation is a statement about the document, not an undo
// of the physical operations it attested.
type RevokeCertificateCommandHandler struct {
	uowFactory CertificateUoWFactory
	locks      *keylock.KeyLock
}

// NewRevokeCertificateCommandHandler creates a handler for certificate
// revocation.
func NewRevokeCertificateCommandHandler(
	uowFactory CertificateUoWFactory,
	locks *keylock.KeyLock,
) RevokeCertificateCommandHandler {
	return RevokeCertificateCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
	}
}

// Handle applies the Revoke event. Revoking a certificate that is not
// Issued is an invalid transition.
func (h *RevokeCertificateCommandHandler) Handle(
	ctx context.Context,
	cmd RevokeCertificateCommand,
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

	repo := uow.CertificateRepository()

	aggregate, err := repo.Get(ctx, cmd.CertificateID())
	if err != nil {
		return err
	}

	revoke, err := certificate.NewEvent(
		kernel.NewUUID(),
		aggregate.Status(),
		certificate.Revoked,
		cmd.RevokedAt(),
		certificate.RevokeOp{
			Reason:    cmd.Reason(),
			RevokedAt: cmd.RevokedAt(),
		},
	)
	if err != nil {
		return err
	}

	if err = aggregate.Apply(revoke); err != nil {
		return err
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
