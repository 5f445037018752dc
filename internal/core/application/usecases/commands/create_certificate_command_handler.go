package commands

import (
	"context"

	"custody/internal/core/domain/model/certificate"
)

// CreateCertificateCommandHandler registers pending certificates. No number
// is allocated and no residue status is checked here; both happen at
// issuance, against the state current at that moment.
type CreateCertificateCommandHandler struct {
	uowFactory CertificateUoWFactory
}

// NewCreateCertificateCommandHandler creates a handler for certificate
// creation.
func NewCreateCertificateCommandHandler(
	uowFactory CertificateUoWFactory,
) CreateCertificateCommandHandler {
	return CreateCertificateCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle persists the new certificate in Pending status.
func (h *CreateCertificateCommandHandler) Handle(
	ctx context.Context,
	cmd CreateCertificateCommand,
) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	aggregate, err := certificate.NewCertificate(
		cmd.CertificateID(), cmd.RequestID(), cmd.ResidueIDs(), cmd.Holder(), cmd.DocumentRef())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.CertificateRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
