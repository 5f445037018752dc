package commands

import (
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

var ErrCreateCertificateCommandIsNotConstructed = errors.New(
	"CreateCertificateCommand must be created via NewCreateCertificateCommand constructor",
)

// CreateCertificateCommand registers a pending certificate covering the
// referenced residues. The covered residue set is fixed here; the number and
// the issuance preconditions belong to the separate issue step.
type CreateCertificateCommand struct { //nolint:recvcheck //using for validation
	certificateID kernel.UUID
	requestID     kernel.UUID
	residueIDs    []kernel.UUID
	holder        kernel.UUID
	documentRef   string

	guard guard.ConstructorGuard
}

// NewCreateCertificateCommand creates a command to register a pending
// certificate. documentRef may be empty until issuance.
func NewCreateCertificateCommand(
	certificateID kernel.UUID,
	requestID kernel.UUID,
	residueIDs []kernel.UUID,
	holder kernel.UUID,
	documentRef string,
) (CreateCertificateCommand, error) {
	cmd := CreateCertificateCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setIDs(certificateID, requestID, holder),
		cmd.setResidueIDs(residueIDs),
	); err != nil {
		return CreateCertificateCommand{}, err
	}
	cmd.documentRef = documentRef

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateCertificateCommand) Validate() error {
	return c.guard.Validate(ErrCreateCertificateCommandIsNotConstructed)
}

// CertificateID returns the identifier for the new certificate.
func (c CreateCertificateCommand) CertificateID() kernel.UUID {
	return c.certificateID
}

// RequestID returns the request the certificate is produced under.
func (c CreateCertificateCommand) RequestID() kernel.UUID {
	return c.requestID
}

// ResidueIDs returns the residues the certificate covers.
func (c CreateCertificateCommand) ResidueIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), c.residueIDs...)
}

// Holder returns the party the certificate is issued to.
func (c CreateCertificateCommand) Holder() kernel.UUID {
	return c.holder
}

// DocumentRef returns the external document reference.
func (c CreateCertificateCommand) DocumentRef() string {
	return c.documentRef
}

func (c *CreateCertificateCommand) setIDs(certificateID, requestID, holder kernel.UUID) error {
	if err := errors.Join(
		certificateID.Validate(), requestID.Validate(), holder.Validate()); err != nil {
		return err
	}
	c.certificateID = certificateID
	c.requestID = requestID
	c.holder = holder
	return nil
}

func (c *CreateCertificateCommand) setResidueIDs(residueIDs []kernel.UUID) error {
	if len(residueIDs) == 0 {
		return errs.NewValueIsRequiredError("residueIDs")
	}
	for _, id := range residueIDs {
		if err := id.Validate(); err != nil {
			return err
		}
	}
	c.residueIDs = append([]kernel.UUID(nil), residueIDs...)
	return nil
}
