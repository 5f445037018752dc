package commands

import (
	"errors"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

var ErrRevokeCertificateCommandIsNotConstructed = errors.New(
	"RevokeCertificateCommand must be created via NewRevokeCertificateCommand constructor",
)

// RevokeCertificateCommand withdraws an issued certificate. The reason is
// mandatory for audit; revocation never alters the underlying residues.
type RevokeCertificateCommand struct { //nolint:recvcheck //using for validation
	certificateID kernel.UUID
	reason        string
	revokedAt     time.Time

	guard guard.ConstructorGuard
}

// NewRevokeCertificateCommand creates a command to revoke a certificate.
func NewRevokeCertificateCommand(
	certificateID kernel.UUID,
	reason string,
	revokedAt time.Time,
) (RevokeCertificateCommand, error) {
	cmd := RevokeCertificateCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCertificateID(certificateID),
		cmd.setReason(reason),
		cmd.setRevokedAt(revokedAt),
	); err != nil {
		return RevokeCertificateCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RevokeCertificateCommand) Validate() error {
	return c.guard.Validate(ErrRevokeCertificateCommandIsNotConstructed)
}

// CertificateID returns the certificate to revoke.
func (c RevokeCertificateCommand) CertificateID() kernel.UUID {
	return c.certificateID
}

// Reason returns the audit reason.
func (c RevokeCertificateCommand) Reason() string {
	return c.reason
}

// RevokedAt returns the revocation time.
func (c RevokeCertificateCommand) RevokedAt() time.Time {
	return c.revokedAt
}

func (c *RevokeCertificateCommand) setCertificateID(certificateID kernel.UUID) error {
	if err := certificateID.Validate(); err != nil {
		return err
	}
	c.certificateID = certificateID
	return nil
}

func (c *RevokeCertificateCommand) setReason(reason string) error {
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	c.reason = reason
	return nil
}

func (c *RevokeCertificateCommand) setRevokedAt(revokedAt time.Time) error {
	if revokedAt.IsZero() {
		return errs.NewValueIsRequiredError("revokedAt")
	}
	c.revokedAt = revokedAt
	return nil
}
