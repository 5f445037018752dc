package commands

import (
	"errors"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

var ErrIssueCertificateCommandIsNotConstructed = errors.New(
	"IssueCertificateCommand must be created via NewIssueCertificateCommand constructor",
)

// IssueCertificateCommand issues an existing pending certificate. The number
// is drawn from the gapless sequence of the issuing scope inside the same
// transaction.
type IssueCertificateCommand struct { //nolint:recvcheck //using for validation
	certificateID kernel.UUID
	scope         string
	issuedAt      time.Time
	expiresAt     time.Time

	guard guard.ConstructorGuard
}

// NewIssueCertificateCommand creates a command to issue a certificate.
// expiresAt may be zero for certificates that never expire.
func NewIssueCertificateCommand(
	certificateID kernel.UUID,
	scope string,
	issuedAt time.Time,
	expiresAt time.Time,
) (IssueCertificateCommand, error) {
	cmd := IssueCertificateCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCertificateID(certificateID),
		cmd.setScope(scope),
		cmd.setIssuedAt(issuedAt),
	); err != nil {
		return IssueCertificateCommand{}, err
	}
	cmd.expiresAt = expiresAt

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c IssueCertificateCommand) Validate() error {
	return c.guard.Validate(ErrIssueCertificateCommandIsNotConstructed)
}

// CertificateID returns the certificate to issue.
func (c IssueCertificateCommand) CertificateID() kernel.UUID {
	return c.certificateID
}

// Scope returns the issuing scope the number sequence is gapless within.
func (c IssueCertificateCommand) Scope() string {
	return c.scope
}

// IssuedAt returns the issuance time.
func (c IssueCertificateCommand) IssuedAt() time.Time {
	return c.issuedAt
}

// ExpiresAt returns the expiry time, zero when the certificate never
// expires.
func (c IssueCertificateCommand) ExpiresAt() time.Time {
	return c.expiresAt
}

func (c *IssueCertificateCommand) setCertificateID(certificateID kernel.UUID) error {
	if err := certificateID.Validate(); err != nil {
		return err
	}
	c.certificateID = certificateID
	return nil
}

func (c *IssueCertificateCommand) setScope(scope string) error {
	if scope == "" {
		return errs.NewValueIsRequiredError("scope")
	}
	c.scope = scope
	return nil
}

func (c *IssueCertificateCommand) setIssuedAt(issuedAt time.Time) error {
	if issuedAt.IsZero() {
		return errs.NewValueIsRequiredError("issuedAt")
	}
	c.issuedAt = issuedAt
	return nil
}
