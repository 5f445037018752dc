package certificate

import (
	"errors"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
)

// AggregateKind names this aggregate in custody errors.
const AggregateKind = "certificate"

// ErrCertificateIsNotConstructed is returned when a Certificate instance was
// not created through NewCertificate or RestoreCertificate.
var ErrCertificateIsNotConstructed = errors.New(
	"Certificate must be created via NewCertificate or RestoreCertificate constructor")

// Certificate attests completed treatment or disposal of one or more
// residues. It is a document aggregate, not a custody aggregate: revoking it
// never rolls back the physical operations it covers.
//
// Invariants:
//   - The gapless number is assigned exactly once, by the first Issue event.
//     Before issuance Number is zero.
//   - A revoked certificate keeps its number; numbers are never reused.
//   - The covered residue set is fixed at creation.
type Certificate struct {
	id          kernel.UUID
	requestID   kernel.UUID
	residueIDs  []kernel.UUID
	holder      kernel.UUID
	documentRef string

	number    int64
	status    Status
	issuedAt  time.Time
	expiresAt time.Time
	revokedAt time.Time
	reason    string

	version int
	log     *kernel.EventLog[Event]

	isConstructed bool
}

// NewCertificate creates a pending certificate covering the given residues on
// behalf of the holder party. documentRef points at the external paper or
// scan backing the attestation and may be empty until issuance.
func NewCertificate(
	id kernel.UUID,
	requestID kernel.UUID,
	residueIDs []kernel.UUID,
	holder kernel.UUID,
	documentRef string,
) (*Certificate, error) {
	if err := errors.Join(id.Validate(), requestID.Validate(), holder.Validate()); err != nil {
		return nil, err
	}
	if len(residueIDs) == 0 {
		return nil, errs.NewValueIsRequiredError("residueIDs")
	}
	for _, residueID := range residueIDs {
		if err := residueID.Validate(); err != nil {
			return nil, err
		}
	}

	return &Certificate{
		id:            id,
		requestID:     requestID,
		residueIDs:    append([]kernel.UUID(nil), residueIDs...),
		holder:        holder,
		documentRef:   documentRef,
		status:        Pending,
		version:       1,
		log:           kernel.NewEventLog[Event](),
		isConstructed: true,
	}, nil
}

// RestoreCertificate rebuilds a certificate from its creation fields and the
// persisted event log. Unlike a residue, a certificate's creation is not an
// event, so an empty log is a valid pending certificate.
func RestoreCertificate(
	id kernel.UUID,
	requestID kernel.UUID,
	residueIDs []kernel.UUID,
	holder kernel.UUID,
	documentRef string,
	events []Event,
) (*Certificate, error) {
	c, err := NewCertificate(id, requestID, residueIDs, holder, documentRef)
	if err != nil {
		return nil, err
	}

	for i, event := range events {
		if applyErr := c.Apply(event); applyErr != nil {
			return nil, kernel.NewCorruptEventLogError(AggregateKind, id, int64(i), applyErr.Error())
		}
	}

	return c, nil
}

// Validate ensures the Certificate instance was properly constructed.
func (c *Certificate) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCertificateIsNotConstructed
	}
	return nil
}

// ID returns the certificate's unique identifier.
func (c *Certificate) ID() kernel.UUID {
	return c.id
}

// RequestID returns the request this certificate was produced under.
func (c *Certificate) RequestID() kernel.UUID {
	return c.requestID
}

// ResidueIDs returns the covered residues.
func (c *Certificate) ResidueIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), c.residueIDs...)
}

// Holder returns the party the certificate is issued to.
func (c *Certificate) Holder() kernel.UUID {
	return c.holder
}

// DocumentRef returns the external document reference.
func (c *Certificate) DocumentRef() string {
	return c.documentRef
}

// Number returns the gapless certificate number, zero before issuance.
func (c *Certificate) Number() int64 {
	return c.number
}

// Status returns the current lifecycle status.
func (c *Certificate) Status() Status {
	return c.status
}

// IssuedAt returns the issuance time, zero before issuance.
func (c *Certificate) IssuedAt() time.Time {
	return c.issuedAt
}

// ExpiresAt returns the expiry time, zero when the certificate never expires.
func (c *Certificate) ExpiresAt() time.Time {
	return c.expiresAt
}

// RevokedAt returns the revocation time, zero unless revoked.
func (c *Certificate) RevokedAt() time.Time {
	return c.revokedAt
}

// RevocationReason returns the audit reason, empty unless revoked.
func (c *Certificate) RevocationReason() string {
	return c.reason
}

// Version returns the optimistic concurrency token.
func (c *Certificate) Version() int {
	return c.version
}

// Events returns the ordered event log in append order.
func (c *Certificate) Events() []Event {
	return c.log.Events()
}

// IsEqual compares two certificates by identifier.
func (c *Certificate) IsEqual(other *Certificate) bool {
	return other != nil && c.id.IsEqual(other.id)
}

// Apply folds a lifecycle event into the certificate. Same discipline as a
// residue: idempotent on event id, declared fromStatus must match, the
// (from, kind, to) triple must be in the transition table, rejection leaves
// the certificate untouched.
func (c *Certificate) Apply(event Event) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := event.Validate(); err != nil {
		return err
	}

	if c.log.Contains(event.EventID()) {
		return nil
	}

	if event.FromStatus() != c.status {
		return kernel.NewInvalidTransitionError(AggregateKind, c.id,
			event.FromStatus().String(), event.Kind().String(), event.ToStatus().String())
	}

	if !c.status.CanTransition(event.Kind(), event.ToStatus()) {
		return kernel.NewInvalidTransitionError(AggregateKind, c.id,
			c.status.String(), event.Kind().String(), event.ToStatus().String())
	}

	switch op := event.Operation().(type) {
	case IssueOp:
		c.number = op.Number
		c.issuedAt = op.IssuedAt
		c.expiresAt = op.ExpiresAt
	case RevokeOp:
		c.revokedAt = op.RevokedAt
		c.reason = op.Reason
	default:
		return kernel.NewInvalidTransitionError(AggregateKind, c.id,
			c.status.String(), event.Kind().String(), event.ToStatus().String())
	}

	c.status = event.ToStatus()
	c.log.Append(event)
	c.version++

	return nil
}
