// Package certificaterepo persists certificate aggregates: an immutable
// header row carrying denormalized lifecycle state plus an append-only event
// table, mirroring the residue layout.
package certificaterepo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"custody/internal/core/domain/model/certificate"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
)

// CertificateDTO is the certificate header row. Number, Status and the
// timestamps are denormalized from the event log for querying; the events
// stay the source of truth.
type CertificateDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID   uuid.UUID `gorm:"type:uuid;index"`
	ResidueIDs  []byte    `gorm:"type:jsonb"`
	HolderID    uuid.UUID `gorm:"type:uuid;index"`
	DocumentRef string
	Number      int64 `gorm:"index"`
	Status      int
	IssuedAt    time.Time
	ExpiresAt   time.Time
	RevokedAt   time.Time
	Reason      string
	Version     int
}

// TableName overrides GORM's default naming to use "certificates".
func (CertificateDTO) TableName() string {
	return "certificates"
}

// CertificateEventDTO is one appended lifecycle event. EventID carries the
// idempotency guarantee through a unique index.
type CertificateEventDTO struct {
	Seq           int64     `gorm:"primaryKey;autoIncrement"`
	EventID       uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	CertificateID uuid.UUID `gorm:"type:uuid;index"`
	FromStatus    int
	ToStatus      int
	Kind          int
	OccurredAt    time.Time
	Payload       []byte `gorm:"type:jsonb"`
}

// TableName overrides GORM's default naming to use "certificate_events".
func (CertificateEventDTO) TableName() string {
	return "certificate_events"
}

// certificatePayloadDTO is the flat JSON form of both operation payloads.
type certificatePayloadDTO struct {
	Number    int64      `json:"number,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func fromDomain(aggregate *certificate.Certificate) (CertificateDTO, error) {
	ids := aggregate.ResidueIDs()
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return CertificateDTO{}, err
	}

	return CertificateDTO{
		ID:          aggregate.ID().Bytes(),
		RequestID:   aggregate.RequestID().Bytes(),
		ResidueIDs:  encoded,
		HolderID:    aggregate.Holder().Bytes(),
		DocumentRef: aggregate.DocumentRef(),
		Number:      aggregate.Number(),
		Status:      int(aggregate.Status()),
		IssuedAt:    aggregate.IssuedAt(),
		ExpiresAt:   aggregate.ExpiresAt(),
		RevokedAt:   aggregate.RevokedAt(),
		Reason:      aggregate.RevocationReason(),
		Version:     aggregate.Version(),
	}, nil
}

func eventRows(aggregate *certificate.Certificate) ([]CertificateEventDTO, error) {
	events := aggregate.Events()
	rows := make([]CertificateEventDTO, 0, len(events))

	for _, event := range events {
		payload, err := marshalPayload(event.Operation())
		if err != nil {
			return nil, err
		}

		rows = append(rows, CertificateEventDTO{
			EventID:       event.EventID().Bytes(),
			CertificateID: aggregate.ID().Bytes(),
			FromStatus:    int(event.FromStatus()),
			ToStatus:      int(event.ToStatus()),
			Kind:          int(event.Kind()),
			OccurredAt:    event.OccurredAt(),
			Payload:       payload,
		})
	}

	return rows, nil
}

func marshalPayload(op certificate.Operation) ([]byte, error) {
	var dto certificatePayloadDTO

	switch p := op.(type) {
	case certificate.IssueOp:
		issuedAt := p.IssuedAt
		dto.Number = p.Number
		dto.IssuedAt = &issuedAt
		if !p.ExpiresAt.IsZero() {
			expiresAt := p.ExpiresAt
			dto.ExpiresAt = &expiresAt
		}
	case certificate.RevokeOp:
		revokedAt := p.RevokedAt
		dto.Reason = p.Reason
		dto.RevokedAt = &revokedAt
	}

	return json.Marshal(dto)
}

func unmarshalPayload(kind certificate.OperationKind, raw []byte) (certificate.Operation, error) {
	var dto certificatePayloadDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, err
	}

	switch kind {
	case certificate.Issue:
		op := certificate.IssueOp{Number: dto.Number}
		if dto.IssuedAt != nil {
			op.IssuedAt = *dto.IssuedAt
		}
		if dto.ExpiresAt != nil {
			op.ExpiresAt = *dto.ExpiresAt
		}
		return op, nil
	case certificate.Revoke:
		op := certificate.RevokeOp{Reason: dto.Reason}
		if dto.RevokedAt != nil {
			op.RevokedAt = *dto.RevokedAt
		}
		return op, nil
	default:
		return nil, errs.NewValueIsInvalidError("operation kind is invalid")
	}
}

func toDomainEvent(dto CertificateEventDTO) (certificate.Event, error) {
	id, err := kernel.UUIDFromBytes(dto.EventID[:])
	if err != nil {
		return certificate.Event{}, err
	}

	op, err := unmarshalPayload(certificate.OperationKind(dto.Kind), dto.Payload)
	if err != nil {
		return certificate.Event{}, err
	}

	return certificate.NewEvent(
		id,
		certificate.Status(dto.FromStatus),
		certificate.Status(dto.ToStatus),
		dto.OccurredAt,
		op,
	)
}

func toDomain(dto CertificateDTO, eventDTOs []CertificateEventDTO) (*certificate.Certificate, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	requestID, err := kernel.UUIDFromBytes(dto.RequestID[:])
	if err != nil {
		return nil, err
	}
	holder, err := kernel.UUIDFromBytes(dto.HolderID[:])
	if err != nil {
		return nil, err
	}

	var raw []string
	if err = json.Unmarshal(dto.ResidueIDs, &raw); err != nil {
		return nil, err
	}
	residueIDs := make([]kernel.UUID, 0, len(raw))
	for _, s := range raw {
		residueID, idErr := kernel.UUIDFromString(s)
		if idErr != nil {
			return nil, idErr
		}
		residueIDs = append(residueIDs, residueID)
	}

	events := make([]certificate.Event, 0, len(eventDTOs))
	for _, eventDTO := range eventDTOs {
		event, eventErr := toDomainEvent(eventDTO)
		if eventErr != nil {
			return nil, kernel.NewCorruptEventLogError(
				certificate.AggregateKind, id, eventDTO.Seq, eventErr.Error())
		}
		events = append(events, event)
	}

	return certificate.RestoreCertificate(
		id, requestID, residueIDs, holder, dto.DocumentRef, events)
}
