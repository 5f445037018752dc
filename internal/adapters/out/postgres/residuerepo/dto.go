// Package residuerepo persists residue aggregates as an append-only event
// table plus a denormalized read-model row per residue. The event rows are
// the source of truth; the read model exists for optimistic locking and
// reporting queries.
package residuerepo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/residue"
	"custody/internal/pkg/errs"
)

// ResidueDTO is the read-model row of one residue.
type ResidueDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	WasteTypeID uuid.UUID `gorm:"type:uuid;index"`
	OwnerID     uuid.UUID `gorm:"type:uuid;index"`
	LocationID  uuid.UUID `gorm:"type:uuid;index"`
	Status      int
	Amount      decimal.Decimal `gorm:"type:numeric"`
	Unit        int
	Version     int
}

// TableName overrides GORM's default naming to use "residues".
func (ResidueDTO) TableName() string {
	return "residues"
}

// ResidueEventDTO is one appended custody event. Seq is the global append
// order shared by all residues; the balance projector consumes events in Seq
// order. EventID carries the idempotency guarantee through a unique index:
// re-inserting a delivered event is a silent no-op.
//
// OwnerID, FacilityID, Amount and Unit denormalize the read-model values
// after the event applied, so the projector never replays aggregates.
// For adjustments Amount is the signed quantity delta.
type ResidueEventDTO struct {
	Seq         int64     `gorm:"primaryKey;autoIncrement"`
	EventID     uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	ResidueID   uuid.UUID `gorm:"type:uuid;index"`
	WasteTypeID uuid.UUID `gorm:"type:uuid"`
	OwnerID     uuid.UUID `gorm:"type:uuid"`
	FacilityID  uuid.UUID `gorm:"type:uuid"`
	FromStatus  int
	ToStatus    int
	Kind        int
	Amount      decimal.Decimal `gorm:"type:numeric"`
	Unit        int
	OccurredAt  time.Time
	Payload     []byte `gorm:"type:jsonb"`
}

// TableName overrides GORM's default naming to use "residue_events".
func (ResidueEventDTO) TableName() string {
	return "residue_events"
}

// payloadDTO is the flat JSON form of every operation payload. Fields not
// used by the operation kind stay empty; decimal amounts are serialized as
// strings to keep them exact.
type payloadDTO struct {
	WasteTypeID    string             `json:"waste_type_id,omitempty"`
	Amount         string             `json:"amount,omitempty"`
	Unit           int                `json:"unit,omitempty"`
	Owner          string             `json:"owner,omitempty"`
	Location       string             `json:"location,omitempty"`
	FromLocation   string             `json:"from_location,omitempty"`
	ToLocation     string             `json:"to_location,omitempty"`
	Vehicle        string             `json:"vehicle,omitempty"`
	FromOwner      string             `json:"from_owner,omitempty"`
	ToOwner        string             `json:"to_owner,omitempty"`
	Reason         string             `json:"reason,omitempty"`
	Counterparty   int                `json:"counterparty,omitempty"`
	CounterpartyID string             `json:"counterparty_id,omitempty"`
	Outputs        []outputPayloadDTO `json:"outputs,omitempty"`
}

type outputPayloadDTO struct {
	ResidueID   string `json:"residue_id"`
	WasteTypeID string `json:"waste_type_id"`
	Amount      string `json:"amount"`
	Unit        int    `json:"unit"`
}

func fromDomain(aggregate *residue.Residue) ResidueDTO {
	return ResidueDTO{
		ID:          aggregate.ID().Bytes(),
		WasteTypeID: aggregate.WasteTypeID().Bytes(),
		OwnerID:     aggregate.Owner().Bytes(),
		LocationID:  aggregate.Location().Bytes(),
		Status:      int(aggregate.Status()),
		Amount:      aggregate.Quantity().Amount(),
		Unit:        int(aggregate.Quantity().Unit()),
		Version:     aggregate.Version(),
	}
}

// eventRows converts the aggregate's full event log into event rows,
// re-folding owner, facility and quantity along the way so each row carries
// the denormalized state after its event.
func eventRows(aggregate *residue.Residue) ([]ResidueEventDTO, error) {
	events := aggregate.Events()
	rows := make([]ResidueEventDTO, 0, len(events))

	var owner, facility kernel.UUID
	var amount decimal.Decimal
	var unit kernel.Unit

	for _, event := range events {
		rowAmount := amount

		switch op := event.Operation().(type) {
		case residue.GenerationOp:
			owner = op.Owner
			facility = op.Location
			amount = op.Quantity.Amount()
			unit = op.Quantity.Unit()
			rowAmount = amount
		case residue.RelocationOp:
			facility = op.ToLocation
			rowAmount = amount
		case residue.TransferOp:
			owner = op.ToOwner
		case residue.StorageOp:
			facility = op.Location
			rowAmount = amount
		case residue.AdjustmentOp:
			rowAmount = op.NewQuantity.Amount().Sub(amount)
			amount = op.NewQuantity.Amount()
		case residue.HandoverOp:
			owner = op.CounterpartyID
			rowAmount = amount
		case residue.TransformationOp:
			rowAmount = amount
		}

		payload, err := marshalPayload(event.Operation())
		if err != nil {
			return nil, err
		}

		rows = append(rows, ResidueEventDTO{
			EventID:     event.EventID().Bytes(),
			ResidueID:   aggregate.ID().Bytes(),
			WasteTypeID: aggregate.WasteTypeID().Bytes(),
			OwnerID:     owner.Bytes(),
			FacilityID:  facility.Bytes(),
			FromStatus:  int(event.FromStatus()),
			ToStatus:    int(event.ToStatus()),
			Kind:        int(event.Kind()),
			Amount:      rowAmount,
			Unit:        int(unit),
			OccurredAt:  event.OccurredAt(),
			Payload:     payload,
		})
	}

	return rows, nil
}

func marshalPayload(op residue.Operation) ([]byte, error) {
	var dto payloadDTO

	switch p := op.(type) {
	case residue.GenerationOp:
		dto.WasteTypeID = p.WasteTypeID.String()
		dto.Amount = p.Quantity.Amount().String()
		dto.Unit = int(p.Quantity.Unit())
		dto.Owner = p.Owner.String()
		dto.Location = p.Location.String()
	case residue.RelocationOp:
		dto.FromLocation = p.FromLocation.String()
		dto.ToLocation = p.ToLocation.String()
		dto.Vehicle = p.Vehicle
	case residue.TransferOp:
		dto.FromOwner = p.FromOwner.String()
		dto.ToOwner = p.ToOwner.String()
	case residue.StorageOp:
		dto.Location = p.Location.String()
	case residue.AdjustmentOp:
		dto.Amount = p.NewQuantity.Amount().String()
		dto.Unit = int(p.NewQuantity.Unit())
		dto.Reason = p.Reason
	case residue.HandoverOp:
		dto.Counterparty = int(p.Counterparty)
		dto.CounterpartyID = p.CounterpartyID.String()
	case residue.TransformationOp:
		dto.Outputs = make([]outputPayloadDTO, 0, len(p.Outputs))
		for _, out := range p.Outputs {
			dto.Outputs = append(dto.Outputs, outputPayloadDTO{
				ResidueID:   out.ResidueID.String(),
				WasteTypeID: out.WasteTypeID.String(),
				Amount:      out.Quantity.Amount().String(),
				Unit:        int(out.Quantity.Unit()),
			})
		}
	}

	return json.Marshal(dto)
}

func unmarshalPayload(kind residue.OperationKind, raw []byte) (residue.Operation, error) {
	var dto payloadDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, err
	}

	switch kind {
	case residue.Generation:
		wasteTypeID, err := kernel.UUIDFromString(dto.WasteTypeID)
		if err != nil {
			return nil, err
		}
		owner, err := kernel.UUIDFromString(dto.Owner)
		if err != nil {
			return nil, err
		}
		location, err := kernel.UUIDFromString(dto.Location)
		if err != nil {
			return nil, err
		}
		quantity, err := kernel.NewQuantityFromString(dto.Amount, kernel.Unit(dto.Unit))
		if err != nil {
			return nil, err
		}
		return residue.GenerationOp{
			WasteTypeID: wasteTypeID,
			Quantity:    quantity,
			Owner:       owner,
			Location:    location,
		}, nil
	case residue.Relocation:
		from, err := kernel.UUIDFromString(dto.FromLocation)
		if err != nil {
			return nil, err
		}
		to, err := kernel.UUIDFromString(dto.ToLocation)
		if err != nil {
			return nil, err
		}
		return residue.RelocationOp{FromLocation: from, ToLocation: to, Vehicle: dto.Vehicle}, nil
	case residue.Transfer:
		from, err := kernel.UUIDFromString(dto.FromOwner)
		if err != nil {
			return nil, err
		}
		to, err := kernel.UUIDFromString(dto.ToOwner)
		if err != nil {
			return nil, err
		}
		return residue.TransferOp{FromOwner: from, ToOwner: to}, nil
	case residue.Storage:
		location, err := kernel.UUIDFromString(dto.Location)
		if err != nil {
			return nil, err
		}
		return residue.StorageOp{Location: location}, nil
	case residue.Adjustment:
		quantity, err := kernel.NewQuantityFromString(dto.Amount, kernel.Unit(dto.Unit))
		if err != nil {
			return nil, err
		}
		return residue.AdjustmentOp{NewQuantity: quantity, Reason: dto.Reason}, nil
	case residue.Handover:
		counterpartyID, err := kernel.UUIDFromString(dto.CounterpartyID)
		if err != nil {
			return nil, err
		}
		return residue.HandoverOp{
			Counterparty:   residue.CounterpartyKind(dto.Counterparty),
			CounterpartyID: counterpartyID,
		}, nil
	case residue.Transformation:
		outputs := make([]residue.TransformationOutput, 0, len(dto.Outputs))
		for _, out := range dto.Outputs {
			residueID, err := kernel.UUIDFromString(out.ResidueID)
			if err != nil {
				return nil, err
			}
			wasteTypeID, err := kernel.UUIDFromString(out.WasteTypeID)
			if err != nil {
				return nil, err
			}
			quantity, err := kernel.NewQuantityFromString(out.Amount, kernel.Unit(out.Unit))
			if err != nil {
				return nil, err
			}
			outputs = append(outputs, residue.TransformationOutput{
				ResidueID:   residueID,
				WasteTypeID: wasteTypeID,
				Quantity:    quantity,
			})
		}
		return residue.TransformationOp{Outputs: outputs}, nil
	default:
		return nil, errs.NewValueIsInvalidError("operation kind is invalid")
	}
}

// toDomainEvent rebuilds a custody event from its row.
func toDomainEvent(dto ResidueEventDTO) (residue.Event, error) {
	id, err := kernel.UUIDFromBytes(dto.EventID[:])
	if err != nil {
		return residue.Event{}, err
	}

	op, err := unmarshalPayload(residue.OperationKind(dto.Kind), dto.Payload)
	if err != nil {
		return residue.Event{}, err
	}

	return residue.NewEvent(
		id,
		residue.Status(dto.FromStatus),
		residue.Status(dto.ToStatus),
		dto.OccurredAt,
		op,
	)
}
