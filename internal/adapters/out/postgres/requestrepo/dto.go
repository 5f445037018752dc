// Package requestrepo persists request aggregates, their line items, and the
// orders derived from them.
package requestrepo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/request"
)

// RequestDTO is the request header row.
type RequestDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequesterID uuid.UUID `gorm:"type:uuid;index"`
	ProviderID  uuid.UUID `gorm:"type:uuid;index"`
}

// TableName overrides GORM's default naming to use "requests".
func (RequestDTO) TableName() string {
	return "requests"
}

// LineItemDTO is one line item with its position on both progress axes.
// ResidueIDs is a JSON array of canonical UUID strings; residues are shared
// references, not child rows of the line item.
type LineItemDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID   uuid.UUID `gorm:"type:uuid;index"`
	WasteTypeID uuid.UUID `gorm:"type:uuid"`
	ResidueIDs  []byte    `gorm:"type:jsonb"`
	Service     int
	Stage       int
	Phase       int
	Version     int
}

// TableName overrides GORM's default naming to use "line_items".
func (LineItemDTO) TableName() string {
	return "line_items"
}

// OrderDTO is one scheduled execution order. The management record columns
// are null until the order completes.
type OrderDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	LineItemID    uuid.UUID `gorm:"type:uuid;index"`
	Vehicle       string
	ResponsibleID uuid.UUID `gorm:"type:uuid"`
	WindowStart   time.Time
	WindowEnd     time.Time

	RecordID      *uuid.UUID       `gorm:"type:uuid"`
	RecordAmount  *decimal.Decimal `gorm:"type:numeric"`
	RecordUnit    *int
	RecordService *int
	OriginID      *uuid.UUID `gorm:"type:uuid"`
	DestinationID *uuid.UUID `gorm:"type:uuid"`
	CompletedAt   *time.Time
}

// TableName overrides GORM's default naming to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

func requestFromDomain(aggregate *request.Request) RequestDTO {
	return RequestDTO{
		ID:          aggregate.ID().Bytes(),
		RequesterID: aggregate.Requester().Bytes(),
		ProviderID:  aggregate.Provider().Bytes(),
	}
}

func lineItemFromDomain(item *request.LineItem) (LineItemDTO, error) {
	ids := item.ResidueIDs()
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return LineItemDTO{}, err
	}

	return LineItemDTO{
		ID:          item.ID().Bytes(),
		RequestID:   item.RequestID().Bytes(),
		WasteTypeID: item.WasteTypeID().Bytes(),
		ResidueIDs:  encoded,
		Service:     int(item.Service()),
		Stage:       int(item.Stage()),
		Phase:       int(item.Phase()),
		Version:     item.Version(),
	}, nil
}

func lineItemToDomain(dto LineItemDTO) (*request.LineItem, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	requestID, err := kernel.UUIDFromBytes(dto.RequestID[:])
	if err != nil {
		return nil, err
	}
	wasteTypeID, err := kernel.UUIDFromBytes(dto.WasteTypeID[:])
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

	return request.RestoreLineItem(
		id,
		requestID,
		wasteTypeID,
		residueIDs,
		request.ServiceKind(dto.Service),
		request.Stage(dto.Stage),
		request.Phase(dto.Phase),
		dto.Version,
	)
}

func requestToDomain(dto RequestDTO, itemDTOs []LineItemDTO) (*request.Request, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	requester, err := kernel.UUIDFromBytes(dto.RequesterID[:])
	if err != nil {
		return nil, err
	}
	provider, err := kernel.UUIDFromBytes(dto.ProviderID[:])
	if err != nil {
		return nil, err
	}

	items := make([]*request.LineItem, 0, len(itemDTOs))
	for _, itemDTO := range itemDTOs {
		item, itemErr := lineItemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return request.RestoreRequest(id, requester, provider, items)
}

func orderFromDomain(o *request.Order) OrderDTO {
	dto := OrderDTO{
		ID:            o.ID().Bytes(),
		LineItemID:    o.LineItemID().Bytes(),
		Vehicle:       o.Vehicle(),
		ResponsibleID: o.Responsible().Bytes(),
		WindowStart:   o.WindowStart(),
		WindowEnd:     o.WindowEnd(),
	}

	if record := o.Record(); record != nil {
		recordID := record.ID().Bytes()
		amount := record.Quantity().Amount()
		unit := int(record.Quantity().Unit())
		service := int(record.Service())
		origin := record.Origin().Bytes()
		destination := record.Destination().Bytes()
		completedAt := record.CompletedAt()

		dto.RecordID = &recordID
		dto.RecordAmount = &amount
		dto.RecordUnit = &unit
		dto.RecordService = &service
		dto.OriginID = &origin
		dto.DestinationID = &destination
		dto.CompletedAt = &completedAt
	}

	return dto
}

func orderToDomain(dto OrderDTO) (*request.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	lineItemID, err := kernel.UUIDFromBytes(dto.LineItemID[:])
	if err != nil {
		return nil, err
	}
	responsible, err := kernel.UUIDFromBytes(dto.ResponsibleID[:])
	if err != nil {
		return nil, err
	}

	var record *request.ManagementRecord
	if dto.RecordID != nil {
		recordID, recordErr := kernel.UUIDFromBytes((*dto.RecordID)[:])
		if recordErr != nil {
			return nil, recordErr
		}
		origin, recordErr := kernel.UUIDFromBytes((*dto.OriginID)[:])
		if recordErr != nil {
			return nil, recordErr
		}
		destination, recordErr := kernel.UUIDFromBytes((*dto.DestinationID)[:])
		if recordErr != nil {
			return nil, recordErr
		}
		quantity, recordErr := kernel.NewQuantity(*dto.RecordAmount, kernel.Unit(*dto.RecordUnit))
		if recordErr != nil {
			return nil, recordErr
		}

		restored, recordErr := request.NewManagementRecord(
			recordID, id, quantity, origin, destination,
			request.ServiceKind(*dto.RecordService), *dto.CompletedAt)
		if recordErr != nil {
			return nil, recordErr
		}
		record = &restored
	}

	return request.RestoreOrder(
		id, lineItemID, dto.Vehicle, responsible, dto.WindowStart, dto.WindowEnd, record)
}
