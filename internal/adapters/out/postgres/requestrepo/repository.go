package requestrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/request"
	"custody/internal/pkg/errs"
)

// GormRequestRepository implements RequestRepository using GORM.
type GormRequestRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormRequestRepository creates a new GORM request repository.
func NewGormRequestRepository(db *gorm.DB, tracker aggregateTracker) *GormRequestRepository {
	return &GormRequestRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new request with all its line items.
func (r *GormRequestRepository) Add(ctx context.Context, aggregate *request.Request) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := requestFromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	for _, item := range aggregate.LineItems() {
		itemDTO, err := lineItemFromDomain(item)
		if err != nil {
			return err
		}
		if err = r.db.WithContext(ctx).Create(&itemDTO).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a request with all its line items.
func (r *GormRequestRepository) Get(ctx context.Context, id kernel.UUID) (*request.Request, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RequestDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("request", id.String())
		}
		return nil, err
	}

	var itemDTOs []LineItemDTO
	err := r.db.WithContext(ctx).
		Order("id").
		Find(&itemDTOs, "request_id = ?", id.Bytes()).Error
	if err != nil {
		return nil, err
	}

	return requestToDomain(dto, itemDTOs)
}

// GetLineItem retrieves one line item by id.
func (r *GormRequestRepository) GetLineItem(ctx context.Context, id kernel.UUID) (*request.LineItem, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto LineItemDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("lineItem", id.String())
		}
		return nil, err
	}

	return lineItemToDomain(dto)
}

// UpdateLineItem swaps the line item row under optimistic version check.
// Losing the race returns a StaleVersionError; the caller retries from a
// fresh GetLineItem.
func (r *GormRequestRepository) UpdateLineItem(ctx context.Context, item *request.LineItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	dto, err := lineItemFromDomain(item)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&LineItemDTO{}).
		Where("id = ? AND version < ?", dto.ID, dto.Version).
		Updates(map[string]any{
			"stage":   dto.Stage,
			"phase":   dto.Phase,
			"version": dto.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return kernel.NewStaleVersionError(request.LineItemKind, item.ID(), item.Version())
	}

	r.tracker.TrackAggregate(item.ID(), item)
	return nil
}

// GetOpenLineItems retrieves all line items not yet fully finalized.
func (r *GormRequestRepository) GetOpenLineItems(ctx context.Context) ([]*request.LineItem, error) {
	var dtos []LineItemDTO
	err := r.db.WithContext(ctx).
		Order("id").
		Find(&dtos, "stage != ? OR phase != ?",
			int(request.StageFinalization), int(request.PhaseFinalization)).Error
	if err != nil {
		return nil, err
	}

	items := make([]*request.LineItem, 0, len(dtos))
	for _, dto := range dtos {
		item, itemErr := lineItemToDomain(dto)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return items, nil
}

// AddOrder saves a new scheduled order.
func (r *GormRequestRepository) AddOrder(ctx context.Context, order *request.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}

	dto := orderFromDomain(order)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(order.ID(), order)
	return nil
}

// UpdateOrder saves an existing order, including its management record once
// completed.
func (r *GormRequestRepository) UpdateOrder(ctx context.Context, order *request.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}

	dto := orderFromDomain(order)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{
			"vehicle":        dto.Vehicle,
			"responsible_id": dto.ResponsibleID,
			"window_start":   dto.WindowStart,
			"window_end":     dto.WindowEnd,
			"record_id":      dto.RecordID,
			"record_amount":  dto.RecordAmount,
			"record_unit":    dto.RecordUnit,
			"record_service": dto.RecordService,
			"origin_id":      dto.OriginID,
			"destination_id": dto.DestinationID,
			"completed_at":   dto.CompletedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", order.ID().String())
	}

	r.tracker.TrackAggregate(order.ID(), order)
	return nil
}

// GetOrdersByLineItem retrieves the orders derived from one line item.
func (r *GormRequestRepository) GetOrdersByLineItem(
	ctx context.Context,
	lineItemID kernel.UUID,
) ([]*request.Order, error) {
	if err := lineItemID.Validate(); err != nil {
		return nil, err
	}

	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Order("window_start").
		Find(&dtos, "line_item_id = ?", lineItemID.Bytes()).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*request.Order, 0, len(dtos))
	for _, dto := range dtos {
		order, orderErr := orderToDomain(dto)
		if orderErr != nil {
			return nil, orderErr
		}
		orders = append(orders, order)
	}

	return orders, nil
}
