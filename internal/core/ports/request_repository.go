package ports

import (
	"context"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/request"
)

// RequestRepository defines the persistence contract for request aggregates,
// their line items, and the orders derived from them.
//
// Line items are their own concurrency unit: UpdateLineItem must fail with a
// StaleVersionError when the stored version no longer matches.
type RequestRepository interface {
	// Add persists a new request with all its line items.
	Add(ctx context.Context, aggregate *request.Request) error

	// Get retrieves a request with its line items.
	Get(ctx context.Context, id kernel.UUID) (*request.Request, error)

	// GetLineItem retrieves a single line item by id.
	GetLineItem(ctx context.Context, id kernel.UUID) (*request.LineItem, error)

	// UpdateLineItem persists a line item's stage/phase progress.
	// Fails with StaleVersionError on a lost optimistic-concurrency race.
	UpdateLineItem(ctx context.Context, item *request.LineItem) error

	// GetOpenLineItems retrieves line items not yet at
	// (Finalization, Finalization).
	GetOpenLineItems(ctx context.Context) ([]*request.LineItem, error)

	// AddOrder persists a scheduled order.
	AddOrder(ctx context.Context, order *request.Order) error

	// UpdateOrder persists an order's completion record.
	UpdateOrder(ctx context.Context, order *request.Order) error

	// GetOrdersByLineItem retrieves all orders derived from a line item.
	GetOrdersByLineItem(ctx context.Context, lineItemID kernel.UUID) ([]*request.Order, error)
}
