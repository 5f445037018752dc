package queries

import (
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/request"
	"custody/internal/pkg/guard"
)

var ErrGetOpenRequestsQueryIsNotConstructed = errors.New(
	"GetOpenRequestsQuery must be created via NewGetOpenRequestsQuery constructor",
)

// GetOpenRequestsQuery retrieves all line items still in flight: those whose
// stage or phase has not yet reached Finalization.
type GetOpenRequestsQuery struct {
	guard guard.ConstructorGuard
}

// NewGetOpenRequestsQuery creates a query for open line items.
func NewGetOpenRequestsQuery() GetOpenRequestsQuery {
	return GetOpenRequestsQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetOpenRequestsQuery) Validate() error {
	return q.guard.Validate(ErrGetOpenRequestsQueryIsNotConstructed)
}

// GetOpenRequestsQueryResponse is one open line item with its request
// context and current position on both progress axes.
type GetOpenRequestsQueryResponse struct {
	RequestID   kernel.UUID
	Requester   kernel.UUID
	Provider    kernel.UUID
	LineItemID  kernel.UUID
	WasteTypeID kernel.UUID
	Service     request.ServiceKind
	Stage       request.Stage
	Phase       request.Phase
}
