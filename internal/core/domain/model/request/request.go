package request

import (
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

// AggregateKind names this aggregate in custody errors.
const AggregateKind = "request"

// Domain errors for request operations.
var (
	// ErrRequestIsNotConstructed is returned when using an improperly
	// initialized Request.
	ErrRequestIsNotConstructed = errors.New(
		"Request must be created via NewRequest or RestoreRequest constructor")
	// ErrLineItemNotFound is returned when a requested line item does not
	// belong to the request.
	ErrLineItemNotFound = errors.New("line item not found")
)

// Request is a submitted logistics service need between a requesting party
// and a providing party, decomposed into one line item per waste type. The
// request itself holds no progress state: progress lives on the line items,
// and the request is closed exactly when every line item reached
// (Finalization, Finalization).
type Request struct {
	id        kernel.UUID
	requester kernel.UUID
	provider  kernel.UUID
	lineItems []*LineItem

	guard guard.ConstructorGuard
}

// NewRequest creates a request over already-constructed line items.
func NewRequest(
	id kernel.UUID,
	requester kernel.UUID,
	provider kernel.UUID,
	lineItems []*LineItem,
) (*Request, error) {
	r := &Request{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setID(id),
		r.setParties(requester, provider),
		r.setLineItems(lineItems),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// RestoreRequest reconstructs a request from persistent storage.
func RestoreRequest(
	id kernel.UUID,
	requester kernel.UUID,
	provider kernel.UUID,
	lineItems []*LineItem,
) (*Request, error) {
	return NewRequest(id, requester, provider, lineItems)
}

// Validate ensures the Request instance was properly constructed.
func (r *Request) Validate() error {
	if r == nil {
		return ErrRequestIsNotConstructed
	}
	return r.guard.Validate(ErrRequestIsNotConstructed)
}

// ID returns the request's unique identifier.
func (r *Request) ID() kernel.UUID {
	return r.id
}

// Requester returns the party that submitted the request.
func (r *Request) Requester() kernel.UUID {
	return r.requester
}

// Provider returns the party performing the service.
func (r *Request) Provider() kernel.UUID {
	return r.provider
}

// LineItems returns the request's line items.
func (r *Request) LineItems() []*LineItem {
	return append([]*LineItem(nil), r.lineItems...)
}

// LineItem returns the line item with the given id.
func (r *Request) LineItem(id kernel.UUID) (*LineItem, error) {
	for _, item := range r.lineItems {
		if item.ID().IsEqual(id) {
			return item, nil
		}
	}
	return nil, errs.NewObjectNotFoundErrorWithCause("lineItemID", id, ErrLineItemNotFound)
}

// IsClosed reports whether every line item reached (Finalization,
// Finalization).
func (r *Request) IsClosed() bool {
	for _, item := range r.lineItems {
		if !item.IsClosed() {
			return false
		}
	}
	return true
}

// IsEqual compares two requests by identifier.
func (r *Request) IsEqual(other *Request) bool {
	return other != nil && r.id.IsEqual(other.id)
}

func (r *Request) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Request) setParties(requester kernel.UUID, provider kernel.UUID) error {
	if err := errors.Join(requester.Validate(), provider.Validate()); err != nil {
		return err
	}
	r.requester = requester
	r.provider = provider
	return nil
}

func (r *Request) setLineItems(lineItems []*LineItem) error {
	if len(lineItems) == 0 {
		return errs.NewValueIsRequiredError("lineItems")
	}
	for _, item := range lineItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	r.lineItems = append([]*LineItem(nil), lineItems...)
	return nil
}
