package commands

import (
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/request"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

var ErrCreateRequestCommandIsNotConstructed = errors.New(
	"CreateRequestCommand must be created via NewCreateRequestCommand constructor",
)

// LineItemSpec describes one waste type of a submitted service need.
type LineItemSpec struct {
	LineItemID  kernel.UUID
	WasteTypeID kernel.UUID
	ResidueIDs  []kernel.UUID
	Service     request.ServiceKind
}

// CreateRequestCommand decomposes a submitted logistics service need into a
// request with one line item per waste type, each starting at
// (Initiation, Initiation).
type CreateRequestCommand struct { //nolint:recvcheck //using for validation
	requestID kernel.UUID
	requester kernel.UUID
	provider  kernel.UUID
	items     []LineItemSpec

	guard guard.ConstructorGuard
}

// NewCreateRequestCommand creates a command to register a request.
func NewCreateRequestCommand(
	requestID kernel.UUID,
	requester kernel.UUID,
	provider kernel.UUID,
	items []LineItemSpec,
) (CreateRequestCommand, error) {
	cmd := CreateRequestCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setIDs(requestID, requester, provider),
		cmd.setItems(items),
	); err != nil {
		return CreateRequestCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateRequestCommand) Validate() error {
	return c.guard.Validate(ErrCreateRequestCommandIsNotConstructed)
}

// RequestID returns the identifier for the new request.
func (c CreateRequestCommand) RequestID() kernel.UUID {
	return c.requestID
}

// Requester returns the submitting party.
func (c CreateRequestCommand) Requester() kernel.UUID {
	return c.requester
}

// Provider returns the party performing the service.
func (c CreateRequestCommand) Provider() kernel.UUID {
	return c.provider
}

// Items returns the line item specifications.
func (c CreateRequestCommand) Items() []LineItemSpec {
	return append([]LineItemSpec(nil), c.items...)
}

func (c *CreateRequestCommand) setIDs(requestID, requester, provider kernel.UUID) error {
	if err := errors.Join(
		requestID.Validate(), requester.Validate(), provider.Validate()); err != nil {
		return err
	}
	c.requestID = requestID
	c.requester = requester
	c.provider = provider
	return nil
}

func (c *CreateRequestCommand) setItems(items []LineItemSpec) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	c.items = append([]LineItemSpec(nil), items...)
	return nil
}
