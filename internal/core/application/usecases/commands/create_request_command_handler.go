package commands

import (
	"context"

	"custody/internal/core/domain/model/request"
	"custody/internal/core/ports"
)

// CreateRequestCommandHandler registers submitted service needs as request
// aggregates. Both parties are resolved against the directory before the
// request is accepted.
type CreateRequestCommandHandler struct {
	uowFactory RequestUoWFactory
	directory  ports.Directory
}

// NewCreateRequestCommandHandler creates a handler for request registration.
func NewCreateRequestCommandHandler(
	uowFactory RequestUoWFactory,
	directory ports.Directory,
) CreateRequestCommandHandler {
	return CreateRequestCommandHandler{
		uowFactory: uowFactory,
		directory:  directory,
	}
}

// Handle decomposes the command into line items and persists the request in
// one transaction.
func (h *CreateRequestCommandHandler) Handle(ctx context.Context, cmd CreateRequestCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if _, err := h.directory.ResolveParty(ctx, cmd.Requester()); err != nil {
		return err
	}
	if _, err := h.directory.ResolveParty(ctx, cmd.Provider()); err != nil {
		return err
	}

	lineItems := make([]*request.LineItem, 0, len(cmd.Items()))
	for _, spec := range cmd.Items() {
		item, err := request.NewLineItem(
			spec.LineItemID, cmd.RequestID(), spec.WasteTypeID, spec.ResidueIDs, spec.Service)
		if err != nil {
			return err
		}
		lineItems = append(lineItems, item)
	}

	aggregate, err := request.NewRequest(
		cmd.RequestID(), cmd.Requester(), cmd.Provider(), lineItems)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.RequestRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
