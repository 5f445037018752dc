// Package http exposes the custody workflow over a REST API.
package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"custody/internal/core/application/usecases/commands"
	"custody/internal/core/application/usecases/queries"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/residue"
	"custody/internal/pkg/errs"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	generateResidueHandler   commands.GenerateResidueCommandHandler
	applyResidueEventHandler commands.ApplyResidueEventCommandHandler
	createRequestHandler     commands.CreateRequestCommandHandler
	advanceLineItemHandler   commands.AdvanceLineItemCommandHandler
	createCertificateHandler commands.CreateCertificateCommandHandler
	issueCertificateHandler  commands.IssueCertificateCommandHandler
	revokeCertificateHandler commands.RevokeCertificateCommandHandler

	// Query handlers
	getBalancesHandler       queries.GetBalancesQueryHandler
	getResidueHistoryHandler queries.GetResidueHistoryQueryHandler
	getOpenRequestsHandler   queries.GetOpenRequestsQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	generateResidueHandler commands.GenerateResidueCommandHandler,
	applyResidueEventHandler commands.ApplyResidueEventCommandHandler,
	createRequestHandler commands.CreateRequestCommandHandler,
	advanceLineItemHandler commands.AdvanceLineItemCommandHandler,
	createCertificateHandler commands.CreateCertificateCommandHandler,
	issueCertificateHandler commands.IssueCertificateCommandHandler,
	revokeCertificateHandler commands.RevokeCertificateCommandHandler,
	getBalancesHandler queries.GetBalancesQueryHandler,
	getResidueHistoryHandler queries.GetResidueHistoryQueryHandler,
	getOpenRequestsHandler queries.GetOpenRequestsQueryHandler,
) *Server {
	return &Server{
		generateResidueHandler:   generateResidueHandler,
		applyResidueEventHandler: applyResidueEventHandler,
		createRequestHandler:     createRequestHandler,
		advanceLineItemHandler:   advanceLineItemHandler,
		createCertificateHandler: createCertificateHandler,
		issueCertificateHandler:  issueCertificateHandler,
		revokeCertificateHandler: revokeCertificateHandler,
		getBalancesHandler:       getBalancesHandler,
		getResidueHistoryHandler: getResidueHistoryHandler,
		getOpenRequestsHandler:   getOpenRequestsHandler,
	}
}

// RegisterRoutes mounts all custody endpoints on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/residues", s.GenerateResidue)
	api.POST("/residues/:id/events", s.ApplyResidueEvent)
	api.GET("/residues/:id/history", s.GetResidueHistory)

	api.POST("/requests", s.CreateRequest)
	api.GET("/requests/open", s.GetOpenRequests)
	api.POST("/requests/line-items/:id/advance", s.AdvanceLineItem)

	api.POST("/certificates", s.CreateCertificate)
	api.POST("/certificates/:id/issue", s.IssueCertificate)
	api.POST("/certificates/:id/revoke", s.RevokeCertificate)

	api.GET("/balances", s.GetBalances)
}

// GenerateResidue handles POST /api/v1/residues - registers a new residue.
func (s *Server) GenerateResidue(ctx echo.Context) error {
	var body GenerateResidueRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	residueID, err := kernel.UUIDFromString(body.ResidueID)
	if err != nil {
		return badRequest(ctx, "Invalid residue id: "+err.Error())
	}
	eventID, err := kernel.UUIDFromString(body.EventID)
	if err != nil {
		return badRequest(ctx, "Invalid event id: "+err.Error())
	}
	wasteTypeID, err := kernel.UUIDFromString(body.WasteTypeID)
	if err != nil {
		return badRequest(ctx, "Invalid waste type id: "+err.Error())
	}
	owner, err := kernel.UUIDFromString(body.OwnerID)
	if err != nil {
		return badRequest(ctx, "Invalid owner id: "+err.Error())
	}
	facility, err := kernel.UUIDFromString(body.FacilityID)
	if err != nil {
		return badRequest(ctx, "Invalid facility id: "+err.Error())
	}
	unit, err := parseUnit(body.Unit)
	if err != nil {
		return badRequest(ctx, "Invalid unit")
	}
	quantity, err := kernel.NewQuantityFromString(body.Amount, unit)
	if err != nil {
		return badRequest(ctx, "Invalid amount: "+err.Error())
	}

	cmd, err := commands.NewGenerateResidueCommand(
		residueID, eventID, wasteTypeID, quantity, owner, facility, body.OccurredAt)
	if err != nil {
		return badRequest(ctx, "Invalid residue data: "+err.Error())
	}

	if handleErr := s.generateResidueHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusCreated)
}

// ApplyResidueEvent handles POST /api/v1/residues/:id/events - appends one
// custody event to a residue.
func (s *Server) ApplyResidueEvent(ctx echo.Context) error {
	residueID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid residue id: "+err.Error())
	}

	var body ApplyResidueEventRequest
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	event, err := buildResidueEvent(body)
	if err != nil {
		return badRequest(ctx, "Invalid event data: "+err.Error())
	}

	cmd, err := commands.NewApplyResidueEventCommand(residueID, event, body.LossReason)
	if err != nil {
		return badRequest(ctx, "Invalid event data: "+err.Error())
	}

	if _, handleErr := s.applyResidueEventHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusCreated)
}

// GetResidueHistory handles GET /api/v1/residues/:id/history - returns the
// full custody trail of a residue.
func (s *Server) GetResidueHistory(ctx echo.Context) error {
	residueID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid residue id: "+err.Error())
	}

	query, err := queries.NewGetResidueHistoryQuery(residueID)
	if err != nil {
		return badRequest(ctx, "Invalid residue id: "+err.Error())
	}

	history, err := s.getResidueHistoryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]HistoryEventResponse, len(history))
	for i, entry := range history {
		response[i] = HistoryEventResponse{
			Seq:        entry.Seq,
			EventID:    entry.EventID.String(),
			Kind:       entry.Kind.String(),
			FromStatus: entry.FromStatus.String(),
			ToStatus:   entry.ToStatus.String(),
			Amount:     entry.Amount.String(),
			Unit:       entry.Unit.String(),
			OccurredAt: entry.OccurredAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// CreateRequest handles POST /api/v1/requests - registers a logistics
// service request.
func (s *Server) CreateRequest(ctx echo.Context) error {
	var body CreateRequestRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	requestID, err := kernel.UUIDFromString(body.RequestID)
	if err != nil {
		return badRequest(ctx, "Invalid request id: "+err.Error())
	}
	requester, err := kernel.UUIDFromString(body.RequesterID)
	if err != nil {
		return badRequest(ctx, "Invalid requester id: "+err.Error())
	}
	provider, err := kernel.UUIDFromString(body.ProviderID)
	if err != nil {
		return badRequest(ctx, "Invalid provider id: "+err.Error())
	}

	items := make([]commands.LineItemSpec, 0, len(body.Items))
	for _, item := range body.Items {
		lineItemID, itemErr := kernel.UUIDFromString(item.LineItemID)
		if itemErr != nil {
			return badRequest(ctx, "Invalid line item id: "+itemErr.Error())
		}
		wasteTypeID, itemErr := kernel.UUIDFromString(item.WasteTypeID)
		if itemErr != nil {
			return badRequest(ctx, "Invalid waste type id: "+itemErr.Error())
		}
		residueIDs, itemErr := parseUUIDs(item.ResidueIDs)
		if itemErr != nil {
			return badRequest(ctx, "Invalid residue id: "+itemErr.Error())
		}
		service, itemErr := parseService(item.Service)
		if itemErr != nil {
			return badRequest(ctx, "Invalid service kind")
		}
		items = append(items, commands.LineItemSpec{
			LineItemID:  lineItemID,
			WasteTypeID: wasteTypeID,
			ResidueIDs:  residueIDs,
			Service:     service,
		})
	}

	cmd, err := commands.NewCreateRequestCommand(requestID, requester, provider, items)
	if err != nil {
		return badRequest(ctx, "Invalid request data: "+err.Error())
	}

	if handleErr := s.createRequestHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusCreated)
}

// GetOpenRequests handles GET /api/v1/requests/open - lists line items not
// yet fully finalized.
func (s *Server) GetOpenRequests(ctx echo.Context) error {
	query := queries.NewGetOpenRequestsQuery()

	open, err := s.getOpenRequestsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]OpenRequestResponse, len(open))
	for i, item := range open {
		response[i] = OpenRequestResponse{
			RequestID:   item.RequestID.String(),
			RequesterID: item.Requester.String(),
			ProviderID:  item.Provider.String(),
			LineItemID:  item.LineItemID.String(),
			WasteTypeID: item.WasteTypeID.String(),
			Service:     item.Service.String(),
			Stage:       item.Stage.String(),
			Phase:       item.Phase.String(),
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// AdvanceLineItem handles POST /api/v1/requests/line-items/:id/advance -
// moves a line item along one or both progress axes.
func (s *Server) AdvanceLineItem(ctx echo.Context) error {
	lineItemID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid line item id: "+err.Error())
	}

	var body AdvanceLineItemRequest
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	targetStage, err := parseStage(body.TargetStage)
	if err != nil {
		return badRequest(ctx, "Invalid target stage")
	}
	targetPhase, err := parsePhase(body.TargetPhase)
	if err != nil {
		return badRequest(ctx, "Invalid target phase")
	}

	details, err := buildAdvanceDetails(body)
	if err != nil {
		return badRequest(ctx, "Invalid advance details: "+err.Error())
	}

	cmd, err := commands.NewAdvanceLineItemCommand(
		lineItemID, targetStage, targetPhase, body.OccurredAt, details)
	if err != nil {
		return badRequest(ctx, "Invalid advance data: "+err.Error())
	}

	if handleErr := s.advanceLineItemHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusOK)
}

// CreateCertificate handles POST /api/v1/certificates - registers a pending
// certificate over the referenced residues.
func (s *Server) CreateCertificate(ctx echo.Context) error {
	var body CreateCertificateRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	certificateID, err := kernel.UUIDFromString(body.CertificateID)
	if err != nil {
		return badRequest(ctx, "Invalid certificate id: "+err.Error())
	}
	requestID, err := kernel.UUIDFromString(body.RequestID)
	if err != nil {
		return badRequest(ctx, "Invalid request id: "+err.Error())
	}
	holder, err := kernel.UUIDFromString(body.HolderID)
	if err != nil {
		return badRequest(ctx, "Invalid holder id: "+err.Error())
	}
	residueIDs, err := parseUUIDs(body.ResidueIDs)
	if err != nil {
		return badRequest(ctx, "Invalid residue id: "+err.Error())
	}

	cmd, err := commands.NewCreateCertificateCommand(
		certificateID, requestID, residueIDs, holder, body.DocumentRef)
	if err != nil {
		return badRequest(ctx, "Invalid certificate data: "+err.Error())
	}

	if handleErr := s.createCertificateHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.JSON(http.StatusCreated, CertificateResponse{
		CertificateID: certificateID.String(),
	})
}

// IssueCertificate handles POST /api/v1/certificates/:id/issue - issues a
// pending certificate once its residues are treated or disposed.
func (s *Server) IssueCertificate(ctx echo.Context) error {
	certificateID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid certificate id: "+err.Error())
	}

	var body IssueCertificateRequest
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewIssueCertificateCommand(
		certificateID, body.Scope, body.IssuedAt, body.ExpiresAt)
	if err != nil {
		return badRequest(ctx, "Invalid certificate data: "+err.Error())
	}

	if handleErr := s.issueCertificateHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.JSON(http.StatusOK, CertificateResponse{
		CertificateID: certificateID.String(),
	})
}

// RevokeCertificate handles POST /api/v1/certificates/:id/revoke - withdraws
// an issued certificate.
func (s *Server) RevokeCertificate(ctx echo.Context) error {
	certificateID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid certificate id: "+err.Error())
	}

	var body RevokeCertificateRequest
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewRevokeCertificateCommand(certificateID, body.Reason, body.RevokedAt)
	if err != nil {
		return badRequest(ctx, "Invalid revocation data: "+err.Error())
	}

	if handleErr := s.revokeCertificateHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return writeError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusOK)
}

// GetBalances handles GET /api/v1/balances - returns balance rows, optionally
// filtered by owner and facility query parameters.
func (s *Server) GetBalances(ctx echo.Context) error {
	var owner, facility kernel.UUID
	var err error

	if raw := ctx.QueryParam("owner"); raw != "" {
		if owner, err = kernel.UUIDFromString(raw); err != nil {
			return badRequest(ctx, "Invalid owner filter: "+err.Error())
		}
	}
	if raw := ctx.QueryParam("facility"); raw != "" {
		if facility, err = kernel.UUIDFromString(raw); err != nil {
			return badRequest(ctx, "Invalid facility filter: "+err.Error())
		}
	}

	query := queries.NewGetBalancesQuery(owner, facility)

	balances, err := s.getBalancesHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]BalanceResponse, len(balances))
	for i, row := range balances {
		response[i] = BalanceResponse{
			OwnerID:     row.Owner.String(),
			FacilityID:  row.Facility.String(),
			WasteTypeID: row.WasteTypeID.String(),
			Unit:        row.Unit.String(),
			Generated:   row.Generated.String(),
			InTransit:   row.InTransit.String(),
			Stored:      row.Stored.String(),
			Treated:     row.Treated.String(),
			Disposed:    row.Disposed.String(),
			Checkpoint:  row.Checkpoint,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// buildResidueEvent assembles a custody event from the submitted transition
// and operation fields.
func buildResidueEvent(body ApplyResidueEventRequest) (residue.Event, error) {
	eventID, err := kernel.UUIDFromString(body.EventID)
	if err != nil {
		return residue.Event{}, err
	}
	fromStatus, err := parseStatus(body.FromStatus)
	if err != nil {
		return residue.Event{}, err
	}
	toStatus, err := parseStatus(body.ToStatus)
	if err != nil {
		return residue.Event{}, err
	}
	kind, err := parseOperationKind(body.Kind)
	if err != nil {
		return residue.Event{}, err
	}

	op, err := buildOperation(kind, body)
	if err != nil {
		return residue.Event{}, err
	}

	return residue.NewEvent(eventID, fromStatus, toStatus, body.OccurredAt, op)
}

func buildOperation(kind residue.OperationKind, body ApplyResidueEventRequest) (residue.Operation, error) {
	switch kind {
	case residue.Relocation:
		from, err := kernel.UUIDFromString(body.FromLocation)
		if err != nil {
			return nil, err
		}
		to, err := kernel.UUIDFromString(body.ToLocation)
		if err != nil {
			return nil, err
		}
		return residue.RelocationOp{FromLocation: from, ToLocation: to, Vehicle: body.Vehicle}, nil
	case residue.Transfer:
		from, err := kernel.UUIDFromString(body.FromOwner)
		if err != nil {
			return nil, err
		}
		to, err := kernel.UUIDFromString(body.ToOwner)
		if err != nil {
			return nil, err
		}
		return residue.TransferOp{FromOwner: from, ToOwner: to}, nil
	case residue.Storage:
		location, err := kernel.UUIDFromString(body.Location)
		if err != nil {
			return nil, err
		}
		return residue.StorageOp{Location: location}, nil
	case residue.Adjustment:
		unit, err := parseUnit(body.Unit)
		if err != nil {
			return nil, err
		}
		quantity, err := kernel.NewQuantityFromString(body.Amount, unit)
		if err != nil {
			return nil, err
		}
		return residue.AdjustmentOp{NewQuantity: quantity, Reason: body.Reason}, nil
	case residue.Handover:
		counterparty, err := parseCounterparty(body.Counterparty)
		if err != nil {
			return nil, err
		}
		counterpartyID, err := kernel.UUIDFromString(body.CounterpartyID)
		if err != nil {
			return nil, err
		}
		return residue.HandoverOp{Counterparty: counterparty, CounterpartyID: counterpartyID}, nil
	case residue.Transformation:
		outputs, err := parseOutputs(body.Outputs)
		if err != nil {
			return nil, err
		}
		return residue.TransformationOp{Outputs: outputs}, nil
	default:
		// Generation goes through POST /api/v1/residues only.
		return nil, errs.NewValueIsInvalidError("kind")
	}
}

func buildAdvanceDetails(body AdvanceLineItemRequest) (commands.AdvanceDetails, error) {
	var details commands.AdvanceDetails
	var err error

	if body.Destination != "" {
		if details.Destination, err = kernel.UUIDFromString(body.Destination); err != nil {
			return commands.AdvanceDetails{}, err
		}
	}
	if body.Responsible != "" {
		if details.Responsible, err = kernel.UUIDFromString(body.Responsible); err != nil {
			return commands.AdvanceDetails{}, err
		}
	}

	details.Vehicle = body.Vehicle
	details.WindowStart = body.WindowStart
	details.WindowEnd = body.WindowEnd
	details.LossReason = body.LossReason

	if details.Outputs, err = parseOutputs(body.Outputs); err != nil {
		return commands.AdvanceDetails{}, err
	}

	return details, nil
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// writeError maps the custody error taxonomy onto HTTP status codes.
// Rejected-by-design transitions are 422: the request was well formed but the
// workflow forbids it. Stale versions are 409 and safe to retry.
func writeError(ctx echo.Context, err error) error {
	var code int

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		code = http.StatusNotFound
	case errors.Is(err, kernel.ErrStaleVersion):
		code = http.StatusConflict
	case errors.Is(err, kernel.ErrInvalidTransition),
		errors.Is(err, kernel.ErrPhaseStageMismatch),
		errors.Is(err, kernel.ErrConservationViolation):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		code = http.StatusBadRequest
	default:
		code = http.StatusInternalServerError
	}

	return ctx.JSON(code, Error{
		Code:    code,
		Message: err.Error(),
	})
}
