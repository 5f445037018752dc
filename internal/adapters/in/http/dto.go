package http

import (
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/request"
	"custody/internal/core/domain/model/residue"
	"custody/internal/pkg/errs"
)

// Error is the uniform error body of every failed response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GenerateResidueRequest registers a new residue. The client supplies the
// residue and event ids so an offline submission can be retried idempotently.
type GenerateResidueRequest struct {
	ResidueID   string    `json:"residue_id"`
	EventID     string    `json:"event_id"`
	WasteTypeID string    `json:"waste_type_id"`
	Amount      string    `json:"amount"`
	Unit        string    `json:"unit"`
	OwnerID     string    `json:"owner_id"`
	FacilityID  string    `json:"facility_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TransformationOutputBody is one output lot of a transformation.
type TransformationOutputBody struct {
	ResidueID   string `json:"residue_id"`
	WasteTypeID string `json:"waste_type_id"`
	Amount      string `json:"amount"`
	Unit        string `json:"unit"`
}

// ApplyResidueEventRequest submits one custody event. Kind selects the
// operation; only the fields that operation uses are read, the rest may stay
// empty.
type ApplyResidueEventRequest struct {
	EventID    string    `json:"event_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	LossReason string    `json:"loss_reason,omitempty"`

	FromLocation string `json:"from_location,omitempty"`
	ToLocation   string `json:"to_location,omitempty"`
	Vehicle      string `json:"vehicle,omitempty"`

	FromOwner string `json:"from_owner,omitempty"`
	ToOwner   string `json:"to_owner,omitempty"`

	Location string `json:"location,omitempty"`

	Amount string `json:"amount,omitempty"`
	Unit   string `json:"unit,omitempty"`
	Reason string `json:"reason,omitempty"`

	Counterparty   string `json:"counterparty,omitempty"`
	CounterpartyID string `json:"counterparty_id,omitempty"`

	Outputs []TransformationOutputBody `json:"outputs,omitempty"`
}

// LineItemBody is one line item of a new request.
type LineItemBody struct {
	LineItemID  string   `json:"line_item_id"`
	WasteTypeID string   `json:"waste_type_id"`
	ResidueIDs  []string `json:"residue_ids"`
	Service     string   `json:"service"`
}

// CreateRequestRequest registers a logistics service request.
type CreateRequestRequest struct {
	RequestID   string         `json:"request_id"`
	RequesterID string         `json:"requester_id"`
	ProviderID  string         `json:"provider_id"`
	Items       []LineItemBody `json:"items"`
}

// AdvanceLineItemRequest moves a line item along one or both progress axes.
// Empty target strings leave the corresponding axis where it is.
type AdvanceLineItemRequest struct {
	TargetStage string    `json:"target_stage,omitempty"`
	TargetPhase string    `json:"target_phase,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`

	Destination string    `json:"destination,omitempty"`
	Vehicle     string    `json:"vehicle,omitempty"`
	Responsible string    `json:"responsible,omitempty"`
	WindowStart time.Time `json:"window_start,omitempty"`
	WindowEnd   time.Time `json:"window_end,omitempty"`

	Outputs    []TransformationOutputBody `json:"outputs,omitempty"`
	LossReason string                     `json:"loss_reason,omitempty"`
}

// CreateCertificateRequest registers a pending certificate over the
// referenced residues.
type CreateCertificateRequest struct {
	CertificateID string   `json:"certificate_id"`
	RequestID     string   `json:"request_id"`
	ResidueIDs    []string `json:"residue_ids"`
	HolderID      string   `json:"holder_id"`
	DocumentRef   string   `json:"document_ref,omitempty"`
}

// IssueCertificateRequest issues an existing pending certificate.
type IssueCertificateRequest struct {
	Scope     string    `json:"scope"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// RevokeCertificateRequest withdraws an issued certificate.
type RevokeCertificateRequest struct {
	Reason    string    `json:"reason"`
	RevokedAt time.Time `json:"revoked_at"`
}

// CertificateResponse identifies the certificate an issuance created.
type CertificateResponse struct {
	CertificateID string `json:"certificate_id"`
}

// BalanceResponse is one balance row.
type BalanceResponse struct {
	OwnerID     string `json:"owner_id"`
	FacilityID  string `json:"facility_id"`
	WasteTypeID string `json:"waste_type_id"`
	Unit        string `json:"unit"`
	Generated   string `json:"generated"`
	InTransit   string `json:"in_transit"`
	Stored      string `json:"stored"`
	Treated     string `json:"treated"`
	Disposed    string `json:"disposed"`
	Checkpoint  int64  `json:"checkpoint"`
}

// HistoryEventResponse is one custody event of a residue's history.
type HistoryEventResponse struct {
	Seq        int64     `json:"seq"`
	EventID    string    `json:"event_id"`
	Kind       string    `json:"kind"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Amount     string    `json:"amount"`
	Unit       string    `json:"unit"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OpenRequestResponse is one open line item with its request header.
type OpenRequestResponse struct {
	RequestID   string `json:"request_id"`
	RequesterID string `json:"requester_id"`
	ProviderID  string `json:"provider_id"`
	LineItemID  string `json:"line_item_id"`
	WasteTypeID string `json:"waste_type_id"`
	Service     string `json:"service"`
	Stage       string `json:"stage"`
	Phase       string `json:"phase"`
}

func parseUnit(s string) (kernel.Unit, error) {
	switch s {
	case "kg":
		return kernel.Kilogram, nil
	case "l":
		return kernel.Liter, nil
	case "pc":
		return kernel.Piece, nil
	default:
		return kernel.UnitUnknown, errs.NewValueIsInvalidError("unit")
	}
}

func parseStatus(s string) (residue.Status, error) {
	switch s {
	case "Generated":
		return residue.Generated, nil
	case "InTransit":
		return residue.InTransit, nil
	case "Stored":
		return residue.Stored, nil
	case "Treated":
		return residue.Treated, nil
	case "Disposed":
		return residue.Disposed, nil
	case "Transformed":
		return residue.Transformed, nil
	case "Consumed":
		return residue.Consumed, nil
	default:
		return residue.StatusUnknown, errs.NewValueIsInvalidError("status")
	}
}

func parseOperationKind(s string) (residue.OperationKind, error) {
	switch s {
	case "Generation":
		return residue.Generation, nil
	case "Relocation":
		return residue.Relocation, nil
	case "Transfer":
		return residue.Transfer, nil
	case "Storage":
		return residue.Storage, nil
	case "Transformation":
		return residue.Transformation, nil
	case "Adjustment":
		return residue.Adjustment, nil
	case "Handover":
		return residue.Handover, nil
	default:
		return residue.OperationUnknown, errs.NewValueIsInvalidError("kind")
	}
}

func parseCounterparty(s string) (residue.CounterpartyKind, error) {
	switch s {
	case "ReceivingFacility":
		return residue.ReceivingFacility, nil
	case "TreatmentPlant":
		return residue.TreatmentPlant, nil
	case "DisposalSite":
		return residue.DisposalSite, nil
	case "FinalConsumer":
		return residue.FinalConsumer, nil
	default:
		return residue.CounterpartyUnknown, errs.NewValueIsInvalidError("counterparty")
	}
}

func parseStage(s string) (request.Stage, error) {
	switch s {
	case "":
		return request.StageUnknown, nil
	case "Initiation":
		return request.StageInitiation, nil
	case "Validation":
		return request.StageValidation, nil
	case "Transport":
		return request.StageTransport, nil
	case "Reception":
		return request.StageReception, nil
	case "Processing":
		return request.StageProcessing, nil
	case "Finalization":
		return request.StageFinalization, nil
	default:
		return request.StageUnknown, errs.NewValueIsInvalidError("target_stage")
	}
}

func parsePhase(s string) (request.Phase, error) {
	switch s {
	case "":
		return request.PhaseUnknown, nil
	case "Initiation":
		return request.PhaseInitiation, nil
	case "Planning":
		return request.PhasePlanning, nil
	case "Execution":
		return request.PhaseExecution, nil
	case "Certification":
		return request.PhaseCertification, nil
	case "Finalization":
		return request.PhaseFinalization, nil
	default:
		return request.PhaseUnknown, errs.NewValueIsInvalidError("target_phase")
	}
}

func parseService(s string) (request.ServiceKind, error) {
	switch s {
	case "Treatment":
		return request.ServiceTreatment, nil
	case "Disposal":
		return request.ServiceDisposal, nil
	case "Transformation":
		return request.ServiceTransformation, nil
	default:
		return request.ServiceUnknown, errs.NewValueIsInvalidError("service")
	}
}

func parseUUIDs(raw []string) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := kernel.UUIDFromString(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseOutputs(raw []TransformationOutputBody) ([]residue.TransformationOutput, error) {
	outputs := make([]residue.TransformationOutput, 0, len(raw))
	for _, body := range raw {
		residueID, err := kernel.UUIDFromString(body.ResidueID)
		if err != nil {
			return nil, err
		}
		wasteTypeID, err := kernel.UUIDFromString(body.WasteTypeID)
		if err != nil {
			return nil, err
		}
		unit, err := parseUnit(body.Unit)
		if err != nil {
			return nil, err
		}
		quantity, err := kernel.NewQuantityFromString(body.Amount, unit)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, residue.TransformationOutput{
			ResidueID:   residueID,
			WasteTypeID: wasteTypeID,
			Quantity:    quantity,
		})
	}
	return outputs, nil
}
