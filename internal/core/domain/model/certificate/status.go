package certificate

import (
	"fmt"

	"custody/internal/pkg/errs"
)

// Status represents the lifecycle state of a certificate.
//
// State transitions:
//
//	Pending ──> Issued ──> Revoked
//
// The chain is linear and forward-only: Revoked is only reachable from
// Issued and is terminal. Revocation is a statement about the document, not
// an undo of the physical operations it attested.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// Pending is the initial status before issuance.
	Pending

	// Issued indicates the certificate was issued and numbered.
	Issued

	// Revoked indicates the document was withdrawn. Terminal.
	Revoked
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown: "Unknown",
		Pending:       "Pending",
		Issued:        "Issued",
		Revoked:       "Revoked",
	}
}

// Validate checks if the Status value is one of the defined lifecycle states.
func (s Status) Validate() error {
	switch s {
	case Pending, Issued, Revoked:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
}

// String returns the human-readable name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// OperationKind discriminates certificate event payloads.
type OperationKind int

const (
	// OperationUnknown represents an invalid or undefined operation kind.
	OperationUnknown OperationKind = iota

	// Issue transitions Pending to Issued and assigns the number.
	Issue

	// Revoke transitions Issued to Revoked.
	Revoke
)

func getOperationKindStrings() map[OperationKind]string {
	return map[OperationKind]string{
		OperationUnknown: "Unknown",
		Issue:            "Issue",
		Revoke:           "Revoke",
	}
}

// Validate checks if the OperationKind is one of the defined kinds.
func (k OperationKind) Validate() error {
	switch k {
	case Issue, Revoke:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("operation kind is invalid",
			fmt.Errorf("%d is not a valid operation kind", k))
	}
}

// String returns the human-readable name of the operation kind.
func (k OperationKind) String() string {
	if str, ok := getOperationKindStrings()[k]; ok {
		return str
	}
	return "Unknown"
}

type transition struct {
	from Status
	op   OperationKind
	to   Status
}

// legalTransitions is the explicit transition table for certificates.
func legalTransitions() map[transition]struct{} {
	return map[transition]struct{}{
		{Pending, Issue, Issued}:  {},
		{Issued, Revoke, Revoked}: {},
	}
}

// CanTransition reports whether the (s, kind, to) triple appears in the
// legal-transition table.
func (s Status) CanTransition(kind OperationKind, to Status) bool {
	_, ok := legalTransitions()[transition{from: s, op: kind, to: to}]
	return ok
}
