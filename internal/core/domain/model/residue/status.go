package residue

import (
	"fmt"

	"custody/internal/pkg/errs"
)

// Status represents the custody state of a residue.
// It implements a state machine with defined transitions to ensure residues
// follow the correct chain-of-custody workflow.
//
// State transitions:
//
//	Generated ──> {InTransit, Stored} ──> {Treated, Disposed, Transformed} ──> Consumed
//
// Disposed and Consumed are terminal. Adjustment events are a side channel:
// they revise quantity but never change status.
//
// The legal transitions are held as data in the transition table below,
// keyed by the full (fromStatus, operationKind, toStatus) triple. Any triple
// absent from the table is rejected; the engine never silently ignores an
// illegal request.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	StatusUnknown Status = iota

	// Generated is the initial status after the first generation event.
	Generated

	// InTransit indicates the residue is being moved between locations.
	InTransit

	// Stored indicates the residue rests at a facility location.
	Stored

	// Treated indicates a treatment operation completed on the residue.
	Treated

	// Disposed indicates final disposal. Terminal.
	Disposed

	// Transformed indicates the residue was decomposed into output residues.
	Transformed

	// Consumed indicates the residue left the custody chain. Terminal.
	Consumed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown: "Unknown",
		Generated:     "Generated",
		InTransit:     "InTransit",
		Stored:        "Stored",
		Treated:       "Treated",
		Disposed:      "Disposed",
		Transformed:   "Transformed",
		Consumed:      "Consumed",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // StatusUnknown is intentionally excluded as it's invalid
	return map[Status]string{
		Generated:   "Generated",
		InTransit:   "InTransit",
		Stored:      "Stored",
		Treated:     "Treated",
		Disposed:    "Disposed",
		Transformed: "Transformed",
		Consumed:    "Consumed",
	}
}

// Validate checks if the Status value is one of the defined custody states.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// Implements fmt.Stringer and is safe on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether no further custody events may be applied.
func (s Status) IsTerminal() bool {
	return s == Disposed || s == Consumed
}

// IsCertifiable reports whether the residue's handling segment is complete
// enough to be referenced by a certificate.
func (s Status) IsCertifiable() bool {
	return s == Treated || s == Disposed
}

// OperationKind discriminates the polymorphic operation payload carried by a
// custody event.
type OperationKind int

const (
	// OperationUnknown represents an invalid or undefined operation kind.
	OperationUnknown OperationKind = iota

	// Generation creates the residue. Always the first event.
	Generation

	// Relocation moves the residue between locations by vehicle.
	Relocation

	// Transfer changes the owning party without moving the residue.
	Transfer

	// Storage places the residue at a facility location.
	Storage

	// Transformation decomposes the residue into output residues.
	Transformation

	// Adjustment revises quantity without a matching counter-flow.
	// The only status-preserving quantity change; requires a reason.
	Adjustment

	// Handover passes custody to a counterparty; the counterparty kind
	// determines the resulting status.
	Handover
)

func getOperationKindStrings() map[OperationKind]string {
	return map[OperationKind]string{
		OperationUnknown: "Unknown",
		Generation:       "Generation",
		Relocation:       "Relocation",
		Transfer:         "Transfer",
		Storage:          "Storage",
		Transformation:   "Transformation",
		Adjustment:       "Adjustment",
		Handover:         "Handover",
	}
}

// Validate checks if the OperationKind is one of the defined kinds.
func (k OperationKind) Validate() error {
	if k <= OperationUnknown || k > Handover {
		return errs.NewValueIsInvalidErrorWithCause("operation kind is invalid",
			fmt.Errorf("%d is not a valid operation kind", k))
	}
	return nil
}

// String returns the human-readable name of the operation kind.
func (k OperationKind) String() string {
	if str, ok := getOperationKindStrings()[k]; ok {
		return str
	}
	return "Unknown"
}

// transition is a key in the legal-transition table.
type transition struct {
	from Status
	op   OperationKind
	to   Status
}

// legalTransitions is the explicit, total transition table for residues.
// StatusUnknown as the from-status is only legal for Generation: a residue
// exists solely through its first generation event.
func legalTransitions() map[transition]struct{} {
	triples := []transition{
		{StatusUnknown, Generation, Generated},

		{Generated, Relocation, InTransit},
		{Generated, Storage, Stored},
		{Generated, Transfer, Generated},
		{Generated, Adjustment, Generated},

		{InTransit, Relocation, InTransit},
		{InTransit, Storage, Stored},
		{InTransit, Transfer, InTransit},
		{InTransit, Adjustment, InTransit},
		{InTransit, Handover, Stored},
		{InTransit, Handover, Treated},
		{InTransit, Handover, Disposed},
		{InTransit, Transformation, Transformed},

		{Stored, Relocation, InTransit},
		{Stored, Storage, Stored},
		{Stored, Transfer, Stored},
		{Stored, Adjustment, Stored},
		{Stored, Handover, Treated},
		{Stored, Handover, Disposed},
		{Stored, Transformation, Transformed},

		{Treated, Transfer, Treated},
		{Treated, Adjustment, Treated},
		{Treated, Handover, Consumed},

		{Transformed, Transfer, Transformed},
		{Transformed, Adjustment, Transformed},
		{Transformed, Handover, Consumed},
	}

	table := make(map[transition]struct{}, len(triples))
	for _, t := range triples {
		table[t] = struct{}{}
	}
	return table
}

// CanTransition reports whether the (s, kind, to) triple appears in the
// legal-transition table.
func (s Status) CanTransition(kind OperationKind, to Status) bool {
	_, ok := legalTransitions()[transition{from: s, op: kind, to: to}]
	return ok
}
