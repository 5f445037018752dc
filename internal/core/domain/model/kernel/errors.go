package kernel

import (
	"errors"
	"fmt"
)

// Sentinel errors for the custody workflow taxonomy. Rejected-by-design
// failures (ErrInvalidTransition, ErrPhaseStageMismatch,
// ErrConservationViolation) are user-correctable and must never be retried
// automatically. ErrStaleVersion is transient: the caller reloads the
// aggregate and retries. ErrUnknownAggregate and ErrCorruptEventLog are
// fatal and indicate a bug or storage corruption.
var (
	ErrInvalidTransition     = errors.New("invalid transition")
	ErrPhaseStageMismatch    = errors.New("phase/stage mismatch")
	ErrConservationViolation = errors.New("conservation violation")
	ErrStaleVersion          = errors.New("stale version")
	ErrUnknownAggregate      = errors.New("unknown aggregate")
	ErrCorruptEventLog       = errors.New("corrupt event log")
)

// InvalidTransitionError reports an illegal state change attempt against a
// custody-bearing aggregate. It names the aggregate, the attempted
// (from, operation, to) triple, and unwraps to ErrInvalidTransition.
type InvalidTransitionError struct {
	AggregateKind string
	AggregateID   UUID
	From          string
	To            string
	Operation     string
}

// NewInvalidTransitionError creates an InvalidTransitionError for the given
// aggregate and attempted transition triple.
func NewInvalidTransitionError(kind string, id UUID, from, operation, to string) *InvalidTransitionError {
	return &InvalidTransitionError{
		AggregateKind: kind,
		AggregateID:   id,
		From:          from,
		To:            to,
		Operation:     operation,
	}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s %s cannot go from %s to %s via %s",
		ErrInvalidTransition, e.AggregateKind, e.AggregateID, e.From, e.To, e.Operation)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// PhaseStageMismatchError reports a phase advance whose cross-axis
// precondition is unmet: the line item's stage has not reached the floor
// required by the target phase. Recoverable by first advancing the stage.
type PhaseStageMismatchError struct {
	LineItemID    UUID
	TargetPhase   string
	CurrentStage  string
	RequiredStage string
}

// NewPhaseStageMismatchError creates a PhaseStageMismatchError for the given
// line item and unmet floor requirement.
func NewPhaseStageMismatchError(lineItemID UUID, targetPhase, currentStage, requiredStage string) *PhaseStageMismatchError {
	return &PhaseStageMismatchError{
		LineItemID:    lineItemID,
		TargetPhase:   targetPhase,
		CurrentStage:  currentStage,
		RequiredStage: requiredStage,
	}
}

func (e *PhaseStageMismatchError) Error() string {
	return fmt.Sprintf("%s: line item %s cannot enter phase %s at stage %s, stage %s is required",
		ErrPhaseStageMismatch, e.LineItemID, e.TargetPhase, e.CurrentStage, e.RequiredStage)
}

func (e *PhaseStageMismatchError) Unwrap() error {
	return ErrPhaseStageMismatch
}

// ConservationViolationError reports quantity arithmetic that creates or
// destroys material beyond the configured tolerance.
type ConservationViolationError struct {
	AggregateID UUID
	Input       string
	Output      string
	Tolerance   string
	Detail      string
}

// NewConservationViolationError creates a ConservationViolationError carrying
// the offending aggregate and the violated arithmetic.
func NewConservationViolationError(aggregateID UUID, input, output, tolerance, detail string) *ConservationViolationError {
	return &ConservationViolationError{
		AggregateID: aggregateID,
		Input:       input,
		Output:      output,
		Tolerance:   tolerance,
		Detail:      detail,
	}
}

func (e *ConservationViolationError) Error() string {
	return fmt.Sprintf("%s: residue %s: input %s, output %s, tolerance %s: %s",
		ErrConservationViolation, e.AggregateID, e.Input, e.Output, e.Tolerance, e.Detail)
}

func (e *ConservationViolationError) Unwrap() error {
	return ErrConservationViolation
}

// StaleVersionError reports a lost optimistic-concurrency race: the aggregate
// was modified between load and store. The caller should reload and retry.
type StaleVersionError struct {
	AggregateKind   string
	AggregateID     UUID
	ExpectedVersion int
}

// NewStaleVersionError creates a StaleVersionError for the given aggregate.
func NewStaleVersionError(kind string, id UUID, expectedVersion int) *StaleVersionError {
	return &StaleVersionError{
		AggregateKind:   kind,
		AggregateID:     id,
		ExpectedVersion: expectedVersion,
	}
}

func (e *StaleVersionError) Error() string {
	return fmt.Sprintf("%s: %s %s was not at version %d",
		ErrStaleVersion, e.AggregateKind, e.AggregateID, e.ExpectedVersion)
}

func (e *StaleVersionError) Unwrap() error {
	return ErrStaleVersion
}

// UnknownAggregateError reports an event addressed at an aggregate that does
// not exist. Fatal: it indicates upstream data corruption, not user error.
type UnknownAggregateError struct {
	AggregateKind string
	AggregateID   UUID
}

// NewUnknownAggregateError creates an UnknownAggregateError.
func NewUnknownAggregateError(kind string, id UUID) *UnknownAggregateError {
	return &UnknownAggregateError{AggregateKind: kind, AggregateID: id}
}

func (e *UnknownAggregateError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrUnknownAggregate, e.AggregateKind, e.AggregateID)
}

func (e *UnknownAggregateError) Unwrap() error {
	return ErrUnknownAggregate
}

// CorruptEventLogError reports an event stream that cannot be replayed into a
// consistent state, e.g. a gap in sequence numbers or an event whose declared
// fromStatus contradicts the folded state. Fatal.
type CorruptEventLogError struct {
	AggregateKind string
	AggregateID   UUID
	Seq           int64
	Detail        string
}

// NewCorruptEventLogError creates a CorruptEventLogError at the given
// position in the stream.
func NewCorruptEventLogError(kind string, id UUID, seq int64, detail string) *CorruptEventLogError {
	return &CorruptEventLogError{AggregateKind: kind, AggregateID: id, Seq: seq, Detail: detail}
}

func (e *CorruptEventLogError) Error() string {
	return fmt.Sprintf("%s: %s %s at seq %d: %s",
		ErrCorruptEventLog, e.AggregateKind, e.AggregateID, e.Seq, e.Detail)
}

func (e *CorruptEventLogError) Unwrap() error {
	return ErrCorruptEventLog
}
