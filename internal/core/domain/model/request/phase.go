package request

import (
	"fmt"

	"custody/internal/pkg/errs"
)

// Phase is the administrative-progress axis of a request line item,
// orthogonal to Stage. Transitions are strictly sequential, and every phase
// past Initiation has a stage floor that must already be reached: paperwork
// never runs ahead of the physical flow it describes. The stage may run
// ahead of the phase, never the other way around.
type Phase int

const (
	// PhaseUnknown represents an invalid or undefined phase.
	PhaseUnknown Phase = iota

	// PhaseInitiation is the initial phase of every line item.
	PhaseInitiation

	// PhasePlanning covers scheduling and resource assignment.
	PhasePlanning

	// PhaseExecution covers the administrative tracking of the work.
	PhaseExecution

	// PhaseCertification covers issuing the attestation documents.
	PhaseCertification

	// PhaseFinalization is the terminal phase.
	PhaseFinalization
)

func getPhaseStrings() map[Phase]string {
	return map[Phase]string{
		PhaseUnknown:       "Unknown",
		PhaseInitiation:    "Initiation",
		PhasePlanning:      "Planning",
		PhaseExecution:     "Execution",
		PhaseCertification: "Certification",
		PhaseFinalization:  "Finalization",
	}
}

// stageFloors is the cross-axis precondition table: the minimum stage a line
// item must have reached before entering each phase.
func stageFloors() map[Phase]Stage {
	return map[Phase]Stage{
		PhasePlanning:      StageValidation,
		PhaseExecution:     StageTransport,
		PhaseCertification: StageReception,
		PhaseFinalization:  StageProcessing,
	}
}

// Validate checks if the Phase value is one of the defined phases.
func (p Phase) Validate() error {
	if p < PhaseInitiation || p > PhaseFinalization {
		return errs.NewValueIsInvalidErrorWithCause("phase is invalid",
			fmt.Errorf("%d is not a valid phase", p))
	}
	return nil
}

// String returns the human-readable name of the phase.
func (p Phase) String() string {
	if str, ok := getPhaseStrings()[p]; ok {
		return str
	}
	return "Unknown"
}

// Next returns the immediate successor phase, or PhaseUnknown when the phase
// is terminal.
func (p Phase) Next() Phase {
	if p < PhaseInitiation || p >= PhaseFinalization {
		return PhaseUnknown
	}
	return p + 1
}

// CanAdvanceTo reports whether target is the immediate successor of p.
func (p Phase) CanAdvanceTo(target Phase) bool {
	return p.Next() != PhaseUnknown && p.Next() == target
}

// RequiredStage returns the minimum stage required before entering p.
// Phases without a floor (Initiation) return StageUnknown and false.
func (p Phase) RequiredStage() (Stage, bool) {
	floor, ok := stageFloors()[p]
	return floor, ok
}
