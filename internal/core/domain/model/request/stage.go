package request

import (
	"fmt"

	"custody/internal/pkg/errs"
)

// Stage is the logistics-progress axis of a request line item. Transitions
// are strictly sequential: a stage can only advance to its immediate
// successor, never skip, never go back.
type Stage int

const (
	// StageUnknown represents an invalid or undefined stage.
	StageUnknown Stage = iota

	// StageInitiation is the initial stage of every line item.
	StageInitiation

	// StageValidation covers administrative checking of the submitted need.
	StageValidation

	// StageTransport covers physical movement of the residues.
	StageTransport

	// StageReception covers arrival and acceptance at the receiving facility.
	StageReception

	// StageProcessing covers treatment, disposal, or transformation.
	StageProcessing

	// StageFinalization is the terminal stage.
	StageFinalization
)

func getStageStrings() map[Stage]string {
	return map[Stage]string{
		StageUnknown:      "Unknown",
		StageInitiation:   "Initiation",
		StageValidation:   "Validation",
		StageTransport:    "Transport",
		StageReception:    "Reception",
		StageProcessing:   "Processing",
		StageFinalization: "Finalization",
	}
}

// Validate checks if the Stage value is one of the defined stages.
func (s Stage) Validate() error {
	if s < StageInitiation || s > StageFinalization {
		return errs.NewValueIsInvalidErrorWithCause("stage is invalid",
			fmt.Errorf("%d is not a valid stage", s))
	}
	return nil
}

// String returns the human-readable name of the stage.
func (s Stage) String() string {
	if str, ok := getStageStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// Next returns the immediate successor stage, or StageUnknown when the stage
// is terminal.
func (s Stage) Next() Stage {
	if s < StageInitiation || s >= StageFinalization {
		return StageUnknown
	}
	return s + 1
}

// CanAdvanceTo reports whether target is the immediate successor of s.
func (s Stage) CanAdvanceTo(target Stage) bool {
	return s.Next() != StageUnknown && s.Next() == target
}

// ServiceKind is the service a line item was submitted for. It decides which
// custody event the Processing stage derives.
type ServiceKind int

const (
	// ServiceUnknown represents an invalid or undefined service kind.
	ServiceUnknown ServiceKind = iota

	// ServiceTreatment sends residues to a treatment plant.
	ServiceTreatment

	// ServiceDisposal sends residues to a disposal site.
	ServiceDisposal

	// ServiceTransformation decomposes residues into output residues.
	ServiceTransformation
)

func getServiceKindStrings() map[ServiceKind]string {
	return map[ServiceKind]string{
		ServiceUnknown:        "Unknown",
		ServiceTreatment:      "Treatment",
		ServiceDisposal:       "Disposal",
		ServiceTransformation: "Transformation",
	}
}

// Validate checks if the ServiceKind is one of the defined kinds.
func (k ServiceKind) Validate() error {
	switch k {
	case ServiceTreatment, ServiceDisposal, ServiceTransformation:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("service kind is invalid",
			fmt.Errorf("%d is not a valid service kind", k))
	}
}

// String returns the human-readable name of the service kind.
func (k ServiceKind) String() string {
	if str, ok := getServiceKindStrings()[k]; ok {
		return str
	}
	return "Unknown"
}
