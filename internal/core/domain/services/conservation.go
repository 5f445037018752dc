package services

import (
	"github.com/shopspring/decimal"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/residue"
	"custody/internal/pkg/errs"
)

// ConservationEngine verifies that quantity arithmetic neither creates nor
// destroys material. Before a transformation is accepted, the summed output
// quantities must stay within the input quantity plus the configured
// tolerance; any shortfall beyond the tolerance must be explained by a
// documented loss reason, otherwise the transformation is rejected with a
// ConservationViolation. Adjustment events are the only other way to change
// a quantity, and those carry their own mandatory reason.
//
// The tolerance is a percentage of the input quantity. The default of zero
// requires an exact match.
type ConservationEngine struct {
	tolerancePercent decimal.Decimal
}

// NewConservationEngine creates a conservation engine with the given
// tolerance, expressed as a percentage of the input quantity in [0, 100].
func NewConservationEngine(tolerancePercent decimal.Decimal) (ConservationEngine, error) {
	if tolerancePercent.IsNegative() || tolerancePercent.GreaterThan(decimal.NewFromInt(100)) {
		return ConservationEngine{}, errs.NewValueIsOutOfRangeError(
			"tolerancePercent", tolerancePercent.String(), "0", "100")
	}
	return ConservationEngine{tolerancePercent: tolerancePercent}, nil
}

// Tolerance returns the configured tolerance percentage.
func (e ConservationEngine) Tolerance() decimal.Decimal {
	return e.tolerancePercent
}

// ValidateTransformation checks a transformation of the given input quantity
// against the declared outputs. lossReason documents an expected shortfall
// (drying, moisture loss, sampling); it may be empty only when the outputs
// account for the full input within tolerance.
func (e ConservationEngine) ValidateTransformation(
	residueID kernel.UUID,
	input kernel.Quantity,
	op residue.TransformationOp,
	lossReason string,
) error {
	if err := op.Validate(); err != nil {
		return err
	}

	total := op.Outputs[0].Quantity
	for _, output := range op.Outputs[1:] {
		sum, err := total.Add(output.Quantity)
		if err != nil {
			return kernel.NewConservationViolationError(residueID,
				input.String(), total.String(), e.tolerancePercent.String()+"%",
				err.Error())
		}
		total = sum
	}

	margin, err := input.Percent(e.tolerancePercent)
	if err != nil {
		return err
	}

	upper, err := input.Add(margin)
	if err != nil {
		return err
	}
	if cmp, cmpErr := total.Cmp(upper); cmpErr != nil {
		return kernel.NewConservationViolationError(residueID,
			input.String(), total.String(), e.tolerancePercent.String()+"%",
			cmpErr.Error())
	} else if cmp > 0 {
		return kernel.NewConservationViolationError(residueID,
			input.String(), total.String(), e.tolerancePercent.String()+"%",
			"outputs exceed input beyond tolerance")
	}

	lower, err := input.Sub(margin)
	if err != nil {
		return err
	}
	if cmp, cmpErr := total.Cmp(lower); cmpErr != nil {
		return kernel.NewConservationViolationError(residueID,
			input.String(), total.String(), e.tolerancePercent.String()+"%",
			cmpErr.Error())
	} else if cmp < 0 && lossReason == "" {
		return kernel.NewConservationViolationError(residueID,
			input.String(), total.String(), e.tolerancePercent.String()+"%",
			"unexplained shortfall requires a documented loss reason")
	}

	return nil
}

// ValidateFormula checks a percentage-based decomposition formula: every
// output percentage must be positive and the percentages must sum to at most
// 100.
func (e ConservationEngine) ValidateFormula(percentages []decimal.Decimal) error {
	if len(percentages) == 0 {
		return errs.NewValueIsRequiredError("formula percentages")
	}

	total := decimal.Zero
	for _, p := range percentages {
		if !p.IsPositive() {
			return errs.NewValueIsOutOfRangeError("formula percentage",
				p.String(), "0 (exclusive)", "100")
		}
		total = total.Add(p)
	}

	if total.GreaterThan(decimal.NewFromInt(100)) {
		return errs.NewValueIsOutOfRangeError("formula percentage total",
			total.String(), "0", "100")
	}

	return nil
}
