package kernel

import (
	"fmt"

	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// Unit tags a Quantity with its measurement dimension.
// Quantities of different units are never combined.
type Unit int

const (
	// UnitUnknown represents an invalid or undefined unit.
	UnitUnknown Unit = iota

	// Kilogram measures waste by weight.
	Kilogram

	// Liter measures waste by volume.
	Liter

	// Piece measures waste by count of discrete items.
	Piece
)

func getUnitStrings() map[Unit]string {
	return map[Unit]string{
		UnitUnknown: "Unknown",
		Kilogram:    "kg",
		Liter:       "l",
		Piece:       "pc",
	}
}

// Validate checks that the Unit is one of the defined measurement dimensions.
func (u Unit) Validate() error {
	switch u {
	case Kilogram, Liter, Piece:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("unit is invalid",
			fmt.Errorf("%d is not a valid unit", u))
	}
}

// String returns the unit symbol, or "Unknown" for invalid values.
func (u Unit) String() string {
	if s, ok := getUnitStrings()[u]; ok {
		return s
	}
	return "Unknown"
}

// ErrQuantityIsNotConstructed is returned when using an improperly initialized Quantity.
var ErrQuantityIsNotConstructed = errs.NewValueIsRequiredError(
	"Quantity must be created via NewQuantity")

// ErrUnitMismatch is returned when arithmetic combines quantities of different units.
var ErrUnitMismatch = errs.NewValueIsInvalidError("quantities have different units")

// Quantity is an immutable, unit-tagged decimal amount of waste.
// The amount is never negative; operations that would produce a negative
// amount fail instead of silently clamping. Decimal arithmetic is used
// throughout so that conservation checks are exact, never subject to
// floating-point drift.
type Quantity struct { //nolint:recvcheck //using for validation
	amount decimal.Decimal
	unit   Unit

	guard guard.ConstructorGuard
}

// NewQuantity creates a Quantity with the given amount and unit.
// The amount must be non-negative and the unit must be valid.
func NewQuantity(amount decimal.Decimal, unit Unit) (Quantity, error) {
	if err := unit.Validate(); err != nil {
		return Quantity{}, err
	}
	if amount.IsNegative() {
		return Quantity{}, errs.NewValueIsInvalidErrorWithCause("amount is invalid",
			fmt.Errorf("%s is negative", amount))
	}

	return Quantity{
		amount: amount,
		unit:   unit,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// NewQuantityFromString creates a Quantity from a decimal string such as "12.500".
func NewQuantityFromString(amount string, unit Unit) (Quantity, error) {
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return Quantity{}, errs.NewValueIsInvalidErrorWithCause("amount is invalid", err)
	}
	return NewQuantity(dec, unit)
}

// Validate ensures the Quantity was created through a constructor.
func (q Quantity) Validate() error {
	return q.guard.Validate(ErrQuantityIsNotConstructed)
}

// Amount returns the decimal amount.
func (q Quantity) Amount() decimal.Decimal {
	return q.amount
}

// Unit returns the measurement unit.
func (q Quantity) Unit() Unit {
	return q.unit
}

// IsZero reports whether the amount is exactly zero.
func (q Quantity) IsZero() bool {
	return q.amount.IsZero()
}

// IsEqual reports whether two quantities have the same unit and amount.
func (q Quantity) IsEqual(other Quantity) bool {
	return q.unit == other.unit && q.amount.Equal(other.amount)
}

// Add returns the sum of two quantities of the same unit.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	if err := q.sameUnit(other); err != nil {
		return Quantity{}, err
	}
	return NewQuantity(q.amount.Add(other.amount), q.unit)
}

// Sub returns the difference of two quantities of the same unit.
// Fails if the result would be negative.
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	if err := q.sameUnit(other); err != nil {
		return Quantity{}, err
	}
	return NewQuantity(q.amount.Sub(other.amount), q.unit)
}

// Percent returns the given percentage of the quantity, e.g. Percent(60)
// of 100 kg is 60 kg.
func (q Quantity) Percent(percent decimal.Decimal) (Quantity, error) {
	if percent.IsNegative() {
		return Quantity{}, errs.NewValueIsInvalidErrorWithCause("percent is invalid",
			fmt.Errorf("%s is negative", percent))
	}
	hundred := decimal.NewFromInt(100)
	return NewQuantity(q.amount.Mul(percent).Div(hundred), q.unit)
}

// Cmp compares amounts of two quantities of the same unit.
// Returns -1, 0 or +1, like decimal.Decimal.Cmp.
func (q Quantity) Cmp(other Quantity) (int, error) {
	if err := q.sameUnit(other); err != nil {
		return 0, err
	}
	return q.amount.Cmp(other.amount), nil
}

// String returns the amount followed by the unit symbol, e.g. "100 kg".
func (q Quantity) String() string {
	return fmt.Sprintf("%s %s", q.amount, q.unit)
}

func (q Quantity) sameUnit(other Quantity) error {
	if q.unit != other.unit {
		return ErrUnitMismatch
	}
	return nil
}
