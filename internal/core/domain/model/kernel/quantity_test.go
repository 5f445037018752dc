package kernel_test

import (
	"testing"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustQuantity(t *testing.T, amount string, unit kernel.Unit) kernel.Quantity {
	t.Helper()
	q, err := kernel.NewQuantityFromString(amount, unit)
	require.NoError(t, err)
	return q
}

func TestNewQuantity(t *testing.T) {
	t.Run("should create valid quantity", func(t *testing.T) {
		q, err := kernel.NewQuantity(decimal.NewFromInt(100), kernel.Kilogram)

		require.NoError(t, err)
		assert.NoError(t, q.Validate())
		assert.Equal(t, "100 kg", q.String())
	})

	t.Run("should allow zero amount", func(t *testing.T) {
		q, err := kernel.NewQuantity(decimal.Zero, kernel.Liter)

		require.NoError(t, err)
		assert.True(t, q.IsZero())
	})

	t.Run("should reject negative amount", func(t *testing.T) {
		_, err := kernel.NewQuantity(decimal.NewFromInt(-1), kernel.Kilogram)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject invalid unit", func(t *testing.T) {
		_, err := kernel.NewQuantity(decimal.NewFromInt(1), kernel.UnitUnknown)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var q kernel.Quantity

		require.Error(t, q.Validate())
	})
}

func TestNewQuantityFromString(t *testing.T) {
	t.Run("should parse decimal string", func(t *testing.T) {
		q, err := kernel.NewQuantityFromString("12.500", kernel.Kilogram)

		require.NoError(t, err)
		assert.True(t, q.Amount().Equal(decimal.RequireFromString("12.5")))
	})

	t.Run("should reject malformed string", func(t *testing.T) {
		_, err := kernel.NewQuantityFromString("twelve", kernel.Kilogram)

		require.Error(t, err)
	})
}

func TestQuantity_Arithmetic(t *testing.T) {
	t.Run("Add sums amounts of the same unit", func(t *testing.T) {
		a := mustQuantity(t, "60", kernel.Kilogram)
		b := mustQuantity(t, "35", kernel.Kilogram)

		sum, err := a.Add(b)

		require.NoError(t, err)
		assert.True(t, sum.IsEqual(mustQuantity(t, "95", kernel.Kilogram)))
	})

	t.Run("Sub fails when result would be negative", func(t *testing.T) {
		a := mustQuantity(t, "10", kernel.Kilogram)
		b := mustQuantity(t, "20", kernel.Kilogram)

		_, err := a.Sub(b)

		require.Error(t, err)
	})

	t.Run("unit mismatch is rejected", func(t *testing.T) {
		a := mustQuantity(t, "10", kernel.Kilogram)
		b := mustQuantity(t, "10", kernel.Liter)

		_, err := a.Add(b)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("Percent computes a share of the amount", func(t *testing.T) {
		a := mustQuantity(t, "100", kernel.Kilogram)

		share, err := a.Percent(decimal.NewFromInt(60))

		require.NoError(t, err)
		assert.True(t, share.IsEqual(mustQuantity(t, "60", kernel.Kilogram)))
	})

	t.Run("Cmp orders amounts", func(t *testing.T) {
		a := mustQuantity(t, "95", kernel.Kilogram)
		b := mustQuantity(t, "100", kernel.Kilogram)

		cmp, err := a.Cmp(b)

		require.NoError(t, err)
		assert.Equal(t, -1, cmp)
	})
}

func TestUnit_Validate(t *testing.T) {
	valid := []kernel.Unit{kernel.Kilogram, kernel.Liter, kernel.Piece}
	for _, u := range valid {
		require.NoError(t, u.Validate())
	}

	require.Error(t, kernel.UnitUnknown.Validate())
	require.Error(t, kernel.Unit(99).Validate())
	assert.Equal(t, "Unknown", kernel.Unit(99).String())
}
