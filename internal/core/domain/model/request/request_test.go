package request_test

import (
	"testing"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quantityKg(t *testing.T, amount string) kernel.Quantity {
	t.Helper()
	q, err := kernel.NewQuantityFromString(amount, kernel.Kilogram)
	require.NoError(t, err)
	return q
}

func newRequest(t *testing.T, lineItems ...*request.LineItem) *request.Request {
	t.Helper()
	r, err := request.NewRequest(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), lineItems)
	require.NoError(t, err)
	return r
}

func TestNewRequest(t *testing.T) {
	t.Run("should create request with line items", func(t *testing.T) {
		item := newLineItem(t)

		r := newRequest(t, item)

		assert.Len(t, r.LineItems(), 1)
		assert.False(t, r.IsClosed())
	})

	t.Run("should reject request without line items", func(t *testing.T) {
		_, err := request.NewRequest(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), nil)

		require.Error(t, err)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var r request.Request

		require.ErrorIs(t, r.Validate(), request.ErrRequestIsNotConstructed)
	})
}

func TestRequest_LineItem(t *testing.T) {
	item := newLineItem(t)
	r := newRequest(t, item, newLineItem(t))

	t.Run("finds an owned line item", func(t *testing.T) {
		found, err := r.LineItem(item.ID())

		require.NoError(t, err)
		assert.True(t, found.IsEqual(item))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := r.LineItem(kernel.NewUUID())

		require.Error(t, err)
		assert.ErrorIs(t, err, request.ErrLineItemNotFound)
	})
}

func TestRequest_IsClosed(t *testing.T) {
	open := newLineItem(t)
	closed, err := request.RestoreLineItem(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		[]kernel.UUID{kernel.NewUUID()}, request.ServiceDisposal,
		request.StageFinalization, request.PhaseFinalization, 11)
	require.NoError(t, err)

	assert.False(t, newRequest(t, closed, open).IsClosed())
	assert.True(t, newRequest(t, closed).IsClosed())
}

func TestOrder(t *testing.T) {
	newScheduledOrder := func(t *testing.T) *request.Order {
		t.Helper()
		start := time.Now()
		o, err := request.NewOrder(
			kernel.NewUUID(), kernel.NewUUID(), "TRK-042", kernel.NewUUID(),
			start, start.Add(4*time.Hour))
		require.NoError(t, err)
		return o
	}

	record := func(t *testing.T, orderID kernel.UUID) request.ManagementRecord {
		t.Helper()
		rec, err := request.NewManagementRecord(
			kernel.NewUUID(), orderID, quantityKg(t, "100"),
			kernel.NewUUID(), kernel.NewUUID(), request.ServiceTreatment, time.Now())
		require.NoError(t, err)
		return rec
	}

	t.Run("complete attaches the management record once", func(t *testing.T) {
		o := newScheduledOrder(t)
		assert.False(t, o.IsCompleted())

		require.NoError(t, o.Complete(record(t, o.ID())))

		assert.True(t, o.IsCompleted())
		require.NotNil(t, o.Record())

		err := o.Complete(record(t, o.ID()))
		require.ErrorIs(t, err, request.ErrOrderAlreadyCompleted)
	})

	t.Run("record of another order is rejected", func(t *testing.T) {
		o := newScheduledOrder(t)

		err := o.Complete(record(t, kernel.NewUUID()))

		require.Error(t, err)
		assert.False(t, o.IsCompleted())
	})

	t.Run("execution window must be ordered", func(t *testing.T) {
		start := time.Now()
		_, err := request.NewOrder(
			kernel.NewUUID(), kernel.NewUUID(), "TRK-042", kernel.NewUUID(),
			start, start.Add(-time.Hour))

		require.Error(t, err)
	})
}
