package residue_test

import (
	"testing"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/residue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeneratedResidue(t *testing.T, amount string) *residue.Residue {
	t.Helper()
	r, err := residue.NewResidue(kernel.NewUUID(), generationEvent(t, amount))
	require.NoError(t, err)
	return r
}

func mustEvent(
	t *testing.T,
	from residue.Status,
	to residue.Status,
	op residue.Operation,
) residue.Event {
	t.Helper()
	ev, err := residue.NewEvent(kernel.NewUUID(), from, to, time.Now(), op)
	require.NoError(t, err)
	return ev
}

func relocation(t *testing.T, from residue.Status) residue.Event {
	t.Helper()
	return mustEvent(t, from, residue.InTransit, residue.RelocationOp{
		FromLocation: kernel.NewUUID(),
		ToLocation:   kernel.NewUUID(),
		Vehicle:      "TRK-042",
	})
}

func TestNewResidue(t *testing.T) {
	t.Run("should create residue from generation event", func(t *testing.T) {
		gen := generationEvent(t, "100")
		id := kernel.NewUUID()

		r, err := residue.NewResidue(id, gen)

		require.NoError(t, err)
		assert.Equal(t, residue.Generated, r.Status())
		assert.True(t, r.Quantity().IsEqual(quantityKg(t, "100")))
		assert.Equal(t, 1, r.Version())
		assert.Len(t, r.Events(), 1)
		assert.True(t, r.ID().IsEqual(id))
	})

	t.Run("should reject non-generation first event", func(t *testing.T) {
		ev := relocation(t, residue.Generated)

		_, err := residue.NewResidue(kernel.NewUUID(), ev)

		require.Error(t, err)
		assert.ErrorIs(t, err, kernel.ErrInvalidTransition)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var r residue.Residue

		require.ErrorIs(t, r.Validate(), residue.ErrResidueIsNotConstructed)
	})
}

func TestResidue_Apply(t *testing.T) {
	t.Run("relocation moves the residue in transit", func(t *testing.T) {
		r := newGeneratedResidue(t, "100")
		dest := kernel.NewUUID()
		ev := mustEvent(t, residue.Generated, residue.InTransit, residue.RelocationOp{
			FromLocation: r.Location(),
			ToLocation:   dest,
			Vehicle:      "TRK-042",
		})

		result, err := r.Apply(ev)

		require.NoError(t, err)
		assert.Equal(t, residue.InTransit, result.Status)
		assert.True(t, result.Location.IsEqual(dest))
		assert.Equal(t, 2, result.Version)
		assert.False(t, result.AlreadyApplied)
	})

	t.Run("transfer changes owner without changing status", func(t *testing.T) {
		r := newGeneratedResidue(t, "100")
		newOwner := kernel.NewUUID()
		ev := mustEvent(t, residue.Generated, residue.Generated, residue.TransferOp{
			FromOwner: r.Owner(),
			ToOwner:   newOwner,
		})

		result, err := r.Apply(ev)

		require.NoError(t, err)
		assert.Equal(t, residue.Generated, result.Status)
		assert.True(t, result.Owner.IsEqual(newOwner))
	})

	t.Run("adjustment revises quantity only", func(t *testing.T) {
		r := newGeneratedResidue(t, "100")
		ev := mustEvent(t, residue.Generated, residue.Generated, residue.AdjustmentOp{
			NewQuantity: quantityKg(t, "95"),
			Reason:      "moisture loss during sampling",
		})

		result, err := r.Apply(ev)

		require.NoError(t, err)
		assert.Equal(t, residue.Generated, result.Status)
		assert.True(t, result.Quantity.IsEqual(quantityKg(t, "95")))
	})

	t.Run("declared fromStatus must match current status", func(t *testing.T) {
		r := newGeneratedResidue(t, "100")
		ev := mustEvent(t, residue.Stored, residue.InTransit, residue.RelocationOp{
			FromLocation: kernel.NewUUID(),
			ToLocation:   kernel.NewUUID(),
			Vehicle:      "TRK-042",
		})

		_, err := r.Apply(ev)

		require.Error(t, err)
		assert.ErrorIs(t, err, kernel.ErrInvalidTransition)
		assert.Equal(t, residue.Generated, r.Status(), "rejection leaves the residue untouched")
		assert.Equal(t, 1, r.Version())
	})

	t.Run("illegal triple is rejected with full context", func(t *testing.T) {
		r := newGeneratedResidue(t, "100")
		ev := mustEvent(t, residue.Generated, residue.Transformed, residue.TransformationOp{
			Outputs: []residue.TransformationOutput{{
				ResidueID:   kernel.NewUUID(),
				WasteTypeID: kernel.NewUUID(),
				Quantity:    quantityKg(t, "50"),
			}},
		})

		_, err := r.Apply(ev)

		require.Error(t, err)
		var transitionErr *kernel.InvalidTransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.True(t, transitionErr.AggregateID.IsEqual(r.ID()))
		assert.Equal(t, "Generated", transitionErr.From)
		assert.Equal(t, "Transformation", transitionErr.Operation)
	})

	t.Run("second generation event is rejected", func(t *testing.T) {
		r := newGeneratedResidue(t, "100")
		ev := generationEvent(t, "50")

		_, err := r.Apply(ev)

		require.Error(t, err)
		assert.ErrorIs(t, err, kernel.ErrInvalidTransition)
	})

	t.Run("applying the same event id twice is a no-op", func(t *testing.T) {
		r := newGeneratedResidue(t, "100")
		ev := relocation(t, residue.Generated)

		first, err := r.Apply(ev)
		require.NoError(t, err)

		second, err := r.Apply(ev)
		require.NoError(t, err)

		assert.True(t, second.AlreadyApplied)
		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, first.Version, second.Version)
		assert.Len(t, r.Events(), 2)
	})

	t.Run("terminal status accepts no further events", func(t *testing.T) {
		r := newGeneratedResidue(t, "100")

		_, err := r.Apply(mustEvent(t, residue.Generated, residue.Stored,
			residue.StorageOp{Location: kernel.NewUUID()}))
		require.NoError(t, err)

		_, err = r.Apply(mustEvent(t, residue.Stored, residue.Disposed, residue.HandoverOp{
			Counterparty:   residue.DisposalSite,
			CounterpartyID: kernel.NewUUID(),
		}))
		require.NoError(t, err)
		assert.Equal(t, residue.Disposed, r.Status())

		_, err = r.Apply(mustEvent(t, residue.Disposed, residue.Disposed, residue.AdjustmentOp{
			NewQuantity: quantityKg(t, "0"),
			Reason:      "write-off",
		}))
		require.Error(t, err)
	})
}

func TestResidue_FullLifecycle(t *testing.T) {
	r := newGeneratedResidue(t, "100")

	treatmentPlant := kernel.NewUUID()
	steps := []residue.Event{
		relocation(t, residue.Generated),
		mustEvent(t, residue.InTransit, residue.Stored, residue.HandoverOp{
			Counterparty:   residue.ReceivingFacility,
			CounterpartyID: kernel.NewUUID(),
		}),
		mustEvent(t, residue.Stored, residue.Treated, residue.HandoverOp{
			Counterparty:   residue.TreatmentPlant,
			CounterpartyID: treatmentPlant,
		}),
		mustEvent(t, residue.Treated, residue.Consumed, residue.HandoverOp{
			Counterparty:   residue.FinalConsumer,
			CounterpartyID: kernel.NewUUID(),
		}),
	}

	for _, ev := range steps {
		_, err := r.Apply(ev)
		require.NoError(t, err)
	}

	assert.Equal(t, residue.Consumed, r.Status())
	assert.Equal(t, 5, r.Version())
}

func TestRestoreResidue(t *testing.T) {
	t.Run("replay reproduces status, quantity and version", func(t *testing.T) {
		r := newGeneratedResidue(t, "100")
		_, err := r.Apply(relocation(t, residue.Generated))
		require.NoError(t, err)
		_, err = r.Apply(mustEvent(t, residue.InTransit, residue.InTransit, residue.AdjustmentOp{
			NewQuantity: quantityKg(t, "98.5"),
			Reason:      "reweighed at checkpoint",
		}))
		require.NoError(t, err)

		restored, err := residue.RestoreResidue(r.ID(), r.Events())

		require.NoError(t, err)
		assert.Equal(t, r.Status(), restored.Status())
		assert.True(t, restored.Quantity().IsEqual(r.Quantity()))
		assert.Equal(t, r.Version(), restored.Version())
		assert.True(t, restored.Owner().IsEqual(r.Owner()))
		assert.True(t, restored.Location().IsEqual(r.Location()))
	})

	t.Run("empty log is corrupt", func(t *testing.T) {
		_, err := residue.RestoreResidue(kernel.NewUUID(), nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, kernel.ErrCorruptEventLog)
	})

	t.Run("log not starting with generation is corrupt", func(t *testing.T) {
		_, err := residue.RestoreResidue(kernel.NewUUID(), []residue.Event{
			relocation(t, residue.Generated),
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, kernel.ErrCorruptEventLog)
	})

	t.Run("log with an impossible fold is corrupt", func(t *testing.T) {
		gen := generationEvent(t, "100")
		impossible := mustEvent(t, residue.Stored, residue.InTransit, residue.RelocationOp{
			FromLocation: kernel.NewUUID(),
			ToLocation:   kernel.NewUUID(),
			Vehicle:      "TRK-042",
		})

		_, err := residue.RestoreResidue(kernel.NewUUID(), []residue.Event{gen, impossible})

		require.Error(t, err)
		assert.ErrorIs(t, err, kernel.ErrCorruptEventLog)
	})
}
