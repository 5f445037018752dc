package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/request"
	"custody/internal/core/domain/model/residue"
	"custody/internal/core/domain/services"
)

func newDeriver(t *testing.T) services.EventDeriver {
	t.Helper()
	return services.NewEventDeriver(exactEngine(t))
}

func newResidue(t *testing.T, amount string) *residue.Residue {
	t.Helper()
	gen, err := residue.NewEvent(
		kernel.NewUUID(),
		residue.StatusUnknown,
		residue.Generated,
		time.Now(),
		residue.GenerationOp{
			WasteTypeID: kernel.NewUUID(),
			Quantity:    quantityKg(t, amount),
			Owner:       kernel.NewUUID(),
			Location:    kernel.NewUUID(),
		},
	)
	require.NoError(t, err)

	r, err := residue.NewResidue(kernel.NewUUID(), gen)
	require.NoError(t, err)
	return r
}

func storedResidue(t *testing.T, amount string) *residue.Residue {
	t.Helper()
	r := newResidue(t, amount)
	ev, err := residue.NewEvent(
		kernel.NewUUID(), residue.Generated, residue.Stored, time.Now(),
		residue.StorageOp{Location: kernel.NewUUID()})
	require.NoError(t, err)
	_, err = r.Apply(ev)
	require.NoError(t, err)
	return r
}

func TestEventDeriver_Derive(t *testing.T) {
	now := time.Now()

	t.Run("transport derives a relocation", func(t *testing.T) {
		r := newResidue(t, "100")
		dest := kernel.NewUUID()

		ev, ok, err := newDeriver(t).Derive(
			request.StageTransport, request.ServiceTreatment, r,
			services.StageAdvanceContext{
				OccurredAt:  now,
				Vehicle:     "TRK-042",
				Destination: dest,
			})

		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, residue.Relocation, ev.Kind())
		assert.Equal(t, residue.InTransit, ev.ToStatus())
		op, isRelocation := ev.Operation().(residue.RelocationOp)
		require.True(t, isRelocation)
		assert.True(t, op.FromLocation.IsEqual(r.Location()))
		assert.True(t, op.ToLocation.IsEqual(dest))

		_, err = r.Apply(ev)
		require.NoError(t, err, "derived event must be applicable")
	})

	t.Run("reception derives a handover to the receiving facility", func(t *testing.T) {
		r := newResidue(t, "100")
		relocate, ok, err := newDeriver(t).Derive(
			request.StageTransport, request.ServiceTreatment, r,
			services.StageAdvanceContext{
				OccurredAt: now, Vehicle: "TRK-042", Destination: kernel.NewUUID(),
			})
		require.NoError(t, err)
		require.True(t, ok)
		_, err = r.Apply(relocate)
		require.NoError(t, err)

		ev, ok, err := newDeriver(t).Derive(
			request.StageReception, request.ServiceTreatment, r,
			services.StageAdvanceContext{OccurredAt: now, Destination: kernel.NewUUID()})

		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, residue.Handover, ev.Kind())
		assert.Equal(t, residue.Stored, ev.ToStatus())

		_, err = r.Apply(ev)
		require.NoError(t, err)
	})

	t.Run("processing derives by service kind", func(t *testing.T) {
		cases := []struct {
			service request.ServiceKind
			want    residue.Status
		}{
			{request.ServiceTreatment, residue.Treated},
			{request.ServiceDisposal, residue.Disposed},
		}

		for _, tc := range cases {
			r := storedResidue(t, "100")

			ev, ok, err := newDeriver(t).Derive(
				request.StageProcessing, tc.service, r,
				services.StageAdvanceContext{OccurredAt: now, Destination: kernel.NewUUID()})

			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tc.want, ev.ToStatus())

			_, err = r.Apply(ev)
			require.NoError(t, err)
		}
	})

	t.Run("processing a transformation is conservation gated", func(t *testing.T) {
		r := storedResidue(t, "100")
		short := services.StageAdvanceContext{
			OccurredAt: now,
			Outputs:    outputs(t, "60", "35").Outputs,
		}

		_, _, err := newDeriver(t).Derive(
			request.StageProcessing, request.ServiceTransformation, r, short)

		require.Error(t, err)
		assert.ErrorIs(t, err, kernel.ErrConservationViolation)

		short.LossReason = "5kg process loss"
		ev, ok, err := newDeriver(t).Derive(
			request.StageProcessing, request.ServiceTransformation, r, short)

		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, residue.Transformed, ev.ToStatus())
	})

	t.Run("administrative stages derive nothing", func(t *testing.T) {
		r := newResidue(t, "100")

		for _, stage := range []request.Stage{
			request.StageInitiation, request.StageValidation, request.StageFinalization,
		} {
			_, ok, err := newDeriver(t).Derive(
				stage, request.ServiceTreatment, r, services.StageAdvanceContext{})

			require.NoError(t, err)
			assert.False(t, ok)
		}
	})
}
