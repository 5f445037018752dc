package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/residue"
)

// StoredResidueEvent is the projection envelope of one persisted custody
// event: the event's transition plus the denormalized balance keys recorded
// at append time, so the projector never has to replay the aggregate.
//
// Amount is the moved quantity, or the signed quantity difference for
// adjustments. Seq is the global, monotonically increasing append sequence
// the projector checkpoints on.
type StoredResidueEvent struct {
	Seq         int64
	EventID     kernel.UUID
	ResidueID   kernel.UUID
	WasteTypeID kernel.UUID
	Owner       kernel.UUID
	Facility    kernel.UUID
	FromStatus  residue.Status
	ToStatus    residue.Status
	Kind        residue.OperationKind
	Amount      decimal.Decimal
	Unit        kernel.Unit
	OccurredAt  time.Time
}

// ResidueEventStream is the read side of the custody event log: a lazy,
// forward-only, restartable feed ordered by append sequence.
type ResidueEventStream interface {
	// ReadAfter returns up to limit events with Seq greater than afterSeq,
	// in ascending sequence order. An empty slice means the stream is
	// exhausted for now.
	ReadAfter(ctx context.Context, afterSeq int64, limit int) ([]StoredResidueEvent, error)
}
