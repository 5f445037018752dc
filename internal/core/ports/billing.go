package ports

import (
	"context"

	"custody/internal/core/domain/model/request"
)

// BillingNotifier announces completed management records to the billing
// system. Notification is fire-and-forget: implementations must never fail
// the calling transaction, correctness does not depend on delivery.
type BillingNotifier interface {
	ManagementRecordCompleted(ctx context.Context, record request.ManagementRecord)
}
