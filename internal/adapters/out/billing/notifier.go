// Package billing announces completed management records to the billing
// system.
package billing

import (
	"context"
	"log/slog"

	"custody/internal/core/domain/model/request"
)

// LogNotifier is a fire-and-forget BillingNotifier that records completed
// management records on the structured log. It stands in for the billing
// integration; swapping in a queue-backed notifier needs no caller changes.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier writing to the given logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// ManagementRecordCompleted implements BillingNotifier. It never fails the
// calling transaction.
func (n *LogNotifier) ManagementRecordCompleted(ctx context.Context, record request.ManagementRecord) {
	n.logger.InfoContext(ctx, "management record completed",
		"record_id", record.ID().String(),
		"order_id", record.OrderID().String(),
		"service", record.Service().String(),
		"amount", record.Quantity().Amount().String(),
		"unit", record.Quantity().Unit().String(),
		"origin", record.Origin().String(),
		"destination", record.Destination().String(),
		"completed_at", record.CompletedAt(),
	)
}
