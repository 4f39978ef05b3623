package event

import (
	"context"

	"github.com/bizbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ActivityLogHandler records every delivered event as a structured log line.
// It subscribes as a wildcard handler, so all event types pass through it.
// The dispatcher daemon runs one to keep an activity trail of what the
// outbox actually delivered.
type ActivityLogHandler struct {
	logger *zap.Logger
}

// NewActivityLogHandler creates a new activity log handler
func NewActivityLogHandler(logger *zap.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{logger: logger}
}

func (h *ActivityLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.logger.Info("event delivered",
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.Time("occurred_at", event.OccurredAt()))
	return nil
}

// EventTypes returns an empty slice, registering the handler for all events
func (h *ActivityLogHandler) EventTypes() []string {
	return []string{}
}

var _ shared.EventHandler = (*ActivityLogHandler)(nil)
