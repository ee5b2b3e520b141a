package events

import (
	"context"
	"log/slog"
)

// AuditSubscriber writes an audit trail entry for every plan lifecycle
// event. Entries go to the structured log so they end up wherever the
// deployment ships its logs.
type AuditSubscriber struct {
	logger *slog.Logger
}

func NewAuditSubscriber(logger *slog.Logger) *AuditSubscriber {
	return &AuditSubscriber{logger: logger}
}

func (a *AuditSubscriber) Register(bus *EventBus) {
	for _, eventType := range []string{
		PlanSubmittedEvent,
		PlanApprovedEvent,
		PlanRejectedEvent,
		PlanCompletedEvent,
		PlanRatedEvent,
	} {
		bus.Subscribe(eventType, a.handle)
	}
}

func (a *AuditSubscriber) handle(_ context.Context, event Event) error {
	a.logger.Info("audit",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"occurred_at", event.OccurredAt(),
		"payload", event.Payload())
	return nil
}
