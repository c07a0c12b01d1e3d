package events

import (
	"context"
	"log/slog"
)

// RegisterAuditSubscribers attaches a structured-log consumer to every auth
// event type. Called once at server start.
func RegisterAuditSubscribers(bus *EventBus, logger *slog.Logger) {
	audit := func(ctx context.Context, event Event) error {
		logger.Info("audit",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}

	for _, eventType := range []string{
		EventTypeLoginSucceeded,
		EventTypeLoginFailed,
		EventTypeTokenRefreshed,
		EventTypePermissionDenied,
	} {
		bus.Subscribe(eventType, audit)
	}
}
