package cmd

import (
	"context"
	"strings"

	"github.com/designxcel/storefront/internal/core/events"
	"github.com/designxcel/storefront/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Audit event commands",
	Long:  `Inspect the audit pipeline: publish sample auth events through the in-process bus`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample auth event through the audit subscribers",
	Long: `Publish a sample auth event and run it through the same audit subscribers
the server registers at start. Defaults to ` + events.EventTypeLoginSucceeded + `.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eventType := events.EventTypeLoginSucceeded
		if len(args) > 0 {
			eventType = args[0]
		}
		publishSampleEvent(eventType)
	},
}

var eventReason string

func publishSampleEvent(eventType string) {
	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)
	events.RegisterAuditSubscribers(eventBus, lg)

	var event events.Event
	switch eventType {
	case events.EventTypeLoginSucceeded:
		event = events.NewLoginSucceededEvent(0, "sample@designxcel.com", "Employee")
	case events.EventTypeLoginFailed:
		event = events.NewLoginFailedEvent("sample@designxcel.com", eventReason)
	case events.EventTypeTokenRefreshed:
		event = events.NewTokenRefreshedEvent(0)
	case events.EventTypePermissionDenied:
		event = events.NewPermissionDeniedEvent(0, "products.canCreate", "/api/v1/admin/products")
	default:
		lg.Error("unknown event type",
			"event_type", eventType,
			"known_types", strings.Join([]string{
				events.EventTypeLoginSucceeded,
				events.EventTypeLoginFailed,
				events.EventTypeTokenRefreshed,
				events.EventTypePermissionDenied,
			}, ", "))
		return
	}

	lg.Info("publishing sample event", "event_type", eventType, "event_id", event.EventID())

	if err := eventBus.PublishSync(context.Background(), event); err != nil {
		lg.Error("failed to publish event", "error", err)
		return
	}

	lg.Info("sample event published")
}

func init() {

	publishEventCmd.Flags().StringVar(&eventReason, "reason", "bad password", "Failure reason attached to "+events.EventTypeLoginFailed)

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
