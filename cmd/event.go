package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/frahmantamala/docportal/internal/core/events"
	"github.com/frahmantamala/docportal/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus debugging commands",
	Long:  `Publish portal events on a local bus to check how handlers log them.`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long: `Publish a test event to the event bus for testing and debugging.
Known types: worker.created, worker.deleted, document.created, document.deleted,
document.downloaded, company.updated.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := publishTestEvent(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var (
	eventSubjectID string
	eventActorID   string
)

func buildTestEvent(eventType, subjectID, actorID string) (events.Event, error) {
	switch eventType {
	case events.EventTypeWorkerCreated:
		return events.NewWorkerCreatedEvent(subjectID, "test@example.com", actorID), nil
	case events.EventTypeWorkerDeleted:
		return events.NewWorkerDeletedEvent(subjectID, "worker", actorID), nil
	case events.EventTypeDocumentCreated:
		return events.NewDocumentCreatedEvent(subjectID, "test document", "worker", actorID), nil
	case events.EventTypeDocumentDeleted:
		return events.NewDocumentDeletedEvent(subjectID, actorID), nil
	case events.EventTypeDocumentDownloaded:
		return events.NewDocumentDownloadedEvent(subjectID, actorID), nil
	case events.EventTypeCompanyUpdated:
		return events.NewCompanyUpdatedEvent(subjectID, actorID), nil
	}
	return nil, fmt.Errorf("unknown event type %q", eventType)
}

func publishTestEvent(eventType string) error {
	lg := logger.LoggerWrapper()

	event, err := buildTestEvent(eventType, eventSubjectID, eventActorID)
	if err != nil {
		return err
	}

	eventBus := events.NewEventBus(lg)
	registerEventHandlers(eventBus, lg)

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())

	if err := eventBus.PublishSync(context.Background(), event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventSubjectID, "id", "test-subject", "id of the worker, document or company")
	publishEventCmd.Flags().StringVar(&eventActorID, "actor", "cli-command", "user id recorded as the actor")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
