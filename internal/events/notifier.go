package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes a structured log line for each event whose topic is enabled.
type LogNotifier struct {
	Logger zerolog.Logger
	Topics map[string]bool
}

// NewLogNotifier enables the given topics, or DefaultTopics when none are passed.
func NewLogNotifier(logger zerolog.Logger, topics ...string) LogNotifier {
	if len(topics) == 0 {
		topics = DefaultTopics()
	}
	enabled := make(map[string]bool, len(topics))
	for _, t := range topics {
		enabled[t] = true
	}
	return LogNotifier{Logger: logger, Topics: enabled}
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event Event) error {
	if len(n.Topics) > 0 && !n.Topics[event.Topic] {
		return nil
	}
	n.Logger.Info().
		Str("event_id", event.ID).
		Str("topic", event.Topic).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", event.Payload).
		Msg("domain_event")
	return nil
}
