package commands

import (
	"time"

	"arbiter/internal/shared/events"
)

const sourceService = "dispute-resolution/verdict-engine"

// newVerdictEnvelope wraps a payload in the canonical event shape,
// partitioned by dilemma so per-dilemma consumers observe stable order.
func newVerdictEnvelope(
	eventID string,
	eventType string,
	dilemmaID string,
	occurredAt time.Time,
	payload map[string]any,
) events.Envelope {
	return events.Envelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  sourceService,
		OccurredAtUTC:  occurredAt,
		CorrelationID:  eventID,
		EntityType:     "dilemma",
		EntityID:       dilemmaID,
		PayloadVersion: 1,
		Payload:        payload,
	}
}
