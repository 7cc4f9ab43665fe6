package commands

import (
	"encoding/json"
	"time"

	contractsv1 "hustings/contracts/gen/events/v1"

	"hustings/contexts/election-core/election-engine/ports"
)

// The election is a singleton, so every event shares one fixed partition key
// and consumers observe the stream in acceptance order.
const electionPartitionKey = "election"

func newElectionEnvelope(
	eventID string,
	eventType string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "election-engine",
		TraceID:          eventID,
		SchemaVersion:    contractsv1.SchemaVersion,
		PartitionKeyPath: "",
		PartitionKey:     electionPartitionKey,
		Data:             payload,
	}, nil
}
