package ports

import (
	"context"
	"time"

	"hustings/contexts/election-core/election-engine/domain/entities"
	contractsv1 "hustings/contracts/gen/events/v1"
)

// ElectionRepository owns persistence for the singleton election aggregate:
// the election row, the candidate roster, the voter roll, and the phase audit.
type ElectionRepository interface {
	// InitElection creates the singleton row when absent and returns the stored
	// state either way, so bootstrap can re-run safely across restarts.
	InitElection(ctx context.Context, election entities.Election) (entities.Election, error)
	GetElection(ctx context.Context) (entities.Election, error)
	SaveElection(ctx context.Context, election entities.Election) error

	GetCandidate(ctx context.Context, candidateID int) (entities.Candidate, bool, error)
	ListCandidates(ctx context.Context) ([]entities.Candidate, error)
	SaveCandidate(ctx context.Context, candidate entities.Candidate) error

	GetVoter(ctx context.Context, voterID string) (entities.Voter, bool, error)
	ListVoters(ctx context.Context) ([]entities.Voter, error)
	SaveVoter(ctx context.Context, voter entities.Voter) error

	AppendPhaseTransition(ctx context.Context, transition entities.PhaseTransition) error
	ListPhaseTransitions(ctx context.Context) ([]entities.PhaseTransition, error)
}

// OutboxWriter appends accepted-operation events inside the same critical
// section as the state change, so outbox order equals acceptance order.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, event EventEnvelope) error
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// EventDedupStore provides idempotent processing guarantees for consumed
// events under at-least-once delivery.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

// AuditEntry is one consumed-event record in the election audit trail.
type AuditEntry struct {
	EntryID    string
	EventID    string
	EventType  string
	Summary    string
	OccurredAt time.Time
	RecordedAt time.Time
}

// AuditLogStore persists the human-readable audit trail built by the
// notification consumer.
type AuditLogStore interface {
	AppendAuditEntry(ctx context.Context, entry AuditEntry) error
	ListAuditEntries(ctx context.Context) ([]AuditEntry, error)
}

// Snapshot is a full copy of the election model at one point in time.
type Snapshot struct {
	TakenAt     time.Time
	Election    entities.Election
	Candidates  []entities.Candidate
	Voters      []entities.Voter
	Transitions []entities.PhaseTransition
}

// SnapshotStore persists full-model snapshots for restart recovery.
type SnapshotStore interface {
	WriteSnapshot(ctx context.Context, snapshot Snapshot) error
	// ReadSnapshot reports found=false when no snapshot has been written yet.
	ReadSnapshot(ctx context.Context) (Snapshot, bool, error)
}

// Clock allows deterministic testing of timestamps.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts event/transition identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
