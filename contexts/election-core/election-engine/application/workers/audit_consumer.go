package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "hustings/contexts/election-core/election-engine/application"
	"hustings/contexts/election-core/election-engine/ports"
)

const (
	candidateAddedTopic  = "candidate.added"
	voterAddedTopic      = "voter.added"
	electionStartedTopic = "election.started"
	electionEndedTopic   = "election.ended"
	voteCastTopic        = "vote.cast"
	defaultAuditCG       = "election-engine-audit-cg"
)

// AuditTrailConsumer is the reference notification sink: it consumes every
// engine event topic and turns the stream into a readable audit trail.
// Delivery is at-least-once, so each event is reserved in the dedupe store
// before an entry is written.
type AuditTrailConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Audit         ports.AuditLogStore
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

// Start subscribes the consumer to all engine event topics.
func (c AuditTrailConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("audit trail consumer disabled by feature flag",
			"event", "election_audit_consumer_disabled",
			"module", "election-core/election-engine",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultAuditCG
	}
	topics := []string{
		candidateAddedTopic,
		voterAddedTopic,
		electionStartedTopic,
		electionEndedTopic,
		voteCastTopic,
	}
	for _, topic := range topics {
		if err := c.Subscriber.Subscribe(ctx, topic, group, c.handleEvent); err != nil {
			logger.Error("audit trail consumer subscribe failed",
				"event", "election_audit_consumer_subscribe_failed",
				"module", "election-core/election-engine",
				"layer", "worker",
				"topic", topic,
				"consumer_group", group,
				"error", err.Error(),
			)
			return err
		}
	}
	logger.Info("audit trail consumer subscriptions active",
		"event", "election_audit_consumer_started",
		"module", "election-core/election-engine",
		"layer", "worker",
		"consumer_group", group,
		"topics", len(topics),
	)
	return nil
}

func (c AuditTrailConsumer) handleEvent(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), c.now().Add(c.dedupTTL()))
	if err != nil {
		logger.Error("audit event dedupe failed",
			"event", "election_audit_dedupe_failed",
			"module", "election-core/election-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err.Error(),
		)
		return err
	}
	if alreadyProcessed {
		logger.Debug("audit event replay skipped",
			"event", "election_audit_replay_skipped",
			"module", "election-core/election-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
		return nil
	}

	entryID, err := c.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	entry := ports.AuditEntry{
		EntryID:    entryID,
		EventID:    event.EventID,
		EventType:  event.EventType,
		Summary:    summarizeEvent(event),
		OccurredAt: event.OccurredAt.UTC(),
		RecordedAt: c.now(),
	}
	if err := c.Audit.AppendAuditEntry(ctx, entry); err != nil {
		logger.Error("audit entry append failed",
			"event", "election_audit_append_failed",
			"module", "election-core/election-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("audit entry recorded",
		"event", "election_audit_recorded",
		"module", "election-core/election-engine",
		"layer", "worker",
		"event_id", event.EventID,
		"event_type", event.EventType,
	)
	return nil
}

func summarizeEvent(event ports.EventEnvelope) string {
	var payload struct {
		CandidateID int    `json:"candidate_id"`
		VoterID     string `json:"voter_id"`
	}
	_ = json.Unmarshal(event.Data, &payload)
	switch event.EventType {
	case candidateAddedTopic:
		return fmt.Sprintf("candidate %d registered", payload.CandidateID)
	case voterAddedTopic:
		return fmt.Sprintf("voter %s registered", payload.VoterID)
	case electionStartedTopic:
		return "voting opened"
	case electionEndedTopic:
		return "voting closed"
	case voteCastTopic:
		return fmt.Sprintf("voter %s cast a ballot for candidate %d", payload.VoterID, payload.CandidateID)
	default:
		return event.EventType
	}
}

func (c AuditTrailConsumer) now() time.Time {
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	return now
}

func (c AuditTrailConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}
