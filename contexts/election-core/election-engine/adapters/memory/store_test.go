package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"hustings/contexts/election-core/election-engine/domain/entities"
	domainerrors "hustings/contexts/election-core/election-engine/domain/errors"
	"hustings/contexts/election-core/election-engine/ports"
)

func envelopeAt(eventID string, eventType string, occurredAt time.Time) ports.EventEnvelope {
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		OccurredAt:    occurredAt,
		SourceService: "election-engine",
		SchemaVersion: 1,
		PartitionKey:  "election",
	}
}

func TestGetElectionBeforeInitFails(t *testing.T) {
	store := NewStore()

	_, err := store.GetElection(context.Background())
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict before init, got %v", err)
	}
}

func TestInitElectionKeepsFirstState(t *testing.T) {
	store := NewStore()

	first, err := store.InitElection(context.Background(), entities.Election{Administrator: "admin-1"})
	if err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if first.Phase != entities.PhaseSetup || first.DelegationMode != entities.DelegationSingleHop {
		t.Fatalf("expected setup defaults, got %+v", first)
	}

	second, err := store.InitElection(context.Background(), entities.Election{Administrator: "someone-else"})
	if err != nil {
		t.Fatalf("second init failed: %v", err)
	}
	if second.Administrator != "admin-1" {
		t.Fatalf("expected repeated init to keep the stored administrator, got %s", second.Administrator)
	}
}

func TestOutboxPendingFollowsAcceptanceOrder(t *testing.T) {
	now := time.Date(2026, time.March, 6, 8, 0, 0, 0, time.UTC)
	store := NewStore()

	// All three rows share one timestamp; only insertion order can sort them.
	for _, eventID := range []string{"event-1", "event-2", "event-3"} {
		if err := store.AppendOutbox(context.Background(), envelopeAt(eventID, "vote.cast", now)); err != nil {
			t.Fatalf("append %s failed: %v", eventID, err)
		}
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending rows, got %d", len(pending))
	}
	for i, want := range []string{"event-1", "event-2", "event-3"} {
		if pending[i].OutboxID != want {
			t.Fatalf("expected %s at position %d, got %s", want, i, pending[i].OutboxID)
		}
	}

	if err := store.MarkOutboxSent(context.Background(), "event-2", now); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}
	pending, err = store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending after mark failed: %v", err)
	}
	if len(pending) != 2 || pending[0].OutboxID != "event-1" || pending[1].OutboxID != "event-3" {
		t.Fatalf("expected event-1 and event-3 pending, got %+v", pending)
	}
}

func TestAppendOutboxReplaySameEnvelopeIsIdempotent(t *testing.T) {
	now := time.Date(2026, time.March, 6, 8, 0, 0, 0, time.UTC)
	store := NewStore()
	envelope := envelopeAt("event-1", "voter.added", now)

	if err := store.AppendOutbox(context.Background(), envelope); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := store.AppendOutbox(context.Background(), envelope); err != nil {
		t.Fatalf("replay append failed: %v", err)
	}
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected a single row after replay, got %d", len(pending))
	}
}

func TestAppendOutboxConflictingPayloadRejected(t *testing.T) {
	now := time.Date(2026, time.March, 6, 8, 0, 0, 0, time.UTC)
	store := NewStore()

	if err := store.AppendOutbox(context.Background(), envelopeAt("event-1", "voter.added", now)); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	err := store.AppendOutbox(context.Background(), envelopeAt("event-1", "vote.cast", now))
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict for changed payload, got %v", err)
	}
}

func TestMarkOutboxSentUnknownRowRejected(t *testing.T) {
	store := NewStore()

	err := store.MarkOutboxSent(context.Background(), "missing", time.Now().UTC())
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict for unknown outbox id, got %v", err)
	}
}

func TestReserveEventDetectsReplayAndMismatch(t *testing.T) {
	expires := time.Now().UTC().Add(time.Hour)
	store := NewStore()

	replayed, err := store.ReserveEvent(context.Background(), "event-1", "hash-a", expires)
	if err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}
	if replayed {
		t.Fatalf("expected first reservation to be fresh")
	}

	replayed, err = store.ReserveEvent(context.Background(), "event-1", "hash-a", expires)
	if err != nil {
		t.Fatalf("replay reserve failed: %v", err)
	}
	if !replayed {
		t.Fatalf("expected replay detection for the same payload hash")
	}

	_, err = store.ReserveEvent(context.Background(), "event-1", "hash-b", expires)
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict for payload hash mismatch, got %v", err)
	}
}

func TestRestoreSnapshotReplacesModel(t *testing.T) {
	now := time.Date(2026, time.March, 6, 8, 0, 0, 0, time.UTC)
	store := NewStore()
	_, _ = store.InitElection(context.Background(), entities.Election{Administrator: "stale-admin"})

	store.RestoreSnapshot(ports.Snapshot{
		TakenAt: now,
		Election: entities.Election{
			Administrator:  "admin-1",
			Phase:          entities.PhaseVoting,
			CandidateCount: 1,
			VoterCount:     1,
			DelegationMode: entities.DelegationSingleHop,
		},
		Candidates: []entities.Candidate{{CandidateID: 1, Name: "Ada", VoteCount: 4}},
		Voters:     []entities.Voter{{VoterID: "voter-1", Registered: true, HasVoted: true, VoteTarget: 1}},
	})

	election, err := store.GetElection(context.Background())
	if err != nil {
		t.Fatalf("get election after restore failed: %v", err)
	}
	if election.Administrator != "admin-1" || election.Phase != entities.PhaseVoting {
		t.Fatalf("expected restored election state, got %+v", election)
	}
	candidate, found, err := store.GetCandidate(context.Background(), 1)
	if err != nil || !found {
		t.Fatalf("expected restored candidate, got found=%v err=%v", found, err)
	}
	if candidate.VoteCount != 4 {
		t.Fatalf("expected restored vote count 4, got %d", candidate.VoteCount)
	}
}
