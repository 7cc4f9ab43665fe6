package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"hustings/contexts/election-core/election-engine/domain/entities"
	"hustings/contexts/election-core/election-engine/ports"
)

func TestReadSnapshotFreshFileReportsNotFound(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "election.snapshot"))
	if err != nil {
		t.Fatalf("open file store failed: %v", err)
	}
	defer store.Close()

	_, found, err := store.ReadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("read fresh snapshot failed: %v", err)
	}
	if found {
		t.Fatalf("expected fresh file to report no snapshot")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "election.snapshot"))
	if err != nil {
		t.Fatalf("open file store failed: %v", err)
	}
	defer store.Close()

	takenAt := time.Date(2026, time.March, 6, 9, 0, 0, 0, time.UTC)
	started := takenAt.Add(-time.Hour)
	want := ports.Snapshot{
		TakenAt: takenAt,
		Election: entities.Election{
			Administrator:  "admin-1",
			Phase:          entities.PhaseVoting,
			CandidateCount: 2,
			VoterCount:     1,
			DelegationMode: entities.DelegationSingleHop,
			StartedAt:      &started,
		},
		Candidates: []entities.Candidate{
			{CandidateID: 1, Name: "Ada", VoteCount: 3},
			{CandidateID: 2, Name: "Grace", VoteCount: 1},
		},
		Voters: []entities.Voter{
			{VoterID: "voter-1", Registered: true, HasVoted: true, VoteTarget: 1},
		},
		Transitions: []entities.PhaseTransition{
			{TransitionID: "t-1", FromPhase: entities.PhaseSetup, ToPhase: entities.PhaseVoting, ChangedBy: "admin-1"},
		},
	}
	if err := store.WriteSnapshot(context.Background(), want); err != nil {
		t.Fatalf("write snapshot failed: %v", err)
	}

	got, found, err := store.ReadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("read snapshot failed: %v", err)
	}
	if !found {
		t.Fatalf("expected snapshot to be found")
	}
	if got.Election.Administrator != "admin-1" || got.Election.Phase != entities.PhaseVoting {
		t.Fatalf("unexpected election state: %+v", got.Election)
	}
	if len(got.Candidates) != 2 || got.Candidates[0].VoteCount != 3 {
		t.Fatalf("unexpected candidates: %+v", got.Candidates)
	}
	if len(got.Voters) != 1 || got.Voters[0].VoteTarget != 1 {
		t.Fatalf("unexpected voters: %+v", got.Voters)
	}
	if len(got.Transitions) != 1 || got.Transitions[0].ToPhase != entities.PhaseVoting {
		t.Fatalf("unexpected transitions: %+v", got.Transitions)
	}
}

func TestWriteSnapshotReplacesPreviousContent(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "election.snapshot"))
	if err != nil {
		t.Fatalf("open file store failed: %v", err)
	}
	defer store.Close()

	big := ports.Snapshot{
		Election: entities.Election{Administrator: "admin-1", Phase: entities.PhaseVoting, CandidateCount: 3},
		Candidates: []entities.Candidate{
			{CandidateID: 1, Name: "Ada"},
			{CandidateID: 2, Name: "Grace"},
			{CandidateID: 3, Name: "Edsger"},
		},
	}
	if err := store.WriteSnapshot(context.Background(), big); err != nil {
		t.Fatalf("write big snapshot failed: %v", err)
	}

	// The second snapshot is smaller; a stale tail would corrupt the decode.
	small := ports.Snapshot{
		Election:   entities.Election{Administrator: "admin-1", Phase: entities.PhaseClosed, CandidateCount: 1},
		Candidates: []entities.Candidate{{CandidateID: 1, Name: "Ada", VoteCount: 2}},
	}
	if err := store.WriteSnapshot(context.Background(), small); err != nil {
		t.Fatalf("write small snapshot failed: %v", err)
	}

	got, found, err := store.ReadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("read snapshot failed: %v", err)
	}
	if !found {
		t.Fatalf("expected snapshot to be found")
	}
	if got.Election.Phase != entities.PhaseClosed || len(got.Candidates) != 1 {
		t.Fatalf("expected latest snapshot only, got %+v", got)
	}
}
