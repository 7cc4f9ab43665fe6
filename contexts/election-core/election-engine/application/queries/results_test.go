package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"hustings/contexts/election-core/election-engine/adapters/memory"
	"hustings/contexts/election-core/election-engine/domain/entities"
	domainerrors "hustings/contexts/election-core/election-engine/domain/errors"
)

func seedResultsStore(phase entities.Phase, voteCounts ...int) *memory.Store {
	now := time.Date(2026, time.March, 5, 15, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	_, _ = store.InitElection(context.Background(), entities.Election{
		Administrator:  "admin-1",
		Phase:          phase,
		CandidateCount: len(voteCounts),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	for i, votes := range voteCounts {
		_ = store.SaveCandidate(context.Background(), entities.Candidate{
			CandidateID: i + 1,
			Name:        "Candidate",
			VoteCount:   votes,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return store
}

func TestWinnerTieResolvesToLowestID(t *testing.T) {
	uc := ResultsUseCase{Elections: seedResultsStore(entities.PhaseClosed, 3, 3, 1)}

	winner, err := uc.Winner(context.Background())
	if err != nil {
		t.Fatalf("winner failed: %v", err)
	}
	if winner.CandidateID != 1 {
		t.Fatalf("expected tie to resolve to candidate 1, got %d", winner.CandidateID)
	}
}

func TestWinnerPrefersStrictlyHigherCount(t *testing.T) {
	uc := ResultsUseCase{Elections: seedResultsStore(entities.PhaseClosed, 1, 4, 2)}

	winner, err := uc.Winner(context.Background())
	if err != nil {
		t.Fatalf("winner failed: %v", err)
	}
	if winner.CandidateID != 2 || winner.VoteCount != 4 {
		t.Fatalf("expected candidate 2 with 4 votes, got %d with %d", winner.CandidateID, winner.VoteCount)
	}
}

func TestWinnerRequiresClosedPhase(t *testing.T) {
	for _, phase := range []entities.Phase{entities.PhaseSetup, entities.PhaseVoting} {
		uc := ResultsUseCase{Elections: seedResultsStore(phase, 2)}
		_, err := uc.Winner(context.Background())
		if !errors.Is(err, domainerrors.ErrElectionNotClosed) {
			t.Fatalf("expected ErrElectionNotClosed in %s phase, got %v", phase, err)
		}
	}
}

func TestWinnerWithoutCandidatesReturnsZeroValue(t *testing.T) {
	uc := ResultsUseCase{Elections: seedResultsStore(entities.PhaseClosed)}

	winner, err := uc.Winner(context.Background())
	if err != nil {
		t.Fatalf("winner failed: %v", err)
	}
	if winner.CandidateID != 0 || winner.Name != "" || winner.VoteCount != 0 {
		t.Fatalf("expected zero-valued winner, got %+v", winner)
	}
}

func TestStandingsOrderByVotesThenID(t *testing.T) {
	uc := ResultsUseCase{Elections: seedResultsStore(entities.PhaseVoting, 1, 5, 5, 0)}

	standings, err := uc.Standings(context.Background())
	if err != nil {
		t.Fatalf("standings failed: %v", err)
	}
	wantOrder := []int{2, 3, 1, 4}
	if len(standings) != len(wantOrder) {
		t.Fatalf("expected %d rows, got %d", len(wantOrder), len(standings))
	}
	for i, candidate := range standings {
		if candidate.CandidateID != wantOrder[i] {
			t.Fatalf("expected candidate %d at position %d, got %d", wantOrder[i], i, candidate.CandidateID)
		}
	}
}

func TestCandidateRejectsOutOfRangeID(t *testing.T) {
	uc := ResultsUseCase{Elections: seedResultsStore(entities.PhaseVoting, 1, 2)}

	for _, candidateID := range []int{0, 3, -7} {
		_, err := uc.Candidate(context.Background(), candidateID)
		if !errors.Is(err, domainerrors.ErrInvalidCandidate) {
			t.Fatalf("expected ErrInvalidCandidate for id %d, got %v", candidateID, err)
		}
	}
}

func TestVoterDetailsUnknownIdentityReturnsZeroValue(t *testing.T) {
	uc := ResultsUseCase{Elections: seedResultsStore(entities.PhaseVoting, 1)}

	voter, err := uc.VoterDetails(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("voter details failed: %v", err)
	}
	if voter.VoterID != "ghost" || voter.Registered || voter.HasVoted || voter.VoteTarget != 0 {
		t.Fatalf("expected zero-valued voter record, got %+v", voter)
	}
}

func TestTurnoutAggregatesBallotActivity(t *testing.T) {
	now := time.Date(2026, time.March, 5, 15, 0, 0, 0, time.UTC)
	store := seedResultsStore(entities.PhaseVoting, 2, 1)
	_ = store.SaveVoter(context.Background(), entities.Voter{
		VoterID: "voter-a", Registered: true, HasVoted: true, VoteTarget: 1, CreatedAt: now, UpdatedAt: now,
	})
	_ = store.SaveVoter(context.Background(), entities.Voter{
		VoterID: "voter-b", Registered: true, HasVoted: true, DelegateTo: "voter-a", CreatedAt: now, UpdatedAt: now,
	})
	_ = store.SaveVoter(context.Background(), entities.Voter{
		VoterID: "voter-c", Registered: true, CreatedAt: now, UpdatedAt: now,
	})
	uc := ResultsUseCase{Elections: store}

	turnout, err := uc.Turnout(context.Background())
	if err != nil {
		t.Fatalf("turnout failed: %v", err)
	}
	if turnout.RegisteredVoters != 3 {
		t.Fatalf("expected 3 registered voters, got %d", turnout.RegisteredVoters)
	}
	if turnout.BallotsCast != 2 || turnout.DirectVotes != 1 || turnout.Delegations != 1 {
		t.Fatalf("unexpected ballot split: %+v", turnout)
	}
	if turnout.CountedBallots != 3 {
		t.Fatalf("expected 3 counted ballots, got %d", turnout.CountedBallots)
	}
	want := 100 * float64(2) / float64(3)
	if turnout.TurnoutPercent != want {
		t.Fatalf("expected turnout percent %f, got %f", want, turnout.TurnoutPercent)
	}
}
