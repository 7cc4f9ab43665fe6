package commands

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"hustings/contexts/election-core/election-engine/adapters/memory"
	"hustings/contexts/election-core/election-engine/domain/entities"
	domainerrors "hustings/contexts/election-core/election-engine/domain/errors"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

type engineFixture struct {
	store     *memory.Store
	registry  RegistryUseCase
	lifecycle LifecycleUseCase
	ballots   BallotUseCase
}

func newEngineFixture(now time.Time, mode entities.DelegationMode) engineFixture {
	store := memory.NewStore()
	_, _ = store.InitElection(context.Background(), entities.Election{
		Administrator:  "admin-1",
		DelegationMode: mode,
	})
	gate := &sync.Mutex{}
	clock := fixedClock{now: now}
	return engineFixture{
		store:     store,
		registry:  RegistryUseCase{Elections: store, Outbox: store, Clock: clock, IDGen: store, Gate: gate},
		lifecycle: LifecycleUseCase{Elections: store, Outbox: store, Clock: clock, IDGen: store, Gate: gate},
		ballots:   BallotUseCase{Elections: store, Outbox: store, Clock: clock, IDGen: store, Gate: gate},
	}
}

func TestAddCandidateAssignsDenseIDs(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	fx := newEngineFixture(now, entities.DelegationSingleHop)

	first, err := fx.registry.AddCandidate(context.Background(), AddCandidateCommand{
		ActorID:  "admin-1",
		Name:     "Ada",
		Proposal: "more libraries",
	})
	if err != nil {
		t.Fatalf("first add candidate failed: %v", err)
	}
	second, err := fx.registry.AddCandidate(context.Background(), AddCandidateCommand{
		ActorID: "admin-1",
		Name:    "Grace",
	})
	if err != nil {
		t.Fatalf("second add candidate failed: %v", err)
	}
	if first.CandidateID != 1 || second.CandidateID != 2 {
		t.Fatalf("expected dense ids 1 and 2, got %d and %d", first.CandidateID, second.CandidateID)
	}
	if first.VoteCount != 0 || second.VoteCount != 0 {
		t.Fatalf("expected new candidates to start with zero votes")
	}

	election, err := fx.store.GetElection(context.Background())
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}
	if election.CandidateCount != 2 {
		t.Fatalf("expected candidate count 2, got %d", election.CandidateCount)
	}
}

func TestAddCandidateRejectsNonAdministrator(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	fx := newEngineFixture(now, entities.DelegationSingleHop)

	_, err := fx.registry.AddCandidate(context.Background(), AddCandidateCommand{
		ActorID: "intruder",
		Name:    "Ada",
	})
	if !errors.Is(err, domainerrors.ErrNotAdministrator) {
		t.Fatalf("expected ErrNotAdministrator, got %v", err)
	}

	candidates, err := fx.store.ListCandidates(context.Background())
	if err != nil {
		t.Fatalf("list candidates failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates after rejected call, got %d", len(candidates))
	}
}

func TestAddCandidatePhaseGuardBeforeAuthorization(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	fx := newEngineFixture(now, entities.DelegationSingleHop)
	if _, err := fx.lifecycle.StartElection(context.Background(), StartElectionCommand{ActorID: "admin-1"}); err != nil {
		t.Fatalf("start election failed: %v", err)
	}

	// A non-administrator calling after start still sees the phase rejection,
	// not the authorization one.
	_, err := fx.registry.AddCandidate(context.Background(), AddCandidateCommand{
		ActorID: "intruder",
		Name:    "Ada",
	})
	if !errors.Is(err, domainerrors.ErrRegistrationClosed) {
		t.Fatalf("expected ErrRegistrationClosed, got %v", err)
	}
}

func TestAddCandidateRejectsEmptyName(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	fx := newEngineFixture(now, entities.DelegationSingleHop)

	_, err := fx.registry.AddCandidate(context.Background(), AddCandidateCommand{
		ActorID: "admin-1",
		Name:    "   ",
	})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAddVoterRejectsDuplicateRegistration(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	fx := newEngineFixture(now, entities.DelegationSingleHop)

	if _, err := fx.registry.AddVoter(context.Background(), AddVoterCommand{ActorID: "admin-1", VoterID: "voter-1"}); err != nil {
		t.Fatalf("first add voter failed: %v", err)
	}
	_, err := fx.registry.AddVoter(context.Background(), AddVoterCommand{ActorID: "admin-1", VoterID: "voter-1"})
	if !errors.Is(err, domainerrors.ErrVoterAlreadyRegistered) {
		t.Fatalf("expected ErrVoterAlreadyRegistered, got %v", err)
	}

	election, err := fx.store.GetElection(context.Background())
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}
	if election.VoterCount != 1 {
		t.Fatalf("expected voter count 1 after duplicate rejection, got %d", election.VoterCount)
	}
}

func TestAddVoterIdentityIsOpaque(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	fx := newEngineFixture(now, entities.DelegationSingleHop)

	// Identities differing only by case are distinct voters.
	if _, err := fx.registry.AddVoter(context.Background(), AddVoterCommand{ActorID: "admin-1", VoterID: "Voter-1"}); err != nil {
		t.Fatalf("add Voter-1 failed: %v", err)
	}
	if _, err := fx.registry.AddVoter(context.Background(), AddVoterCommand{ActorID: "admin-1", VoterID: "voter-1"}); err != nil {
		t.Fatalf("add voter-1 failed: %v", err)
	}

	election, err := fx.store.GetElection(context.Background())
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}
	if election.VoterCount != 2 {
		t.Fatalf("expected two distinct voters, got count %d", election.VoterCount)
	}
}

func TestAddCandidateAppendsOutboxEnvelope(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	fx := newEngineFixture(now, entities.DelegationSingleHop)

	if _, err := fx.registry.AddCandidate(context.Background(), AddCandidateCommand{ActorID: "admin-1", Name: "Ada"}); err != nil {
		t.Fatalf("add candidate failed: %v", err)
	}

	pending, err := fx.store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one outbox row, got %d", len(pending))
	}
	var envelope struct {
		EventType     string `json:"event_type"`
		PartitionKey  string `json:"partition_key"`
		SchemaVersion int    `json:"schema_version"`
		Data          struct {
			CandidateID int `json:"candidate_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(pending[0].Payload, &envelope); err != nil {
		t.Fatalf("decode outbox envelope failed: %v", err)
	}
	if envelope.EventType != "candidate.added" {
		t.Fatalf("expected candidate.added event, got %s", envelope.EventType)
	}
	if envelope.PartitionKey != "election" {
		t.Fatalf("expected fixed partition key, got %q", envelope.PartitionKey)
	}
	if envelope.SchemaVersion != 1 {
		t.Fatalf("expected schema version 1, got %d", envelope.SchemaVersion)
	}
	if envelope.Data.CandidateID != 1 {
		t.Fatalf("expected candidate id 1 in payload, got %d", envelope.Data.CandidateID)
	}
}
