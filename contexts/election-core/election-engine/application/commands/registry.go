package commands

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	application "hustings/contexts/election-core/election-engine/application"
	"hustings/contexts/election-core/election-engine/domain/entities"
	domainerrors "hustings/contexts/election-core/election-engine/domain/errors"
	"hustings/contexts/election-core/election-engine/ports"
)

// AddCandidateCommand registers one candidate during setup.
type AddCandidateCommand struct {
	ActorID  string
	Name     string
	Proposal string
}

// AddVoterCommand puts one identity on the voter roll during setup.
type AddVoterCommand struct {
	ActorID string
	VoterID string
}

// RegistryUseCase handles setup-phase roster changes. Both operations are
// administrator-only and rejected once voting starts.
type RegistryUseCase struct {
	Elections ports.ElectionRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Gate      *sync.Mutex
	Logger    *slog.Logger
}

// AddCandidate assigns the next dense candidate id and stores the candidate
// with zero votes. Validation completes before the first write so a rejected
// call leaves no trace.
func (uc RegistryUseCase) AddCandidate(ctx context.Context, cmd AddCandidateCommand) (entities.Candidate, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("candidate registration started",
		"event", "election_candidate_add_started",
		"module", "election-core/election-engine",
		"layer", "application",
		"actor_id", strings.TrimSpace(cmd.ActorID),
		"name", strings.TrimSpace(cmd.Name),
	)
	if uc.Gate != nil {
		uc.Gate.Lock()
		defer uc.Gate.Unlock()
	}

	election, err := uc.Elections.GetElection(ctx)
	if err != nil {
		return entities.Candidate{}, err
	}
	if !election.CanRegister() {
		logger.Warn("candidate registration outside setup",
			"event", "election_candidate_add_phase_rejected",
			"module", "election-core/election-engine",
			"layer", "application",
			"phase", string(election.Phase),
		)
		return entities.Candidate{}, domainerrors.ErrRegistrationClosed
	}
	if strings.TrimSpace(cmd.ActorID) != election.Administrator {
		logger.Warn("candidate registration by non-administrator",
			"event", "election_candidate_add_unauthorized",
			"module", "election-core/election-engine",
			"layer", "application",
			"actor_id", strings.TrimSpace(cmd.ActorID),
		)
		return entities.Candidate{}, domainerrors.ErrNotAdministrator
	}
	if strings.TrimSpace(cmd.Name) == "" {
		logger.Warn("candidate registration validation failed",
			"event", "election_candidate_add_validation_failed",
			"module", "election-core/election-engine",
			"layer", "application",
			"actor_id", strings.TrimSpace(cmd.ActorID),
		)
		return entities.Candidate{}, domainerrors.ErrInvalidInput
	}

	now := uc.now()
	candidate := entities.Candidate{
		CandidateID: election.CandidateCount + 1,
		Name:        strings.TrimSpace(cmd.Name),
		Proposal:    strings.TrimSpace(cmd.Proposal),
		VoteCount:   0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.Elections.SaveCandidate(ctx, candidate); err != nil {
		return entities.Candidate{}, err
	}
	election.CandidateCount = candidate.CandidateID
	election.UpdatedAt = now
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Candidate{}, err
	}
	if err := appendElectionEvent(ctx, uc.Outbox, uc.IDGen, "candidate.added", now, map[string]any{
		"candidate_id": candidate.CandidateID,
	}); err != nil {
		return entities.Candidate{}, err
	}

	logger.Info("candidate registered",
		"event", "election_candidate_added",
		"module", "election-core/election-engine",
		"layer", "application",
		"candidate_id", candidate.CandidateID,
		"name", candidate.Name,
	)
	return candidate, nil
}

// AddVoter registers an identity on the voter roll with zeroed ballot state.
// Registering the same identity twice is rejected.
func (uc RegistryUseCase) AddVoter(ctx context.Context, cmd AddVoterCommand) (entities.Voter, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("voter registration started",
		"event", "election_voter_add_started",
		"module", "election-core/election-engine",
		"layer", "application",
		"actor_id", strings.TrimSpace(cmd.ActorID),
		"voter_id", strings.TrimSpace(cmd.VoterID),
	)
	if uc.Gate != nil {
		uc.Gate.Lock()
		defer uc.Gate.Unlock()
	}

	election, err := uc.Elections.GetElection(ctx)
	if err != nil {
		return entities.Voter{}, err
	}
	if !election.CanRegister() {
		logger.Warn("voter registration outside setup",
			"event", "election_voter_add_phase_rejected",
			"module", "election-core/election-engine",
			"layer", "application",
			"phase", string(election.Phase),
		)
		return entities.Voter{}, domainerrors.ErrRegistrationClosed
	}
	if strings.TrimSpace(cmd.ActorID) != election.Administrator {
		logger.Warn("voter registration by non-administrator",
			"event", "election_voter_add_unauthorized",
			"module", "election-core/election-engine",
			"layer", "application",
			"actor_id", strings.TrimSpace(cmd.ActorID),
		)
		return entities.Voter{}, domainerrors.ErrNotAdministrator
	}
	voterID := strings.TrimSpace(cmd.VoterID)
	if voterID == "" {
		logger.Warn("voter registration validation failed",
			"event", "election_voter_add_validation_failed",
			"module", "election-core/election-engine",
			"layer", "application",
			"actor_id", strings.TrimSpace(cmd.ActorID),
		)
		return entities.Voter{}, domainerrors.ErrInvalidInput
	}
	if existing, found, err := uc.Elections.GetVoter(ctx, voterID); err != nil {
		return entities.Voter{}, err
	} else if found && existing.Registered {
		logger.Warn("voter already registered",
			"event", "election_voter_add_duplicate",
			"module", "election-core/election-engine",
			"layer", "application",
			"voter_id", voterID,
		)
		return entities.Voter{}, domainerrors.ErrVoterAlreadyRegistered
	}

	now := uc.now()
	voter := entities.Voter{
		VoterID:    voterID,
		Registered: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.Elections.SaveVoter(ctx, voter); err != nil {
		return entities.Voter{}, err
	}
	election.VoterCount++
	election.UpdatedAt = now
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Voter{}, err
	}
	if err := appendElectionEvent(ctx, uc.Outbox, uc.IDGen, "voter.added", now, map[string]any{
		"voter_id": voterID,
	}); err != nil {
		return entities.Voter{}, err
	}

	logger.Info("voter registered",
		"event", "election_voter_added",
		"module", "election-core/election-engine",
		"layer", "application",
		"voter_id", voterID,
		"voter_count", election.VoterCount,
	)
	return voter, nil
}

func (uc RegistryUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

// appendElectionEvent is shared by all command use cases. Outbox is optional
// for pure read/test wiring, so nil is treated as no-op.
func appendElectionEvent(
	ctx context.Context,
	outbox ports.OutboxWriter,
	idGen ports.IDGenerator,
	eventType string,
	occurredAt time.Time,
	data map[string]any,
) error {
	if outbox == nil {
		return nil
	}
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newElectionEnvelope(eventID, eventType, occurredAt, data)
	if err != nil {
		return err
	}
	return outbox.AppendOutbox(ctx, envelope)
}
