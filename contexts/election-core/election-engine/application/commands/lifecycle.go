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

// StartElectionCommand moves the election from setup into voting.
type StartElectionCommand struct {
	ActorID string
}

// EndElectionCommand moves the election from voting into closed.
type EndElectionCommand struct {
	ActorID string
}

// LifecycleUseCase drives the one-directional phase machine:
// setup -> voting -> closed. Transitions never skip or reverse, and every
// accepted transition leaves an audit row.
type LifecycleUseCase struct {
	Elections ports.ElectionRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Gate      *sync.Mutex
	Logger    *slog.Logger
}

// StartElection opens voting. Only valid while the election is still in setup.
func (uc LifecycleUseCase) StartElection(ctx context.Context, cmd StartElectionCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("election start requested",
		"event", "election_start_requested",
		"module", "election-core/election-engine",
		"layer", "application",
		"actor_id", strings.TrimSpace(cmd.ActorID),
	)
	if uc.Gate != nil {
		uc.Gate.Lock()
		defer uc.Gate.Unlock()
	}

	election, err := uc.Elections.GetElection(ctx)
	if err != nil {
		return entities.Election{}, err
	}
	if !election.CanRegister() {
		logger.Warn("election start outside setup",
			"event", "election_start_phase_rejected",
			"module", "election-core/election-engine",
			"layer", "application",
			"phase", string(election.Phase),
		)
		return entities.Election{}, domainerrors.ErrElectionAlreadyStarted
	}
	if strings.TrimSpace(cmd.ActorID) != election.Administrator {
		logger.Warn("election start by non-administrator",
			"event", "election_start_unauthorized",
			"module", "election-core/election-engine",
			"layer", "application",
			"actor_id", strings.TrimSpace(cmd.ActorID),
		)
		return entities.Election{}, domainerrors.ErrNotAdministrator
	}

	now := uc.now()
	from := election.Phase
	election.Phase = entities.PhaseVoting
	election.StartedAt = &now
	election.UpdatedAt = now
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	if err := uc.appendTransition(ctx, from, election.Phase, cmd.ActorID, now); err != nil {
		return entities.Election{}, err
	}
	if err := appendElectionEvent(ctx, uc.Outbox, uc.IDGen, "election.started", now, map[string]any{}); err != nil {
		return entities.Election{}, err
	}

	logger.Info("election started",
		"event", "election_started",
		"module", "election-core/election-engine",
		"layer", "application",
		"candidate_count", election.CandidateCount,
		"voter_count", election.VoterCount,
	)
	return election, nil
}

// EndElection closes voting. Requires the voting phase exactly: ending before
// start and ending twice fail with distinct phase errors.
func (uc LifecycleUseCase) EndElection(ctx context.Context, cmd EndElectionCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("election end requested",
		"event", "election_end_requested",
		"module", "election-core/election-engine",
		"layer", "application",
		"actor_id", strings.TrimSpace(cmd.ActorID),
	)
	if uc.Gate != nil {
		uc.Gate.Lock()
		defer uc.Gate.Unlock()
	}

	election, err := uc.Elections.GetElection(ctx)
	if err != nil {
		return entities.Election{}, err
	}
	switch {
	case election.CanRegister():
		logger.Warn("election end before start",
			"event", "election_end_phase_rejected",
			"module", "election-core/election-engine",
			"layer", "application",
			"phase", string(election.Phase),
		)
		return entities.Election{}, domainerrors.ErrVotingNotStarted
	case election.Closed():
		logger.Warn("election end after close",
			"event", "election_end_phase_rejected",
			"module", "election-core/election-engine",
			"layer", "application",
			"phase", string(election.Phase),
		)
		return entities.Election{}, domainerrors.ErrVotingEnded
	}
	if strings.TrimSpace(cmd.ActorID) != election.Administrator {
		logger.Warn("election end by non-administrator",
			"event", "election_end_unauthorized",
			"module", "election-core/election-engine",
			"layer", "application",
			"actor_id", strings.TrimSpace(cmd.ActorID),
		)
		return entities.Election{}, domainerrors.ErrNotAdministrator
	}

	now := uc.now()
	from := election.Phase
	election.Phase = entities.PhaseClosed
	election.EndedAt = &now
	election.UpdatedAt = now
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	if err := uc.appendTransition(ctx, from, election.Phase, cmd.ActorID, now); err != nil {
		return entities.Election{}, err
	}
	if err := appendElectionEvent(ctx, uc.Outbox, uc.IDGen, "election.ended", now, map[string]any{}); err != nil {
		return entities.Election{}, err
	}

	logger.Info("election ended",
		"event", "election_ended",
		"module", "election-core/election-engine",
		"layer", "application",
		"candidate_count", election.CandidateCount,
		"voter_count", election.VoterCount,
	)
	return election, nil
}

func (uc LifecycleUseCase) appendTransition(
	ctx context.Context,
	from entities.Phase,
	to entities.Phase,
	actorID string,
	now time.Time,
) error {
	transitionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	return uc.Elections.AppendPhaseTransition(ctx, entities.PhaseTransition{
		TransitionID: transitionID,
		FromPhase:    from,
		ToPhase:      to,
		ChangedBy:    strings.TrimSpace(actorID),
		CreatedAt:    now,
	})
}

func (uc LifecycleUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
