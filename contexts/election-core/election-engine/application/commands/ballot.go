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

// CastVoteCommand casts the caller's ballot for one candidate.
type CastVoteCommand struct {
	VoterID     string
	CandidateID int
}

// CastVoteResult returns the updated voter and candidate rows.
type CastVoteResult struct {
	Voter     entities.Voter
	Candidate entities.Candidate
}

// DelegateCommand hands the caller's ballot to another registered voter.
type DelegateCommand struct {
	VoterID    string
	DelegateTo string
}

// DelegateResult reports how the delegated ballot was resolved. CountedNow is
// true when the ballot reached a candidate tally during this call.
type DelegateResult struct {
	Voter       entities.Voter
	CountedNow  bool
	CandidateID int
}

// BallotUseCase owns vote casting and delegation resolution. Both operations
// are one-shot per voter: once HasVoted is set, any further ballot call fails.
type BallotUseCase struct {
	Elections ports.ElectionRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Gate      *sync.Mutex
	Logger    *slog.Logger
}

// CastVote records a direct vote. The candidate gains the caller's own ballot
// plus any ballots parked on the caller by chained delegation.
func (uc BallotUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.VoterID)
	logger.Info("vote cast started",
		"event", "election_vote_cast_started",
		"module", "election-core/election-engine",
		"layer", "application",
		"voter_id", voterID,
		"candidate_id", cmd.CandidateID,
	)
	if uc.Gate != nil {
		uc.Gate.Lock()
		defer uc.Gate.Unlock()
	}

	election, err := uc.Elections.GetElection(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	if err := uc.guardVotingPhase(logger, election, "election_vote_cast_phase_rejected", voterID); err != nil {
		return CastVoteResult{}, err
	}
	voter, found, err := uc.Elections.GetVoter(ctx, voterID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if !found || !voter.Registered {
		logger.Warn("vote cast by unregistered identity",
			"event", "election_vote_cast_unauthorized",
			"module", "election-core/election-engine",
			"layer", "application",
			"voter_id", voterID,
		)
		return CastVoteResult{}, domainerrors.ErrVoterNotRegistered
	}
	if voter.HasVoted {
		logger.Warn("vote cast after ballot spent",
			"event", "election_vote_cast_duplicate",
			"module", "election-core/election-engine",
			"layer", "application",
			"voter_id", voterID,
		)
		return CastVoteResult{}, domainerrors.ErrAlreadyVoted
	}
	if !election.ValidCandidate(cmd.CandidateID) {
		logger.Warn("vote cast for unknown candidate",
			"event", "election_vote_cast_invalid_candidate",
			"module", "election-core/election-engine",
			"layer", "application",
			"voter_id", voterID,
			"candidate_id", cmd.CandidateID,
		)
		return CastVoteResult{}, domainerrors.ErrInvalidCandidate
	}
	candidate, found, err := uc.Elections.GetCandidate(ctx, cmd.CandidateID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if !found {
		return CastVoteResult{}, domainerrors.ErrInvalidCandidate
	}

	now := uc.now()
	// PendingBallots is nonzero only in chained delegation mode, so the weight
	// is exactly one everywhere else.
	weight := 1 + voter.PendingBallots
	voter.PendingBallots = 0
	voter.HasVoted = true
	voter.VoteTarget = cmd.CandidateID
	voter.UpdatedAt = now
	if err := uc.Elections.SaveVoter(ctx, voter); err != nil {
		return CastVoteResult{}, err
	}
	candidate.VoteCount += weight
	candidate.UpdatedAt = now
	if err := uc.Elections.SaveCandidate(ctx, candidate); err != nil {
		return CastVoteResult{}, err
	}
	if err := appendElectionEvent(ctx, uc.Outbox, uc.IDGen, "vote.cast", now, map[string]any{
		"voter_id":     voterID,
		"candidate_id": cmd.CandidateID,
	}); err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("vote counted",
		"event", "election_vote_counted",
		"module", "election-core/election-engine",
		"layer", "application",
		"voter_id", voterID,
		"candidate_id", cmd.CandidateID,
		"ballots", weight,
		"vote_count", candidate.VoteCount,
	)
	return CastVoteResult{Voter: voter, Candidate: candidate}, nil
}

// Delegate hands the caller's ballot to another voter. Two resolution modes:
//
// In single-hop mode (the default) the ballot moves exactly one hop. A
// delegate who already voted is credited immediately with one extra ballot for
// the candidate their own ballot names; a delegate who has not voted receives
// the caller's current ballot target on their VoteTarget field, where a later
// delegation to the same delegate overwrites it.
//
// In chained mode the ballot follows delegation links to the terminal voter,
// rejecting loops, and stays pending until that voter casts.
func (uc BallotUseCase) Delegate(ctx context.Context, cmd DelegateCommand) (DelegateResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.VoterID)
	targetID := strings.TrimSpace(cmd.DelegateTo)
	logger.Info("delegation started",
		"event", "election_delegate_started",
		"module", "election-core/election-engine",
		"layer", "application",
		"voter_id", voterID,
		"delegate_to", targetID,
	)
	if uc.Gate != nil {
		uc.Gate.Lock()
		defer uc.Gate.Unlock()
	}

	election, err := uc.Elections.GetElection(ctx)
	if err != nil {
		return DelegateResult{}, err
	}
	if err := uc.guardVotingPhase(logger, election, "election_delegate_phase_rejected", voterID); err != nil {
		return DelegateResult{}, err
	}
	caller, found, err := uc.Elections.GetVoter(ctx, voterID)
	if err != nil {
		return DelegateResult{}, err
	}
	if !found || !caller.Registered {
		logger.Warn("delegation by unregistered identity",
			"event", "election_delegate_unauthorized",
			"module", "election-core/election-engine",
			"layer", "application",
			"voter_id", voterID,
		)
		return DelegateResult{}, domainerrors.ErrVoterNotRegistered
	}
	if caller.HasVoted {
		logger.Warn("delegation after ballot spent",
			"event", "election_delegate_duplicate",
			"module", "election-core/election-engine",
			"layer", "application",
			"voter_id", voterID,
		)
		return DelegateResult{}, domainerrors.ErrAlreadyVoted
	}
	target, found, err := uc.Elections.GetVoter(ctx, targetID)
	if err != nil {
		return DelegateResult{}, err
	}
	if !found || !target.Registered {
		logger.Warn("delegation to unregistered identity",
			"event", "election_delegate_invalid_target",
			"module", "election-core/election-engine",
			"layer", "application",
			"voter_id", voterID,
			"delegate_to", targetID,
		)
		return DelegateResult{}, domainerrors.ErrDelegateNotRegistered
	}
	if targetID == voterID {
		logger.Warn("delegation to self",
			"event", "election_delegate_self_rejected",
			"module", "election-core/election-engine",
			"layer", "application",
			"voter_id", voterID,
		)
		return DelegateResult{}, domainerrors.ErrSelfDelegation
	}

	now := uc.now()
	var result DelegateResult
	if election.DelegationMode == entities.DelegationChained {
		result, err = uc.delegateChained(ctx, logger, election, caller, target, now)
	} else {
		result, err = uc.delegateSingleHop(ctx, logger, election, caller, target, now)
	}
	if err != nil {
		return DelegateResult{}, err
	}

	logger.Info("delegation accepted",
		"event", "election_delegate_accepted",
		"module", "election-core/election-engine",
		"layer", "application",
		"voter_id", voterID,
		"delegate_to", targetID,
		"mode", string(election.DelegationMode),
		"counted_now", result.CountedNow,
		"candidate_id", result.CandidateID,
	)
	return result, nil
}

func (uc BallotUseCase) delegateSingleHop(
	ctx context.Context,
	logger *slog.Logger,
	election entities.Election,
	caller entities.Voter,
	target entities.Voter,
	now time.Time,
) (DelegateResult, error) {
	caller.HasVoted = true
	caller.DelegateTo = target.VoterID
	caller.UpdatedAt = now

	if target.HasVoted {
		if !election.ValidCandidate(target.VoteTarget) {
			// The delegate spent their ballot without naming a candidate (they
			// delegated onward themselves), so the handed-over ballot reaches
			// no tally.
			if err := uc.Elections.SaveVoter(ctx, caller); err != nil {
				return DelegateResult{}, err
			}
			logger.Warn("delegated ballot lost",
				"event", "election_delegate_ballot_lost",
				"module", "election-core/election-engine",
				"layer", "application",
				"voter_id", caller.VoterID,
				"delegate_to", target.VoterID,
				"delegate_target", target.VoteTarget,
			)
			return DelegateResult{Voter: caller}, nil
		}
		candidate, found, err := uc.Elections.GetCandidate(ctx, target.VoteTarget)
		if err != nil {
			return DelegateResult{}, err
		}
		if !found {
			return DelegateResult{}, domainerrors.ErrInvalidCandidate
		}
		if err := uc.Elections.SaveVoter(ctx, caller); err != nil {
			return DelegateResult{}, err
		}
		candidate.VoteCount++
		candidate.UpdatedAt = now
		if err := uc.Elections.SaveCandidate(ctx, candidate); err != nil {
			return DelegateResult{}, err
		}
		return DelegateResult{Voter: caller, CountedNow: true, CandidateID: candidate.CandidateID}, nil
	}

	// The delegate has not voted yet: hand the caller's current ballot target
	// over to the delegate's record. A later delegation to the same delegate
	// overwrites this value.
	target.VoteTarget = caller.VoteTarget
	target.UpdatedAt = now
	if err := uc.Elections.SaveVoter(ctx, caller); err != nil {
		return DelegateResult{}, err
	}
	if err := uc.Elections.SaveVoter(ctx, target); err != nil {
		return DelegateResult{}, err
	}
	return DelegateResult{Voter: caller}, nil
}

func (uc BallotUseCase) delegateChained(
	ctx context.Context,
	logger *slog.Logger,
	election entities.Election,
	caller entities.Voter,
	target entities.Voter,
	now time.Time,
) (DelegateResult, error) {
	// Resolve the terminal of the delegation chain before touching any state,
	// so a rejected loop leaves everything untouched.
	visited := map[string]bool{caller.VoterID: true}
	terminal := target
	countNow := false
	candidateID := 0
	for {
		if visited[terminal.VoterID] {
			logger.Warn("delegation loop rejected",
				"event", "election_delegate_loop_rejected",
				"module", "election-core/election-engine",
				"layer", "application",
				"voter_id", caller.VoterID,
				"loop_at", terminal.VoterID,
			)
			return DelegateResult{}, domainerrors.ErrDelegationLoop
		}
		visited[terminal.VoterID] = true
		if !terminal.HasVoted {
			break
		}
		if election.ValidCandidate(terminal.VoteTarget) {
			countNow = true
			candidateID = terminal.VoteTarget
			break
		}
		if terminal.DelegateTo == "" {
			break
		}
		next, found, err := uc.Elections.GetVoter(ctx, terminal.DelegateTo)
		if err != nil {
			return DelegateResult{}, err
		}
		if !found {
			break
		}
		terminal = next
	}

	weight := 1 + caller.PendingBallots
	caller.HasVoted = true
	caller.DelegateTo = target.VoterID
	caller.PendingBallots = 0
	caller.UpdatedAt = now
	if err := uc.Elections.SaveVoter(ctx, caller); err != nil {
		return DelegateResult{}, err
	}

	if countNow {
		candidate, found, err := uc.Elections.GetCandidate(ctx, candidateID)
		if err != nil {
			return DelegateResult{}, err
		}
		if !found {
			return DelegateResult{}, domainerrors.ErrInvalidCandidate
		}
		candidate.VoteCount += weight
		candidate.UpdatedAt = now
		if err := uc.Elections.SaveCandidate(ctx, candidate); err != nil {
			return DelegateResult{}, err
		}
		return DelegateResult{Voter: caller, CountedNow: true, CandidateID: candidateID}, nil
	}

	terminal.PendingBallots += weight
	terminal.UpdatedAt = now
	if err := uc.Elections.SaveVoter(ctx, terminal); err != nil {
		return DelegateResult{}, err
	}
	return DelegateResult{Voter: caller}, nil
}

func (uc BallotUseCase) guardVotingPhase(
	logger *slog.Logger,
	election entities.Election,
	event string,
	voterID string,
) error {
	switch {
	case election.CanRegister():
		logger.Warn("ballot before voting opened",
			"event", event,
			"module", "election-core/election-engine",
			"layer", "application",
			"voter_id", voterID,
			"phase", string(election.Phase),
		)
		return domainerrors.ErrVotingNotStarted
	case election.Closed():
		logger.Warn("ballot after voting closed",
			"event", event,
			"module", "election-core/election-engine",
			"layer", "application",
			"voter_id", voterID,
			"phase", string(election.Phase),
		)
		return domainerrors.ErrVotingEnded
	}
	return nil
}

func (uc BallotUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
