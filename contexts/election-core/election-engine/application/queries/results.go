package queries

import (
	"context"
	"sort"
	"strings"

	"hustings/contexts/election-core/election-engine/domain/entities"
	domainerrors "hustings/contexts/election-core/election-engine/domain/errors"
	"hustings/contexts/election-core/election-engine/ports"
)

// ResultsUseCase serves candidate, tally, and winner reads. Reads carry no
// phase restriction except Winner, which requires the closed phase.
type ResultsUseCase struct {
	Elections ports.ElectionRepository
}

// Candidate returns the full candidate record for a valid dense id.
func (uc ResultsUseCase) Candidate(ctx context.Context, candidateID int) (entities.Candidate, error) {
	election, err := uc.Elections.GetElection(ctx)
	if err != nil {
		return entities.Candidate{}, err
	}
	if !election.ValidCandidate(candidateID) {
		return entities.Candidate{}, domainerrors.ErrInvalidCandidate
	}
	candidate, found, err := uc.Elections.GetCandidate(ctx, candidateID)
	if err != nil {
		return entities.Candidate{}, err
	}
	if !found {
		return entities.Candidate{}, domainerrors.ErrInvalidCandidate
	}
	return candidate, nil
}

// Candidates lists the roster in candidate id order.
func (uc ResultsUseCase) Candidates(ctx context.Context) ([]entities.Candidate, error) {
	return uc.Elections.ListCandidates(ctx)
}

// Results returns the tally view of one candidate. Same record as Candidate;
// the transport layer drops the proposal field.
func (uc ResultsUseCase) Results(ctx context.Context, candidateID int) (entities.Candidate, error) {
	return uc.Candidate(ctx, candidateID)
}

// Standings lists all candidates ordered by vote count descending, candidate
// id ascending on ties.
func (uc ResultsUseCase) Standings(ctx context.Context) ([]entities.Candidate, error) {
	candidates, err := uc.Elections.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].VoteCount == candidates[j].VoteCount {
			return candidates[i].CandidateID < candidates[j].CandidateID
		}
		return candidates[i].VoteCount > candidates[j].VoteCount
	})
	return candidates, nil
}

// Winner returns the winning candidate once the election is closed. Candidates
// are scanned in ascending id order and only a strictly greater count takes
// the lead, so ties resolve to the lowest id. With no candidates registered
// the zero-valued record is returned rather than an error.
func (uc ResultsUseCase) Winner(ctx context.Context) (entities.Candidate, error) {
	election, err := uc.Elections.GetElection(ctx)
	if err != nil {
		return entities.Candidate{}, err
	}
	if !election.Closed() {
		return entities.Candidate{}, domainerrors.ErrElectionNotClosed
	}
	candidates, err := uc.Elections.ListCandidates(ctx)
	if err != nil {
		return entities.Candidate{}, err
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CandidateID < candidates[j].CandidateID
	})
	var winner entities.Candidate
	best := -1
	for _, candidate := range candidates {
		if candidate.VoteCount > best {
			winner = candidate
			best = candidate.VoteCount
		}
	}
	return winner, nil
}

// VoterDetails returns the voter record for an identity. Unregistered
// identities return the zero-valued record; registration status is part of
// the answer, not an error.
func (uc ResultsUseCase) VoterDetails(ctx context.Context, voterID string) (entities.Voter, error) {
	voterID = strings.TrimSpace(voterID)
	voter, found, err := uc.Elections.GetVoter(ctx, voterID)
	if err != nil {
		return entities.Voter{}, err
	}
	if !found {
		return entities.Voter{VoterID: voterID}, nil
	}
	return voter, nil
}

// Turnout aggregates ballot activity across the roll.
func (uc ResultsUseCase) Turnout(ctx context.Context) (entities.Turnout, error) {
	voters, err := uc.Elections.ListVoters(ctx)
	if err != nil {
		return entities.Turnout{}, err
	}
	candidates, err := uc.Elections.ListCandidates(ctx)
	if err != nil {
		return entities.Turnout{}, err
	}
	turnout := entities.Turnout{RegisteredVoters: len(voters)}
	for _, voter := range voters {
		if !voter.HasVoted {
			continue
		}
		turnout.BallotsCast++
		if voter.DelegateTo != "" {
			turnout.Delegations++
		} else {
			turnout.DirectVotes++
		}
	}
	for _, candidate := range candidates {
		turnout.CountedBallots += candidate.VoteCount
	}
	if turnout.RegisteredVoters > 0 {
		turnout.TurnoutPercent = 100 * float64(turnout.BallotsCast) / float64(turnout.RegisteredVoters)
	}
	return turnout, nil
}
