package httpadapter

import (
	"context"
	"log/slog"

	application "hustings/contexts/election-core/election-engine/application"
	"hustings/contexts/election-core/election-engine/application/commands"
	"hustings/contexts/election-core/election-engine/application/queries"
	"hustings/contexts/election-core/election-engine/domain/entities"
	httptransport "hustings/contexts/election-core/election-engine/transport/http"
)

type Handler struct {
	Registry  commands.RegistryUseCase
	Lifecycle commands.LifecycleUseCase
	Ballots   commands.BallotUseCase
	Results   queries.ResultsUseCase
	Overview  queries.OverviewUseCase
	Logger    *slog.Logger
}

// AddCandidateHandler godoc
// @Summary Register a candidate
// @Description Adds a candidate during setup and assigns the next candidate id. Administrator only.
// @Tags election-engine
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string false "Caller identity when no bearer token is presented"
// @Param request body httptransport.AddCandidateRequest true "Candidate name and proposal"
// @Success 200 {object} httptransport.CandidateResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/election/candidates [post]
func (h Handler) AddCandidateHandler(
	ctx context.Context,
	actorID string,
	req httptransport.AddCandidateRequest,
) (httptransport.CandidateResponse, error) {
	candidate, err := h.Registry.AddCandidate(ctx, commands.AddCandidateCommand{
		ActorID:  actorID,
		Name:     req.Name,
		Proposal: req.Proposal,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(candidate), nil
}

// AddVoterHandler godoc
// @Summary Register a voter
// @Description Puts an identity on the voter roll during setup. Administrator only.
// @Tags election-engine
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string false "Caller identity when no bearer token is presented"
// @Param request body httptransport.AddVoterRequest true "Voter identity"
// @Success 200 {object} httptransport.VoterResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/election/voters [post]
func (h Handler) AddVoterHandler(
	ctx context.Context,
	actorID string,
	req httptransport.AddVoterRequest,
) (httptransport.VoterResponse, error) {
	voter, err := h.Registry.AddVoter(ctx, commands.AddVoterCommand{
		ActorID: actorID,
		VoterID: req.VoterID,
	})
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	return mapVoter(voter), nil
}

// StartElectionHandler godoc
// @Summary Open voting
// @Description Moves the election from setup to voting. Administrator only.
// @Tags election-engine
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string false "Caller identity when no bearer token is presented"
// @Success 200 {object} httptransport.ElectionResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/election/start [post]
func (h Handler) StartElectionHandler(ctx context.Context, actorID string) (httptransport.ElectionResponse, error) {
	election, err := h.Lifecycle.StartElection(ctx, commands.StartElectionCommand{ActorID: actorID})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

// EndElectionHandler godoc
// @Summary Close voting
// @Description Moves the election from voting to closed. Administrator only.
// @Tags election-engine
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string false "Caller identity when no bearer token is presented"
// @Success 200 {object} httptransport.ElectionResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/election/end [post]
func (h Handler) EndElectionHandler(ctx context.Context, actorID string) (httptransport.ElectionResponse, error) {
	election, err := h.Lifecycle.EndElection(ctx, commands.EndElectionCommand{ActorID: actorID})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

// CastVoteHandler godoc
// @Summary Cast a ballot
// @Description Casts the caller's ballot for a candidate while voting is open. One ballot per voter.
// @Tags election-engine
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string false "Caller identity when no bearer token is presented"
// @Param request body httptransport.CastVoteRequest true "Candidate id"
// @Success 200 {object} httptransport.CastVoteResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/election/votes [post]
func (h Handler) CastVoteHandler(
	ctx context.Context,
	voterID string,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("cast vote request received",
		"event", "http_cast_vote_received",
		"module", "election-core/election-engine",
		"layer", "transport",
	)

	result, err := h.Ballots.CastVote(ctx, commands.CastVoteCommand{
		VoterID:     voterID,
		CandidateID: req.CandidateID,
	})
	if err != nil {
		logger.Error("cast vote request failed",
			"event", "http_cast_vote_failed",
			"module", "election-core/election-engine",
			"layer", "transport",
			"error", err.Error(),
		)
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		VoterID:     result.Voter.VoterID,
		CandidateID: result.Candidate.CandidateID,
		Name:        result.Candidate.Name,
		VoteCount:   result.Candidate.VoteCount,
	}, nil
}

// DelegateHandler godoc
// @Summary Delegate a ballot
// @Description Hands the caller's ballot to another registered voter while voting is open.
// @Tags election-engine
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-User-Id header string false "Caller identity when no bearer token is presented"
// @Param request body httptransport.DelegateRequest true "Delegate identity"
// @Success 200 {object} httptransport.DelegateResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/election/delegations [post]
func (h Handler) DelegateHandler(
	ctx context.Context,
	voterID string,
	req httptransport.DelegateRequest,
) (httptransport.DelegateResponse, error) {
	result, err := h.Ballots.Delegate(ctx, commands.DelegateCommand{
		VoterID:    voterID,
		DelegateTo: req.DelegateTo,
	})
	if err != nil {
		return httptransport.DelegateResponse{}, err
	}
	return httptransport.DelegateResponse{
		VoterID:     result.Voter.VoterID,
		DelegateTo:  result.Voter.DelegateTo,
		CountedNow:  result.CountedNow,
		CandidateID: result.CandidateID,
	}, nil
}

// ElectionHandler godoc
// @Summary Election overview
// @Description Returns the election phase, counters, and lifecycle timestamps.
// @Tags election-engine
// @Produce json
// @Success 200 {object} httptransport.ElectionResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/election [get]
func (h Handler) ElectionHandler(ctx context.Context) (httptransport.ElectionResponse, error) {
	election, err := h.Overview.Election(ctx)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

// CandidateHandler godoc
// @Summary Get candidate details
// @Description Returns one candidate by dense id, including the proposal.
// @Tags election-engine
// @Produce json
// @Param candidate_id path int true "Candidate id"
// @Success 200 {object} httptransport.CandidateResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/election/candidates/{candidate_id} [get]
func (h Handler) CandidateHandler(ctx context.Context, candidateID int) (httptransport.CandidateResponse, error) {
	candidate, err := h.Results.Candidate(ctx, candidateID)
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(candidate), nil
}

// CandidateListHandler godoc
// @Summary List candidates
// @Description Returns the roster in candidate id order.
// @Tags election-engine
// @Produce json
// @Success 200 {object} httptransport.CandidateListResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/election/candidates [get]
func (h Handler) CandidateListHandler(ctx context.Context) (httptransport.CandidateListResponse, error) {
	candidates, err := h.Results.Candidates(ctx)
	if err != nil {
		return httptransport.CandidateListResponse{}, err
	}
	items := make([]httptransport.CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, mapCandidate(candidate))
	}
	return httptransport.CandidateListResponse{Items: items}, nil
}

// CandidateResultHandler godoc
// @Summary Get one candidate's tally
// @Description Returns the id, name, and vote count of one candidate.
// @Tags election-engine
// @Produce json
// @Param candidate_id path int true "Candidate id"
// @Success 200 {object} httptransport.ResultItem
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/election/results/{candidate_id} [get]
func (h Handler) CandidateResultHandler(ctx context.Context, candidateID int) (httptransport.ResultItem, error) {
	candidate, err := h.Results.Results(ctx, candidateID)
	if err != nil {
		return httptransport.ResultItem{}, err
	}
	return mapResult(candidate), nil
}

// StandingsHandler godoc
// @Summary Current standings
// @Description Returns all candidates ordered by vote count descending, id ascending on ties.
// @Tags election-engine
// @Produce json
// @Success 200 {object} httptransport.ResultsResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/election/results [get]
func (h Handler) StandingsHandler(ctx context.Context) (httptransport.ResultsResponse, error) {
	standings, err := h.Results.Standings(ctx)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	items := make([]httptransport.ResultItem, 0, len(standings))
	for _, candidate := range standings {
		items = append(items, mapResult(candidate))
	}
	return httptransport.ResultsResponse{Items: items}, nil
}

// WinnerHandler godoc
// @Summary Election winner
// @Description Returns the winner once the election is closed. Ties resolve to the lowest candidate id.
// @Tags election-engine
// @Produce json
// @Success 200 {object} httptransport.WinnerResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/election/winner [get]
func (h Handler) WinnerHandler(ctx context.Context) (httptransport.WinnerResponse, error) {
	winner, err := h.Results.Winner(ctx)
	if err != nil {
		return httptransport.WinnerResponse{}, err
	}
	return httptransport.WinnerResponse{
		CandidateID: winner.CandidateID,
		Name:        winner.Name,
		VoteCount:   winner.VoteCount,
	}, nil
}

// VoterDetailsHandler godoc
// @Summary Get voter details
// @Description Returns the voter record for an identity. Unknown identities return a zero-valued record.
// @Tags election-engine
// @Produce json
// @Param voter_id path string true "Voter identity"
// @Success 200 {object} httptransport.VoterResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/election/voters/{voter_id} [get]
func (h Handler) VoterDetailsHandler(ctx context.Context, voterID string) (httptransport.VoterResponse, error) {
	voter, err := h.Results.VoterDetails(ctx, voterID)
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	return mapVoter(voter), nil
}

// TurnoutHandler godoc
// @Summary Turnout summary
// @Description Aggregates ballots cast, direct votes, delegations, and counted ballots across the roll.
// @Tags election-engine
// @Produce json
// @Success 200 {object} httptransport.TurnoutResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/election/turnout [get]
func (h Handler) TurnoutHandler(ctx context.Context) (httptransport.TurnoutResponse, error) {
	turnout, err := h.Results.Turnout(ctx)
	if err != nil {
		return httptransport.TurnoutResponse{}, err
	}
	return httptransport.TurnoutResponse{
		RegisteredVoters: turnout.RegisteredVoters,
		BallotsCast:      turnout.BallotsCast,
		DirectVotes:      turnout.DirectVotes,
		Delegations:      turnout.Delegations,
		CountedBallots:   turnout.CountedBallots,
		TurnoutPercent:   turnout.TurnoutPercent,
	}, nil
}

// PhaseHistoryHandler godoc
// @Summary Phase transition history
// @Description Lists accepted phase transitions in order.
// @Tags election-engine
// @Produce json
// @Success 200 {object} httptransport.PhaseHistoryResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/election/history [get]
func (h Handler) PhaseHistoryHandler(ctx context.Context) (httptransport.PhaseHistoryResponse, error) {
	transitions, err := h.Overview.PhaseHistory(ctx)
	if err != nil {
		return httptransport.PhaseHistoryResponse{}, err
	}
	items := make([]httptransport.PhaseTransitionItem, 0, len(transitions))
	for _, transition := range transitions {
		items = append(items, httptransport.PhaseTransitionItem{
			TransitionID: transition.TransitionID,
			FromPhase:    string(transition.FromPhase),
			ToPhase:      string(transition.ToPhase),
			ChangedBy:    transition.ChangedBy,
			CreatedAt:    transition.CreatedAt,
		})
	}
	return httptransport.PhaseHistoryResponse{Items: items}, nil
}

// AuditTrailHandler godoc
// @Summary Notification audit trail
// @Description Lists election events recorded by the audit consumer, in consumption order.
// @Tags election-engine
// @Produce json
// @Success 200 {object} httptransport.AuditTrailResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/election/audit [get]
func (h Handler) AuditTrailHandler(ctx context.Context) (httptransport.AuditTrailResponse, error) {
	entries, err := h.Overview.AuditTrail(ctx)
	if err != nil {
		return httptransport.AuditTrailResponse{}, err
	}
	items := make([]httptransport.AuditEntryItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, httptransport.AuditEntryItem{
			EntryID:    entry.EntryID,
			EventID:    entry.EventID,
			EventType:  entry.EventType,
			Summary:    entry.Summary,
			OccurredAt: entry.OccurredAt,
			RecordedAt: entry.RecordedAt,
		})
	}
	return httptransport.AuditTrailResponse{Items: items}, nil
}

func mapCandidate(candidate entities.Candidate) httptransport.CandidateResponse {
	return httptransport.CandidateResponse{
		CandidateID: candidate.CandidateID,
		Name:        candidate.Name,
		Proposal:    candidate.Proposal,
		VoteCount:   candidate.VoteCount,
	}
}

func mapResult(candidate entities.Candidate) httptransport.ResultItem {
	return httptransport.ResultItem{
		CandidateID: candidate.CandidateID,
		Name:        candidate.Name,
		VoteCount:   candidate.VoteCount,
	}
}

func mapVoter(voter entities.Voter) httptransport.VoterResponse {
	return httptransport.VoterResponse{
		VoterID:        voter.VoterID,
		Registered:     voter.Registered,
		HasVoted:       voter.HasVoted,
		VoteTarget:     voter.VoteTarget,
		DelegateTo:     voter.DelegateTo,
		PendingBallots: voter.PendingBallots,
	}
}

func mapElection(election entities.Election) httptransport.ElectionResponse {
	return httptransport.ElectionResponse{
		Administrator:  election.Administrator,
		Phase:          string(election.Phase),
		CandidateCount: election.CandidateCount,
		VoterCount:     election.VoterCount,
		DelegationMode: string(election.DelegationMode),
		StartedAt:      election.StartedAt,
		EndedAt:        election.EndedAt,
	}
}
