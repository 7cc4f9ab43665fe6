package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AddCandidateRequest struct {
	Name     string `json:"name"`
	Proposal string `json:"proposal,omitempty"`
}

type CandidateResponse struct {
	CandidateID int    `json:"candidate_id"`
	Name        string `json:"name"`
	Proposal    string `json:"proposal,omitempty"`
	VoteCount   int    `json:"vote_count"`
}

type CandidateListResponse struct {
	Items []CandidateResponse `json:"items"`
}

type AddVoterRequest struct {
	VoterID string `json:"voter_id"`
}

type VoterResponse struct {
	VoterID        string `json:"voter_id"`
	Registered     bool   `json:"registered"`
	HasVoted       bool   `json:"has_voted"`
	VoteTarget     int    `json:"vote_target"`
	DelegateTo     string `json:"delegate_to,omitempty"`
	PendingBallots int    `json:"pending_ballots"`
}

type ElectionResponse struct {
	Administrator  string     `json:"administrator"`
	Phase          string     `json:"phase"`
	CandidateCount int        `json:"candidate_count"`
	VoterCount     int        `json:"voter_count"`
	DelegationMode string     `json:"delegation_mode"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

type CastVoteRequest struct {
	CandidateID int `json:"candidate_id"`
}

type CastVoteResponse struct {
	VoterID     string `json:"voter_id"`
	CandidateID int    `json:"candidate_id"`
	Name        string `json:"candidate_name"`
	VoteCount   int    `json:"vote_count"`
}

type DelegateRequest struct {
	DelegateTo string `json:"delegate_to"`
}

type DelegateResponse struct {
	VoterID     string `json:"voter_id"`
	DelegateTo  string `json:"delegate_to"`
	CountedNow  bool   `json:"counted_now"`
	CandidateID int    `json:"candidate_id,omitempty"`
}

type ResultItem struct {
	CandidateID int    `json:"candidate_id"`
	Name        string `json:"name"`
	VoteCount   int    `json:"vote_count"`
}

type ResultsResponse struct {
	Items []ResultItem `json:"items"`
}

type WinnerResponse struct {
	CandidateID int    `json:"candidate_id"`
	Name        string `json:"name"`
	VoteCount   int    `json:"vote_count"`
}

type TurnoutResponse struct {
	RegisteredVoters int     `json:"registered_voters"`
	BallotsCast      int     `json:"ballots_cast"`
	DirectVotes      int     `json:"direct_votes"`
	Delegations      int     `json:"delegations"`
	CountedBallots   int     `json:"counted_ballots"`
	TurnoutPercent   float64 `json:"turnout_percent"`
}

type PhaseTransitionItem struct {
	TransitionID string    `json:"transition_id"`
	FromPhase    string    `json:"from_phase"`
	ToPhase      string    `json:"to_phase"`
	ChangedBy    string    `json:"changed_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type PhaseHistoryResponse struct {
	Items []PhaseTransitionItem `json:"items"`
}

type AuditEntryItem struct {
	EntryID    string    `json:"entry_id"`
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Summary    string    `json:"summary"`
	OccurredAt time.Time `json:"occurred_at"`
	RecordedAt time.Time `json:"recorded_at"`
}

type AuditTrailResponse struct {
	Items []AuditEntryItem `json:"items"`
}
