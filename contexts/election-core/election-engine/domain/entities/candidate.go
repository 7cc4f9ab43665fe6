package entities

import "time"

// Candidate ids are dense: the first registration gets 1 and each later one the
// next integer, so 1..CandidateCount is always the complete valid range and a
// zero id never names a real candidate.
type Candidate struct {
	CandidateID int
	Name        string
	Proposal    string
	VoteCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Turnout aggregates ballot activity across the voter roll.
type Turnout struct {
	RegisteredVoters int
	BallotsCast      int
	DirectVotes      int
	Delegations      int
	CountedBallots   int
	TurnoutPercent   float64
}
