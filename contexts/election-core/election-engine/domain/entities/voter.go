package entities

import "time"

// Voter tracks one identity on the voter roll. VoterID is opaque; the engine
// never derives meaning from it beyond equality.
type Voter struct {
	VoterID    string
	Registered bool
	HasVoted   bool
	// VoteTarget is the candidate id the ballot names, 0 while none does.
	VoteTarget int
	// DelegateTo is the voter this ballot was handed to, "" for direct votes.
	DelegateTo string
	// PendingBallots counts delegated ballots parked on this voter until they
	// cast. Only the chained delegation mode ever sets it.
	PendingBallots int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (v Voter) CanBallot() bool { return v.Registered && !v.HasVoted }
