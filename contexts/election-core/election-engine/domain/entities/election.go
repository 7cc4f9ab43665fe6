package entities

import "time"

type Phase string

const (
	PhaseSetup  Phase = "setup"
	PhaseVoting Phase = "voting"
	PhaseClosed Phase = "closed"
)

type DelegationMode string

const (
	// DelegationSingleHop hands the ballot one hop to the delegate and parks it
	// on unvoted delegates without further resolution.
	DelegationSingleHop DelegationMode = "single_hop"
	// DelegationChained walks delegation links to the terminal voter and keeps
	// the ballot pending until that voter casts.
	DelegationChained DelegationMode = "chained"
)

// Election is the singleton aggregate root. One administrator, one candidate
// roster, one voter roll, one pass through the phase sequence.
type Election struct {
	Administrator  string
	Phase          Phase
	CandidateCount int
	VoterCount     int
	DelegationMode DelegationMode
	StartedAt      *time.Time
	EndedAt        *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (e Election) CanRegister() bool { return e.Phase == PhaseSetup }

func (e Election) VotingOpen() bool { return e.Phase == PhaseVoting }

func (e Election) Closed() bool { return e.Phase == PhaseClosed }

// ValidCandidate reports whether id is inside the dense 1..CandidateCount range.
func (e Election) ValidCandidate(id int) bool {
	return id >= 1 && id <= e.CandidateCount
}

// PhaseTransition is one audit row per lifecycle change.
type PhaseTransition struct {
	TransitionID string
	FromPhase    Phase
	ToPhase      Phase
	ChangedBy    string
	CreatedAt    time.Time
}
