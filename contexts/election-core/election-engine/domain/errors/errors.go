package errors

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid election input")
	ErrNotAdministrator       = errors.New("caller is not the administrator")
	ErrVoterNotRegistered     = errors.New("voter is not registered")
	ErrRegistrationClosed     = errors.New("registration is only allowed during setup")
	ErrElectionAlreadyStarted = errors.New("election has already started")
	ErrVotingNotStarted       = errors.New("voting has not started")
	ErrVotingEnded            = errors.New("voting has ended")
	ErrElectionNotClosed      = errors.New("election is not closed")
	ErrVoterAlreadyRegistered = errors.New("voter is already registered")
	ErrAlreadyVoted           = errors.New("voter has already cast their ballot")
	ErrInvalidCandidate       = errors.New("candidate id is not valid")
	ErrDelegateNotRegistered  = errors.New("delegate is not registered")
	ErrSelfDelegation         = errors.New("self delegation is forbidden")
	ErrDelegationLoop         = errors.New("delegation would form a loop")
	ErrConflict               = errors.New("election state conflict")
)
