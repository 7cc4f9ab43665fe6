package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"hustings/contexts/election-core/election-engine/domain/entities"
	domainerrors "hustings/contexts/election-core/election-engine/domain/errors"
	"hustings/contexts/election-core/election-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message ports.OutboxMessage
	seq     int64
	sent    bool
}

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

// Store is the in-memory implementation of every engine port. A single
// RWMutex keeps reads snapshot-consistent with the command gate's writes.
type Store struct {
	mu sync.RWMutex

	election    entities.Election
	initialized bool
	candidates  map[int]entities.Candidate
	voters      map[string]entities.Voter
	transitions []entities.PhaseTransition

	outbox    map[string]outboxRecord
	outboxSeq int64

	eventDedup map[string]dedupRecord
	audit      []ports.AuditEntry

	snapshot    ports.Snapshot
	hasSnapshot bool
}

func NewStore() *Store {
	return &Store{
		candidates: make(map[int]entities.Candidate),
		voters:     make(map[string]entities.Voter),
		outbox:     make(map[string]outboxRecord),
		eventDedup: make(map[string]dedupRecord),
	}
}

func (s *Store) InitElection(_ context.Context, election entities.Election) (entities.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return s.election, nil
	}
	if election.Phase == "" {
		election.Phase = entities.PhaseSetup
	}
	if election.DelegationMode == "" {
		election.DelegationMode = entities.DelegationSingleHop
	}
	election.Administrator = strings.TrimSpace(election.Administrator)
	s.election = election
	s.initialized = true
	return s.election, nil
}

func (s *Store) GetElection(_ context.Context) (entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return entities.Election{}, domainerrors.ErrConflict
	}
	return s.election, nil
}

func (s *Store) SaveElection(_ context.Context, election entities.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.election = election
	s.initialized = true
	return nil
}

func (s *Store) GetCandidate(_ context.Context, candidateID int) (entities.Candidate, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[candidateID]
	if !ok {
		return entities.Candidate{}, false, nil
	}
	return candidate, true, nil
}

func (s *Store) ListCandidates(_ context.Context) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Candidate, 0, len(s.candidates))
	for _, candidate := range s.candidates {
		items = append(items, candidate)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CandidateID < items[j].CandidateID
	})
	return items, nil
}

func (s *Store) SaveCandidate(_ context.Context, candidate entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[candidate.CandidateID] = candidate
	return nil
}

func (s *Store) GetVoter(_ context.Context, voterID string) (entities.Voter, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voter, ok := s.voters[strings.TrimSpace(voterID)]
	if !ok {
		return entities.Voter{}, false, nil
	}
	return voter, true, nil
}

func (s *Store) ListVoters(_ context.Context) ([]entities.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Voter, 0, len(s.voters))
	for _, voter := range s.voters {
		items = append(items, voter)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].VoterID < items[j].VoterID
	})
	return items, nil
}

func (s *Store) SaveVoter(_ context.Context, voter entities.Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voters[strings.TrimSpace(voter.VoterID)] = voter
	return nil
}

func (s *Store) AppendPhaseTransition(_ context.Context, transition entities.PhaseTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = append(s.transitions, transition)
	return nil
}

func (s *Store) ListPhaseTransitions(_ context.Context) ([]entities.PhaseTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.PhaseTransition, len(s.transitions))
	copy(items, s.transitions)
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outboxSeq++
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
		seq: s.outboxSeq,
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]outboxRecord, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.sent {
			continue
		}
		rows = append(rows, row)
	}
	// Append sequence, not timestamp: rows written inside the same clock tick
	// must still relay in acceptance order.
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].seq < rows[j].seq
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.message)
	}
	return items, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.sent = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) ReserveEvent(
	_ context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(eventID)
	existing, ok := s.eventDedup[key]
	if ok {
		if !existing.expiresAt.IsZero() && time.Now().UTC().After(existing.expiresAt.UTC()) {
			delete(s.eventDedup, key)
		} else {
			if existing.payloadHash != strings.TrimSpace(payloadHash) {
				return false, domainerrors.ErrConflict
			}
			return true, nil
		}
	}

	s.eventDedup[key] = dedupRecord{
		payloadHash: strings.TrimSpace(payloadHash),
		expiresAt:   expiresAt.UTC(),
	}
	return false, nil
}

func (s *Store) AppendAuditEntry(_ context.Context, entry ports.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, entry)
	return nil
}

func (s *Store) ListAuditEntries(_ context.Context) ([]ports.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.AuditEntry, len(s.audit))
	copy(items, s.audit)
	return items, nil
}

func (s *Store) WriteSnapshot(_ context.Context, snapshot ports.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	s.hasSnapshot = true
	return nil
}

func (s *Store) ReadSnapshot(_ context.Context) (ports.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasSnapshot {
		return ports.Snapshot{}, false, nil
	}
	return s.snapshot, true, nil
}

// RestoreSnapshot replaces the whole model with a previously captured one.
// Bootstrap uses it to recover state on process start.
func (s *Store) RestoreSnapshot(snapshot ports.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.election = snapshot.Election
	s.initialized = true
	s.candidates = make(map[int]entities.Candidate, len(snapshot.Candidates))
	for _, candidate := range snapshot.Candidates {
		s.candidates[candidate.CandidateID] = candidate
	}
	s.voters = make(map[string]entities.Voter, len(snapshot.Voters))
	for _, voter := range snapshot.Voters {
		s.voters[voter.VoterID] = voter
	}
	s.transitions = make([]entities.PhaseTransition, len(snapshot.Transitions))
	copy(s.transitions, snapshot.Transitions)
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
