package sqliteadapter

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hustings/contexts/election-core/election-engine/domain/entities"
	domainerrors "hustings/contexts/election-core/election-engine/domain/errors"
	"hustings/contexts/election-core/election-engine/ports"

	"github.com/google/uuid"
)

// The election is a singleton, so its row id is fixed.
const electionRowID = 1

// CreateSchema creates all engine tables. Safe to call multiple times.
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create election schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS election (
    id INTEGER PRIMARY KEY,
    administrator TEXT NOT NULL,
    phase TEXT NOT NULL DEFAULT 'setup' CHECK (phase IN ('setup', 'voting', 'closed')),
    candidate_count INTEGER NOT NULL DEFAULT 0,
    voter_count INTEGER NOT NULL DEFAULT 0,
    delegation_mode TEXT NOT NULL DEFAULT 'single_hop',
    started_at TIMESTAMP,
    ended_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS candidates (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    proposal TEXT,
    vote_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS voters (
    voter_id TEXT PRIMARY KEY,
    registered INTEGER NOT NULL DEFAULT 0,
    has_voted INTEGER NOT NULL DEFAULT 0,
    vote_target INTEGER NOT NULL DEFAULT 0,
    delegate_to TEXT NOT NULL DEFAULT '',
    pending_ballots INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS phase_transitions (
    id TEXT PRIMARY KEY,
    from_phase TEXT NOT NULL,
    to_phase TEXT NOT NULL,
    changed_by TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS election_outbox (
    outbox_id TEXT PRIMARY KEY,
    event_type TEXT NOT NULL,
    partition_key TEXT,
    payload BLOB NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'sent')),
    created_at TIMESTAMP NOT NULL,
    sent_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_election_outbox_status ON election_outbox(status);

CREATE TABLE IF NOT EXISTS election_event_dedup (
    event_id TEXT PRIMARY KEY,
    payload_hash TEXT NOT NULL,
    expires_at TIMESTAMP NOT NULL,
    processed_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS election_audit_trail (
    entry_id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    event_type TEXT NOT NULL,
    summary TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL,
    recorded_at TIMESTAMP NOT NULL
);
`

// Repository is the single-file deployment flavor of the election store,
// backed by the pure-Go sqlite driver. Append-order reads lean on sqlite's
// implicit rowid.
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) InitElection(ctx context.Context, election entities.Election) (entities.Election, error) {
	if election.Phase == "" {
		election.Phase = entities.PhaseSetup
	}
	if election.DelegationMode == "" {
		election.DelegationMode = entities.DelegationSingleHop
	}
	now := time.Now().UTC()
	createdAt := election.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := election.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO election (id, administrator, phase, candidate_count, voter_count, delegation_mode, started_at, ended_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, electionRowID, strings.TrimSpace(election.Administrator), string(election.Phase),
		election.CandidateCount, election.VoterCount, string(election.DelegationMode),
		election.StartedAt, election.EndedAt, createdAt, updatedAt)
	if err != nil {
		return entities.Election{}, r.logError("election_repo_init_failed", err)
	}
	return r.GetElection(ctx)
}

func (r *Repository) GetElection(ctx context.Context) (entities.Election, error) {
	var (
		election       entities.Election
		phase          string
		delegationMode string
		startedAt      sql.NullTime
		endedAt        sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT administrator, phase, candidate_count, voter_count, delegation_mode, started_at, ended_at, created_at, updated_at
		FROM election
		WHERE id = ?
	`, electionRowID).Scan(
		&election.Administrator, &phase, &election.CandidateCount, &election.VoterCount,
		&delegationMode, &startedAt, &endedAt, &election.CreatedAt, &election.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Election{}, domainerrors.ErrConflict
	}
	if err != nil {
		return entities.Election{}, r.logError("election_repo_get_election_failed", err)
	}
	election.Phase = entities.Phase(phase)
	election.DelegationMode = entities.DelegationMode(delegationMode)
	election.StartedAt = nullableTime(startedAt)
	election.EndedAt = nullableTime(endedAt)
	return election, nil
}

func (r *Repository) SaveElection(ctx context.Context, election entities.Election) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO election (id, administrator, phase, candidate_count, voter_count, delegation_mode, started_at, ended_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			administrator = excluded.administrator,
			phase = excluded.phase,
			candidate_count = excluded.candidate_count,
			voter_count = excluded.voter_count,
			delegation_mode = excluded.delegation_mode,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			updated_at = excluded.updated_at
	`, electionRowID, strings.TrimSpace(election.Administrator), string(election.Phase),
		election.CandidateCount, election.VoterCount, string(election.DelegationMode),
		election.StartedAt, election.EndedAt, election.CreatedAt.UTC(), election.UpdatedAt.UTC())
	if err != nil {
		return r.logError("election_repo_save_election_failed", err, "phase", string(election.Phase))
	}
	return nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID int) (entities.Candidate, bool, error) {
	var candidate entities.Candidate
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, proposal, vote_count, created_at, updated_at
		FROM candidates
		WHERE id = ?
	`, candidateID).Scan(
		&candidate.CandidateID, &candidate.Name, &candidate.Proposal,
		&candidate.VoteCount, &candidate.CreatedAt, &candidate.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Candidate{}, false, nil
	}
	if err != nil {
		return entities.Candidate{}, false, r.logError("election_repo_get_candidate_failed", err,
			"candidate_id", candidateID,
		)
	}
	return candidate, true, nil
}

func (r *Repository) ListCandidates(ctx context.Context) ([]entities.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, proposal, vote_count, created_at, updated_at
		FROM candidates
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, r.logError("election_repo_list_candidates_failed", err)
	}
	defer rows.Close()

	items := make([]entities.Candidate, 0)
	for rows.Next() {
		var candidate entities.Candidate
		if err := rows.Scan(
			&candidate.CandidateID, &candidate.Name, &candidate.Proposal,
			&candidate.VoteCount, &candidate.CreatedAt, &candidate.UpdatedAt,
		); err != nil {
			return nil, r.logError("election_repo_scan_candidate_failed", err)
		}
		items = append(items, candidate)
	}
	return items, rows.Err()
}

func (r *Repository) SaveCandidate(ctx context.Context, candidate entities.Candidate) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO candidates (id, name, proposal, vote_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			proposal = excluded.proposal,
			vote_count = excluded.vote_count,
			updated_at = excluded.updated_at
	`, candidate.CandidateID, strings.TrimSpace(candidate.Name), strings.TrimSpace(candidate.Proposal),
		candidate.VoteCount, candidate.CreatedAt.UTC(), candidate.UpdatedAt.UTC())
	if err != nil {
		return r.logError("election_repo_save_candidate_failed", err,
			"candidate_id", candidate.CandidateID,
		)
	}
	return nil
}

func (r *Repository) GetVoter(ctx context.Context, voterID string) (entities.Voter, bool, error) {
	var voter entities.Voter
	err := r.db.QueryRowContext(ctx, `
		SELECT voter_id, registered, has_voted, vote_target, delegate_to, pending_ballots, created_at, updated_at
		FROM voters
		WHERE voter_id = ?
	`, strings.TrimSpace(voterID)).Scan(
		&voter.VoterID, &voter.Registered, &voter.HasVoted, &voter.VoteTarget,
		&voter.DelegateTo, &voter.PendingBallots, &voter.CreatedAt, &voter.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Voter{}, false, nil
	}
	if err != nil {
		return entities.Voter{}, false, r.logError("election_repo_get_voter_failed", err,
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return voter, true, nil
}

func (r *Repository) ListVoters(ctx context.Context) ([]entities.Voter, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT voter_id, registered, has_voted, vote_target, delegate_to, pending_ballots, created_at, updated_at
		FROM voters
		ORDER BY voter_id ASC
	`)
	if err != nil {
		return nil, r.logError("election_repo_list_voters_failed", err)
	}
	defer rows.Close()

	items := make([]entities.Voter, 0)
	for rows.Next() {
		var voter entities.Voter
		if err := rows.Scan(
			&voter.VoterID, &voter.Registered, &voter.HasVoted, &voter.VoteTarget,
			&voter.DelegateTo, &voter.PendingBallots, &voter.CreatedAt, &voter.UpdatedAt,
		); err != nil {
			return nil, r.logError("election_repo_scan_voter_failed", err)
		}
		items = append(items, voter)
	}
	return items, rows.Err()
}

func (r *Repository) SaveVoter(ctx context.Context, voter entities.Voter) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO voters (voter_id, registered, has_voted, vote_target, delegate_to, pending_ballots, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(voter_id) DO UPDATE SET
			registered = excluded.registered,
			has_voted = excluded.has_voted,
			vote_target = excluded.vote_target,
			delegate_to = excluded.delegate_to,
			pending_ballots = excluded.pending_ballots,
			updated_at = excluded.updated_at
	`, strings.TrimSpace(voter.VoterID), voter.Registered, voter.HasVoted, voter.VoteTarget,
		strings.TrimSpace(voter.DelegateTo), voter.PendingBallots, voter.CreatedAt.UTC(), voter.UpdatedAt.UTC())
	if err != nil {
		return r.logError("election_repo_save_voter_failed", err,
			"voter_id", strings.TrimSpace(voter.VoterID),
		)
	}
	return nil
}

func (r *Repository) AppendPhaseTransition(ctx context.Context, transition entities.PhaseTransition) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO phase_transitions (id, from_phase, to_phase, changed_by, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, strings.TrimSpace(transition.TransitionID), string(transition.FromPhase), string(transition.ToPhase),
		strings.TrimSpace(transition.ChangedBy), transition.CreatedAt.UTC())
	if err != nil {
		return r.logError("election_repo_append_transition_failed", err,
			"transition_id", strings.TrimSpace(transition.TransitionID),
		)
	}
	return nil
}

func (r *Repository) ListPhaseTransitions(ctx context.Context) ([]entities.PhaseTransition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, from_phase, to_phase, changed_by, created_at
		FROM phase_transitions
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, r.logError("election_repo_list_transitions_failed", err)
	}
	defer rows.Close()

	items := make([]entities.PhaseTransition, 0)
	for rows.Next() {
		var (
			transition entities.PhaseTransition
			from, to   string
		)
		if err := rows.Scan(&transition.TransitionID, &from, &to, &transition.ChangedBy, &transition.CreatedAt); err != nil {
			return nil, r.logError("election_repo_scan_transition_failed", err)
		}
		transition.FromPhase = entities.Phase(from)
		transition.ToPhase = entities.Phase(to)
		items = append(items, transition)
	}
	return items, rows.Err()
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("election_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO election_outbox (outbox_id, event_type, partition_key, payload, status, created_at)
		VALUES (?, ?, ?, ?, 'pending', ?)
		ON CONFLICT(outbox_id) DO NOTHING
	`, outboxID, strings.TrimSpace(envelope.EventType), strings.TrimSpace(envelope.PartitionKey), payload, createdAt)
	if err != nil {
		return r.logError("election_repo_append_outbox_insert_failed", err, "outbox_id", outboxID)
	}
	if affected, err := result.RowsAffected(); err == nil && affected > 0 {
		return nil
	}

	var existing []byte
	if err := r.db.QueryRowContext(ctx, `
		SELECT payload FROM election_outbox WHERE outbox_id = ?
	`, outboxID).Scan(&existing); err != nil {
		return r.logError("election_repo_append_outbox_load_existing_failed", err, "outbox_id", outboxID)
	}
	if !bytes.Equal(existing, payload) {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT outbox_id, event_type, partition_key, payload, created_at
		FROM election_outbox
		WHERE status = 'pending'
		ORDER BY rowid ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, r.logError("election_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	defer rows.Close()

	items := make([]ports.OutboxMessage, 0)
	for rows.Next() {
		var (
			message      ports.OutboxMessage
			partitionKey sql.NullString
		)
		if err := rows.Scan(&message.OutboxID, &message.EventType, &partitionKey, &message.Payload, &message.CreatedAt); err != nil {
			return nil, r.logError("election_repo_scan_outbox_failed", err)
		}
		message.PartitionKey = partitionKey.String
		items = append(items, message)
	}
	return items, rows.Err()
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE election_outbox SET status = 'sent', sent_at = ? WHERE outbox_id = ?
	`, sentAt.UTC(), strings.TrimSpace(outboxID))
	if err != nil {
		return r.logError("election_repo_mark_outbox_sent_failed", err,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if affected, err := result.RowsAffected(); err != nil || affected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO election_event_dedup (event_id, payload_hash, expires_at, processed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(event_id) DO NOTHING
	`, strings.TrimSpace(eventID), strings.TrimSpace(payloadHash), expiresAt.UTC(), time.Now().UTC())
	if err != nil {
		return false, r.logError("election_repo_reserve_event_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if affected, err := result.RowsAffected(); err == nil && affected > 0 {
		return false, nil
	}

	var existingHash string
	if err := r.db.QueryRowContext(ctx, `
		SELECT payload_hash FROM election_event_dedup WHERE event_id = ?
	`, strings.TrimSpace(eventID)).Scan(&existingHash); err != nil {
		return false, r.logError("election_repo_reserve_event_load_existing_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if existingHash != strings.TrimSpace(payloadHash) {
		return false, domainerrors.ErrConflict
	}
	return true, nil
}

func (r *Repository) AppendAuditEntry(ctx context.Context, entry ports.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO election_audit_trail (entry_id, event_id, event_type, summary, occurred_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(entry.EntryID), strings.TrimSpace(entry.EventID), strings.TrimSpace(entry.EventType),
		entry.Summary, entry.OccurredAt.UTC(), entry.RecordedAt.UTC())
	if err != nil {
		return r.logError("election_repo_append_audit_failed", err,
			"entry_id", strings.TrimSpace(entry.EntryID),
		)
	}
	return nil
}

func (r *Repository) ListAuditEntries(ctx context.Context) ([]ports.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entry_id, event_id, event_type, summary, occurred_at, recorded_at
		FROM election_audit_trail
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, r.logError("election_repo_list_audit_failed", err)
	}
	defer rows.Close()

	items := make([]ports.AuditEntry, 0)
	for rows.Next() {
		var entry ports.AuditEntry
		if err := rows.Scan(
			&entry.EntryID, &entry.EventID, &entry.EventType,
			&entry.Summary, &entry.OccurredAt, &entry.RecordedAt,
		); err != nil {
			return nil, r.logError("election_repo_scan_audit_failed", err)
		}
		items = append(items, entry)
	}
	return items, rows.Err()
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-core/election-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("election repository operation failed", fields...)
	return err
}

func nullableTime(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	timestamp := value.Time.UTC()
	return &timestamp
}

var _ ports.ElectionRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.EventDedupStore = (*Repository)(nil)
var _ ports.AuditLogStore = (*Repository)(nil)
