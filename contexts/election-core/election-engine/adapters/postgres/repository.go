package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"hustings/contexts/election-core/election-engine/domain/entities"
	domainerrors "hustings/contexts/election-core/election-engine/domain/errors"
	"hustings/contexts/election-core/election-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"

	// The election is a singleton, so its row id is fixed.
	electionRowID = 1
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) InitElection(ctx context.Context, election entities.Election) (entities.Election, error) {
	row := electionModelFromEntity(election)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return entities.Election{}, r.logError("election_repo_init_failed", create.Error)
	}
	if create.RowsAffected > 0 {
		return row.toEntity(), nil
	}
	return r.GetElection(ctx)
}

func (r *Repository) GetElection(ctx context.Context) (entities.Election, error) {
	var row electionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", electionRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrConflict
		}
		return entities.Election{}, r.logError("election_repo_get_election_failed", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveElection(ctx context.Context, election entities.Election) error {
	row := electionModelFromEntity(election)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"administrator":   row.Administrator,
			"phase":           row.Phase,
			"candidate_count": row.CandidateCount,
			"voter_count":     row.VoterCount,
			"delegation_mode": row.DelegationMode,
			"started_at":      row.StartedAt,
			"ended_at":        row.EndedAt,
			"updated_at":      row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_save_election_failed", create.Error,
			"phase", row.Phase,
		)
	}
	return nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID int) (entities.Candidate, bool, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", candidateID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, false, nil
		}
		return entities.Candidate{}, false, r.logError("election_repo_get_candidate_failed", err,
			"candidate_id", candidateID,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListCandidates(ctx context.Context) ([]entities.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_candidates_failed", err)
	}
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveCandidate(ctx context.Context, candidate entities.Candidate) error {
	row := candidateModelFromEntity(candidate)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":       row.Name,
			"proposal":   row.Proposal,
			"vote_count": row.VoteCount,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_save_candidate_failed", create.Error,
			"candidate_id", candidate.CandidateID,
		)
	}
	return nil
}

func (r *Repository) GetVoter(ctx context.Context, voterID string) (entities.Voter, bool, error) {
	var row voterModel
	err := r.db.WithContext(ctx).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Voter{}, false, nil
		}
		return entities.Voter{}, false, r.logError("election_repo_get_voter_failed", err,
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListVoters(ctx context.Context) ([]entities.Voter, error) {
	var rows []voterModel
	if err := r.db.WithContext(ctx).
		Order("voter_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_voters_failed", err)
	}
	items := make([]entities.Voter, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveVoter(ctx context.Context, voter entities.Voter) error {
	row := voterModelFromEntity(voter)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "voter_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"registered":      row.Registered,
			"has_voted":       row.HasVoted,
			"vote_target":     row.VoteTarget,
			"delegate_to":     row.DelegateTo,
			"pending_ballots": row.PendingBallots,
			"updated_at":      row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_save_voter_failed", create.Error,
			"voter_id", strings.TrimSpace(voter.VoterID),
		)
	}
	return nil
}

func (r *Repository) AppendPhaseTransition(ctx context.Context, transition entities.PhaseTransition) error {
	row := phaseTransitionModel{
		ID:        strings.TrimSpace(transition.TransitionID),
		FromPhase: string(transition.FromPhase),
		ToPhase:   string(transition.ToPhase),
		ChangedBy: strings.TrimSpace(transition.ChangedBy),
		CreatedAt: transition.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("election_repo_append_transition_failed", err,
			"transition_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) ListPhaseTransitions(ctx context.Context) ([]entities.PhaseTransition, error) {
	var rows []phaseTransitionModel
	if err := r.db.WithContext(ctx).
		Order("seq ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_transitions_failed", err)
	}
	items := make([]entities.PhaseTransition, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.PhaseTransition{
			TransitionID: row.ID,
			FromPhase:    entities.Phase(row.FromPhase),
			ToPhase:      entities.Phase(row.ToPhase),
			ChangedBy:    row.ChangedBy,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("election_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("election_repo_append_outbox_load_existing_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("seq ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": sentAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("election_repo_mark_outbox_sent_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
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
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.logError("election_repo_reserve_event_failed", create.Error,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if create.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Select("payload_hash").
		Where("event_id = ?", row.EventID).
		First(&existing).Error; err != nil {
		return false, r.logError("election_repo_reserve_event_load_existing_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	if existing.PayloadHash != row.PayloadHash {
		return false, domainerrors.ErrConflict
	}
	return true, nil
}

func (r *Repository) AppendAuditEntry(ctx context.Context, entry ports.AuditEntry) error {
	row := auditEntryModel{
		EntryID:    strings.TrimSpace(entry.EntryID),
		EventID:    strings.TrimSpace(entry.EventID),
		EventType:  strings.TrimSpace(entry.EventType),
		Summary:    entry.Summary,
		OccurredAt: entry.OccurredAt.UTC(),
		RecordedAt: entry.RecordedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("election_repo_append_audit_failed", err,
			"entry_id", row.EntryID,
		)
	}
	return nil
}

func (r *Repository) ListAuditEntries(ctx context.Context) ([]ports.AuditEntry, error) {
	var rows []auditEntryModel
	if err := r.db.WithContext(ctx).
		Order("seq ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_audit_failed", err)
	}
	items := make([]ports.AuditEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.AuditEntry{
			EntryID:    row.EntryID,
			EventID:    row.EventID,
			EventType:  row.EventType,
			Summary:    row.Summary,
			OccurredAt: row.OccurredAt.UTC(),
			RecordedAt: row.RecordedAt.UTC(),
		})
	}
	return items, nil
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

type electionModel struct {
	ID             int        `gorm:"column:id;primaryKey"`
	Administrator  string     `gorm:"column:administrator"`
	Phase          string     `gorm:"column:phase"`
	CandidateCount int        `gorm:"column:candidate_count"`
	VoterCount     int        `gorm:"column:voter_count"`
	DelegationMode string     `gorm:"column:delegation_mode"`
	StartedAt      *time.Time `gorm:"column:started_at"`
	EndedAt        *time.Time `gorm:"column:ended_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (electionModel) TableName() string {
	return "election"
}

func electionModelFromEntity(election entities.Election) electionModel {
	row := electionModel{
		ID:             electionRowID,
		Administrator:  strings.TrimSpace(election.Administrator),
		Phase:          string(election.Phase),
		CandidateCount: election.CandidateCount,
		VoterCount:     election.VoterCount,
		DelegationMode: string(election.DelegationMode),
		StartedAt:      normalizeOptionalTime(election.StartedAt),
		EndedAt:        normalizeOptionalTime(election.EndedAt),
		CreatedAt:      election.CreatedAt.UTC(),
		UpdatedAt:      election.UpdatedAt.UTC(),
	}
	if row.Phase == "" {
		row.Phase = string(entities.PhaseSetup)
	}
	if row.DelegationMode == "" {
		row.DelegationMode = string(entities.DelegationSingleHop)
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m electionModel) toEntity() entities.Election {
	return entities.Election{
		Administrator:  m.Administrator,
		Phase:          entities.Phase(m.Phase),
		CandidateCount: m.CandidateCount,
		VoterCount:     m.VoterCount,
		DelegationMode: entities.DelegationMode(m.DelegationMode),
		StartedAt:      normalizeOptionalTime(m.StartedAt),
		EndedAt:        normalizeOptionalTime(m.EndedAt),
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type candidateModel struct {
	ID        int       `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	Proposal  string    `gorm:"column:proposal"`
	VoteCount int       `gorm:"column:vote_count"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	row := candidateModel{
		ID:        candidate.CandidateID,
		Name:      strings.TrimSpace(candidate.Name),
		Proposal:  strings.TrimSpace(candidate.Proposal),
		VoteCount: candidate.VoteCount,
		CreatedAt: candidate.CreatedAt.UTC(),
		UpdatedAt: candidate.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		CandidateID: m.ID,
		Name:        m.Name,
		Proposal:    m.Proposal,
		VoteCount:   m.VoteCount,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type voterModel struct {
	VoterID        string    `gorm:"column:voter_id;primaryKey"`
	Registered     bool      `gorm:"column:registered"`
	HasVoted       bool      `gorm:"column:has_voted"`
	VoteTarget     int       `gorm:"column:vote_target"`
	DelegateTo     string    `gorm:"column:delegate_to"`
	PendingBallots int       `gorm:"column:pending_ballots"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (voterModel) TableName() string {
	return "voters"
}

func voterModelFromEntity(voter entities.Voter) voterModel {
	row := voterModel{
		VoterID:        strings.TrimSpace(voter.VoterID),
		Registered:     voter.Registered,
		HasVoted:       voter.HasVoted,
		VoteTarget:     voter.VoteTarget,
		DelegateTo:     strings.TrimSpace(voter.DelegateTo),
		PendingBallots: voter.PendingBallots,
		CreatedAt:      voter.CreatedAt.UTC(),
		UpdatedAt:      voter.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m voterModel) toEntity() entities.Voter {
	return entities.Voter{
		VoterID:        m.VoterID,
		Registered:     m.Registered,
		HasVoted:       m.HasVoted,
		VoteTarget:     m.VoteTarget,
		DelegateTo:     m.DelegateTo,
		PendingBallots: m.PendingBallots,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type phaseTransitionModel struct {
	Seq       int64     `gorm:"column:seq;autoIncrement"`
	ID        string    `gorm:"column:id;primaryKey"`
	FromPhase string    `gorm:"column:from_phase"`
	ToPhase   string    `gorm:"column:to_phase"`
	ChangedBy string    `gorm:"column:changed_by"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (phaseTransitionModel) TableName() string {
	return "phase_transitions"
}

type outboxModel struct {
	Seq          int64      `gorm:"column:seq;autoIncrement"`
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "election_outbox"
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "election_event_dedup"
}

type auditEntryModel struct {
	Seq        int64     `gorm:"column:seq;autoIncrement"`
	EntryID    string    `gorm:"column:entry_id;primaryKey"`
	EventID    string    `gorm:"column:event_id"`
	EventType  string    `gorm:"column:event_type"`
	Summary    string    `gorm:"column:summary"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
	RecordedAt time.Time `gorm:"column:recorded_at"`
}

func (auditEntryModel) TableName() string {
	return "election_audit_trail"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ElectionRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.EventDedupStore = (*Repository)(nil)
var _ ports.AuditLogStore = (*Repository)(nil)
