package queries

import (
	"context"

	"hustings/contexts/election-core/election-engine/domain/entities"
	"hustings/contexts/election-core/election-engine/ports"
)

// OverviewUseCase serves lifecycle-level reads: the election row, the phase
// audit, and the consumed-event audit trail.
type OverviewUseCase struct {
	Elections ports.ElectionRepository
	Audit     ports.AuditLogStore
}

func (uc OverviewUseCase) Election(ctx context.Context) (entities.Election, error) {
	return uc.Elections.GetElection(ctx)
}

func (uc OverviewUseCase) PhaseHistory(ctx context.Context) ([]entities.PhaseTransition, error) {
	return uc.Elections.ListPhaseTransitions(ctx)
}

// AuditTrail lists what the notification consumer has recorded so far. An
// unwired audit store yields an empty trail.
func (uc OverviewUseCase) AuditTrail(ctx context.Context) ([]ports.AuditEntry, error) {
	if uc.Audit == nil {
		return []ports.AuditEntry{}, nil
	}
	return uc.Audit.ListAuditEntries(ctx)
}
