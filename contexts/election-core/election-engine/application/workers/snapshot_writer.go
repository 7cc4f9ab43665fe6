package workers

import (
	"context"
	"log/slog"
	"time"

	application "hustings/contexts/election-core/election-engine/application"
	"hustings/contexts/election-core/election-engine/ports"
)

// SnapshotWriter periodically captures the full election model so a restarted
// process can restore state without replaying anything.
type SnapshotWriter struct {
	Elections ports.ElectionRepository
	Snapshots ports.SnapshotStore
	Clock     ports.Clock
	Logger    *slog.Logger
}

// RunOnce writes one full-model snapshot.
func (w SnapshotWriter) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(w.Logger)
	election, err := w.Elections.GetElection(ctx)
	if err != nil {
		logger.Error("snapshot election read failed",
			"event", "election_snapshot_read_failed",
			"module", "election-core/election-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	candidates, err := w.Elections.ListCandidates(ctx)
	if err != nil {
		return err
	}
	voters, err := w.Elections.ListVoters(ctx)
	if err != nil {
		return err
	}
	transitions, err := w.Elections.ListPhaseTransitions(ctx)
	if err != nil {
		return err
	}

	snapshot := ports.Snapshot{
		TakenAt:     w.now(),
		Election:    election,
		Candidates:  candidates,
		Voters:      voters,
		Transitions: transitions,
	}
	if err := w.Snapshots.WriteSnapshot(ctx, snapshot); err != nil {
		logger.Error("snapshot write failed",
			"event", "election_snapshot_write_failed",
			"module", "election-core/election-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	logger.Info("election snapshot written",
		"event", "election_snapshot_written",
		"module", "election-core/election-engine",
		"layer", "worker",
		"phase", string(election.Phase),
		"candidates", len(candidates),
		"voters", len(voters),
	)
	return nil
}

func (w SnapshotWriter) now() time.Time {
	now := time.Now().UTC()
	if w.Clock != nil {
		now = w.Clock.Now().UTC()
	}
	return now
}
