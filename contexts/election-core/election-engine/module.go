package electionengine

import (
	"context"
	"log/slog"
	"sync"

	httpadapter "hustings/contexts/election-core/election-engine/adapters/http"
	"hustings/contexts/election-core/election-engine/adapters/memory"
	"hustings/contexts/election-core/election-engine/application/commands"
	"hustings/contexts/election-core/election-engine/application/queries"
	"hustings/contexts/election-core/election-engine/domain/entities"
	"hustings/contexts/election-core/election-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Elections ports.ElectionRepository
	Outbox    ports.OutboxWriter
	Audit     ports.AuditLogStore
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Gate      *sync.Mutex
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	gate := deps.Gate
	if gate == nil {
		// All command use cases must share one gate so operations on the
		// election are mutually exclusive.
		gate = &sync.Mutex{}
	}
	registryUseCase := commands.RegistryUseCase{
		Elections: deps.Elections,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Gate:      gate,
		Logger:    deps.Logger,
	}
	lifecycleUseCase := commands.LifecycleUseCase{
		Elections: deps.Elections,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Gate:      gate,
		Logger:    deps.Logger,
	}
	ballotUseCase := commands.BallotUseCase{
		Elections: deps.Elections,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Gate:      gate,
		Logger:    deps.Logger,
	}
	resultsUseCase := queries.ResultsUseCase{
		Elections: deps.Elections,
	}
	overviewUseCase := queries.OverviewUseCase{
		Elections: deps.Elections,
		Audit:     deps.Audit,
	}
	return Module{
		Handler: httpadapter.Handler{
			Registry:  registryUseCase,
			Lifecycle: lifecycleUseCase,
			Ballots:   ballotUseCase,
			Results:   resultsUseCase,
			Overview:  overviewUseCase,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(administrator string, mode entities.DelegationMode, logger *slog.Logger) Module {
	store := memory.NewStore()
	// The in-memory store never fails InitElection.
	_, _ = store.InitElection(context.Background(), entities.Election{
		Administrator:  administrator,
		DelegationMode: mode,
	})
	module := NewModule(Dependencies{
		Elections: store,
		Outbox:    store,
		Audit:     store,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
