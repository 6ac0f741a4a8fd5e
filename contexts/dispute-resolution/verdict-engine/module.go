package verdictengine

import (
	"log/slog"
	"time"

	httpadapter "arbiter/contexts/dispute-resolution/verdict-engine/adapters/http"
	"arbiter/contexts/dispute-resolution/verdict-engine/adapters/memory"
	application "arbiter/contexts/dispute-resolution/verdict-engine/application"
	"arbiter/contexts/dispute-resolution/verdict-engine/application/commands"
	"arbiter/contexts/dispute-resolution/verdict-engine/application/queries"
	"arbiter/contexts/dispute-resolution/verdict-engine/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Votes    commands.VoteUseCase
	Finalize commands.FinalizeUseCase
	Weight   application.WeightCalculator
	Store    *memory.Store
}

type Dependencies struct {
	Dilemmas       ports.DilemmaRepository
	Votes          ports.VoteRepository
	Tallies        ports.TallyRepository
	Agents         ports.AgentDirectory
	Thresholds     ports.ThresholdSource
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	weight := application.WeightCalculator{
		Agents: deps.Agents,
		Votes:  deps.Votes,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Dilemmas:       deps.Dilemmas,
		Votes:          deps.Votes,
		Tallies:        deps.Tallies,
		Agents:         deps.Agents,
		Weight:         weight,
		Idempotency:    deps.Idempotency,
		Outbox:         deps.Outbox,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	dilemmaUseCase := commands.DilemmaUseCase{
		Dilemmas:   deps.Dilemmas,
		Thresholds: deps.Thresholds,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	finalizeUseCase := commands.FinalizeUseCase{
		Dilemmas:   deps.Dilemmas,
		Tallies:    deps.Tallies,
		Thresholds: deps.Thresholds,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	queryUseCase := queries.DilemmaQueryUseCase{
		Dilemmas: deps.Dilemmas,
		Tallies:  deps.Tallies,
		Weight:   weight,
	}
	return Module{
		Handler: httpadapter.Handler{
			Dilemmas: dilemmaUseCase,
			Votes:    voteUseCase,
			Finalize: finalizeUseCase,
			Queries:  queryUseCase,
			Logger:   deps.Logger,
		},
		Votes:    voteUseCase,
		Finalize: finalizeUseCase,
		Weight:   weight,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Dilemmas:       store,
		Votes:          store,
		Tallies:        store,
		Agents:         store,
		Thresholds:     store,
		Idempotency:    store,
		Outbox:         store,
		Clock:          store,
		IDGen:          store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
