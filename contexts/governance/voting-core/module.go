package votingcore

import (
	"log/slog"

	httpadapter "agora/contexts/governance/voting-core/adapters/http"
	"agora/contexts/governance/voting-core/adapters/memory"
	"agora/contexts/governance/voting-core/application/commands"
	"agora/contexts/governance/voting-core/application/queries"
	"agora/contexts/governance/voting-core/application/workers"
	"agora/contexts/governance/voting-core/domain/entities"
	"agora/contexts/governance/voting-core/ports"
)

type Module struct {
	Handler      httpadapter.Handler
	Verification queries.VerificationUseCase
	Sweeper      workers.LifecycleSweeper
	Store        *memory.Store
}

type Dependencies struct {
	Articles  ports.ArticleRepository
	Votes     ports.VoteLedger
	Lifecycle ports.LifecycleRepository
	Hasher    ports.VoterHasher
	Clock     ports.Clock
	IDGen     ports.IDGenerator

	SweepConcurrency int
	SweepBatchSize   int
	Logger           *slog.Logger
}

func NewModule(deps Dependencies) Module {
	articleUseCase := commands.ArticleUseCase{
		Articles: deps.Articles,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Articles:  deps.Articles,
		Votes:     deps.Votes,
		Lifecycle: deps.Lifecycle,
		Hasher:    deps.Hasher,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	lifecycleUseCase := commands.LifecycleUseCase{
		Lifecycle: deps.Lifecycle,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	queryUseCase := queries.ArticleQueryUseCase{
		Articles:  deps.Articles,
		Votes:     deps.Votes,
		Lifecycle: deps.Lifecycle,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Articles:  articleUseCase,
			Votes:     voteUseCase,
			Lifecycle: lifecycleUseCase,
			Queries:   queryUseCase,
			Logger:    deps.Logger,
		},
		Verification: queries.VerificationUseCase{
			Votes: deps.Votes,
		},
		Sweeper: workers.LifecycleSweeper{
			Articles:    deps.Articles,
			Lifecycle:   lifecycleUseCase,
			Concurrency: deps.SweepConcurrency,
			BatchSize:   deps.SweepBatchSize,
			Logger:      deps.Logger,
		},
	}
}

// NewInMemoryModule wires every port to one memory.Store. The store doubles
// as the clock, so tests move time with Store.SetClock.
func NewInMemoryModule(seed []entities.Article, hasher ports.VoterHasher, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Articles:  store,
		Votes:     store,
		Lifecycle: store,
		Hasher:    hasher,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
