package components

import (
	"log/slog"

	"github.com/library-lending-engine/internal/config"
	"github.com/library-lending-engine/internal/domain/fine"
	"github.com/library-lending-engine/internal/domain/history"
	"github.com/library-lending-engine/internal/domain/item"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/domain/member"
	"github.com/library-lending-engine/internal/domain/outbox"
	"github.com/library-lending-engine/internal/lending_engine/service"
	"github.com/library-lending-engine/internal/platform/persistence"
	"github.com/library-lending-engine/internal/platform/retry"
)

// Repositories are the stores the lending engine runs on
type Repositories struct {
	Items        item.Repository
	Members      member.Repository
	Transactions lending.Repository
	Fines        fine.Repository
	Outbox       outbox.Repository
	History      history.Repository
}

// Engine bundles the lending engine services
type Engine struct {
	Lending *service.LendingServiceImpl
	Fines   *service.FineServiceImpl
	Sweeper *service.SweeperImpl
	Queries *service.QueryService
}

// Shutdown releases the sweeper worker pool
func (e *Engine) Shutdown() {
	e.Sweeper.Shutdown()
}

// RulesFromConfig maps the lending configuration onto the lending rules
func RulesFromConfig(cfg *config.Config) lending.Rules {
	return lending.Rules{
		LoanPeriod:  cfg.Lending.LoanPeriod,
		BorrowLimit: cfg.Lending.BorrowLimit,
		FinePerDay:  cfg.Lending.FinePerDay,
	}
}

// CreateLendingEngine wires the lending engine services with all their dependencies.
func CreateLendingEngine(
	db persistence.TxBeginner,
	repos Repositories,
	logger *slog.Logger,
	cfg *config.Config,
	opts ...service.Option,
) (*Engine, error) {
	rules := RulesFromConfig(cfg)
	opts = append([]service.Option{
		service.WithRetry(retry.WithMaxAttempts(cfg.Lending.ConflictRetryAttempts)),
	}, opts...)

	eligibility := NewEligibilityChecker(repos.Items, repos.Members, repos.Transactions, repos.Fines, rules.BorrowLimit, logger)
	assessor := NewFineAssessor(repos.Fines, repos.Members, rules.FinePerDay, logger)
	suspensionManager := NewSuspensionManager(repos.Members, repos.Transactions, repos.Fines, logger)
	outboxManager := NewOutboxManager(repos.Outbox, logger)

	sweeper, err := service.NewSweeper(
		db,
		repos.Transactions,
		repos.Members,
		suspensionManager,
		outboxManager,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		logger.With("component", "sweeper"),
		opts...,
	)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		Lending: service.NewLendingService(
			db,
			repos.Transactions,
			repos.Items,
			repos.Members,
			eligibility,
			assessor,
			suspensionManager,
			outboxManager,
			rules,
			logger.With("component", "lending"),
			opts...,
		),
		Fines: service.NewFineService(
			db,
			repos.Fines,
			repos.Members,
			assessor,
			suspensionManager,
			outboxManager,
			logger.With("component", "fines"),
			opts...,
		),
		Sweeper: sweeper,
	}
	engine.Queries = service.NewQueryService(repos.Transactions, repos.Fines, repos.Members, repos.History, sweeper, logger)

	logger.Info("Created lending engine",
		"loan_period", rules.LoanPeriod.String(),
		"borrow_limit", rules.BorrowLimit,
		"fine_per_day", rules.FinePerDay.StringFixed(2),
		"sweeper_pool_size", cfg.WorkerPool.Size,
	)
	return engine, nil
}
