// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	router "pnyx/internal/api"
	"pnyx/internal/api/handler"
	"pnyx/internal/cache"
	"pnyx/internal/config"
	"pnyx/internal/metrics"
	"pnyx/internal/repository"
	"pnyx/internal/repository/postgres"
	"pnyx/internal/service"
	"pnyx/internal/util"
	"pnyx/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config  *config.AppConfig
	Logger  *slog.Logger
	DB      *sqlx.DB
	Redis   *redis.Client
	Metrics *metrics.Prometheus

	// Repositories
	UserRepository        repository.UserRepository
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository
	IssueRepository       repository.IssueRepository
	ProposalRepository    repository.ProposalRepository
	VoteRepository        repository.VoteRepository
	StakeRepository       repository.StakeRepository

	// Services
	LedgerService  service.LedgerService
	StakingService service.StakingService
	IssueService   service.IssueService
	Sweeper        *service.Sweeper

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		app.Logger = util.GetLogger()
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger(cfg.LogLevel)
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database and apply migrations
	database, err := db.NewPostgresDB(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if err := db.Migrate(ctx, app.DB, app.Logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository()
	app.WalletRepository = postgres.NewWalletRepository()
	app.TransactionRepository = postgres.NewTransactionRepository()
	app.IssueRepository = postgres.NewIssueRepository()
	app.ProposalRepository = postgres.NewProposalRepository()
	app.VoteRepository = postgres.NewVoteRepository()
	app.StakeRepository = postgres.NewStakeRepository()
	app.Logger.Info("Repositories initialized.")

	// 5. Ranking cache and metrics
	rankingCache, err := app.initRankingCache(ctx)
	if err != nil {
		return err
	}
	app.Metrics = metrics.NewPrometheus()

	// 6. Initialize Services
	uow := service.NewUnitOfWork(app.DB, db.BeginTx, db.CommitTx, db.RollbackTx)

	app.LedgerService = service.NewLedgerService(
		uow,
		app.DB,
		app.UserRepository,
		app.WalletRepository,
		app.TransactionRepository,
		app.Metrics,
		app.Logger,
	)
	if err := app.LedgerService.SeedTransactionTypes(ctx, cfg.Fees); err != nil {
		return fmt.Errorf("failed to seed transaction types: %w", err)
	}

	app.StakingService = service.NewStakingService(service.StakingDeps{
		UnitOfWork:   uow,
		DBExecutor:   app.DB,
		Ledger:       app.LedgerService,
		UserRepo:     app.UserRepository,
		WalletRepo:   app.WalletRepository,
		ProposalRepo: app.ProposalRepository,
		StakeRepo:    app.StakeRepository,
		Cache:        rankingCache,
		Metrics:      app.Metrics,
		Logger:       app.Logger,
	}, cfg.Staking.ProposalStakeLifetimeDays)

	app.IssueService = service.NewIssueService(service.IssueDeps{
		UnitOfWork:   uow,
		DBExecutor:   app.DB,
		Ledger:       app.LedgerService,
		UserRepo:     app.UserRepository,
		IssueRepo:    app.IssueRepository,
		ProposalRepo: app.ProposalRepository,
		VoteRepo:     app.VoteRepository,
		Cache:        rankingCache,
		Metrics:      app.Metrics,
		Logger:       app.Logger,
	}, service.IssueSettings{
		TopStakedIssuesPercent:    cfg.Staking.TopStakedIssuesPercent,
		TopStakedProposalsPercent: cfg.Staking.TopStakedProposalsPercent,
		MaxDueDays:                cfg.Issues.MaxDueDays,
	})

	app.Sweeper = service.NewSweeper(app.StakingService, cfg.Staking.SweepInterval, app.Logger)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	app.HTTPHandler = router.NewRouter(router.Handlers{
		Wallet:  handler.NewWalletHandler(app.LedgerService, app.Logger),
		Issue:   handler.NewIssueHandler(app.IssueService, app.Logger),
		Stake:   handler.NewStakeHandler(app.StakingService, app.Logger),
		Metrics: app.Metrics.Handler(),
	}, cfg.CORSAllowedOrigins, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

func (app *Application) initRankingCache(ctx context.Context) (cache.RankingCache, error) {
	if !app.Config.Redis.Enabled {
		app.Logger.Info("Ranking cache disabled.")
		return cache.NopRankingCache{}, nil
	}
	client, err := cache.NewRedisClient(ctx, app.Config.Redis.Addr, app.Config.Redis.Password, app.Config.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.Redis = client
	app.Logger.Info("Ranking cache connected.", "addr", app.Config.Redis.Addr)
	return cache.NewRedisRankingCache(client, app.Config.Redis.RankingTTL), nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Failed to close redis connection", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
