// Package dependency provides dependency injection for the application.
package dependency

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/gobuddy/backend/config"
	"github.com/gobuddy/backend/internal/application/usecase/auth"
	"github.com/gobuddy/backend/internal/application/usecase/settlement"
	"github.com/gobuddy/backend/internal/application/usecase/worker"
	"github.com/gobuddy/backend/internal/infra/server/router"
	"github.com/gobuddy/backend/internal/integration/adapters"
	"github.com/gobuddy/backend/internal/integration/email"
	"github.com/gobuddy/backend/internal/integration/email/templates"
	"github.com/gobuddy/backend/internal/integration/entrypoint/controller"
	"github.com/gobuddy/backend/internal/integration/entrypoint/middleware"
	"github.com/gobuddy/backend/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config      *config.Config
	DB          *gorm.DB
	Router      *router.Router
	EmailWorker *email.Worker
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, db *gorm.DB, dbHealthChecker func() bool) (*Injector, error) {
	// Create repositories
	userRepo := persistence.NewUserRepository(db)
	workerRepo := persistence.NewWorkerRepository(db)
	transactionRepo := persistence.NewTransactionRepository(db)
	settlementRepo := persistence.NewSettlementRepository(db)
	emailQueueRepo := persistence.NewEmailQueueRepository(db)
	procedures := persistence.NewSettlementProcedures(db)

	// Create adapters/services
	passwordService := adapters.NewPasswordService()
	tokenService := adapters.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	redisOpts.DB = cfg.Redis.DB
	settlementCache := adapters.NewSettlementCache(redis.NewClient(redisOpts), cfg.Redis.CacheTTL)

	// Create email pipeline
	emailService := email.NewService(emailQueueRepo)
	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, err
	}
	emailSender := email.NewResendClient(cfg.Email.ResendAPIKey, cfg.Email.FromName, cfg.Email.FromEmail)
	emailWorker := email.NewWorker(emailQueueRepo, emailSender, renderer, email.WorkerConfig{
		PollInterval: cfg.Email.PollInterval,
		BatchSize:    cfg.Email.BatchSize,
	})

	// Create use cases
	loginUseCase := auth.NewLoginUserUseCase(userRepo, passwordService, tokenService)
	listWorkersUseCase := worker.NewListWorkersUseCase(workerRepo)
	listSettlementsUseCase := settlement.NewListSettlementsUseCase(settlementRepo, settlementCache)
	reconcileUseCase := settlement.NewReconcileSettlementsUseCase(
		workerRepo,
		transactionRepo,
		settlementRepo,
		procedures,
		settlementCache,
	)
	markPaidUseCase := settlement.NewMarkSettlementPaidUseCase(
		settlementRepo,
		workerRepo,
		procedures,
		emailService,
		settlementCache,
		cfg.Settlement.VerifyDelay,
	)

	// Create controllers
	healthController := controller.NewHealthController(dbHealthChecker)
	authController := controller.NewAuthController(loginUseCase)
	settlementController := controller.NewSettlementController(
		listSettlementsUseCase,
		reconcileUseCase,
		markPaidUseCase,
	)
	workerController := controller.NewWorkerController(listWorkersUseCase)

	// Create middleware. Higher login limits for test environments.
	var loginRateLimiter *middleware.RateLimiter
	if cfg.Server.Environment == "test" {
		loginRateLimiter = middleware.NewRateLimiterWithConfig(1000, 1*time.Minute)
	} else {
		loginRateLimiter = middleware.NewRateLimiter()
	}
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	r := router.NewRouter(
		healthController,
		authController,
		settlementController,
		workerController,
		loginRateLimiter,
		authMiddleware,
	)

	slog.Info("Dependencies wired",
		"verify_delay", cfg.Settlement.VerifyDelay,
		"cache_ttl", cfg.Redis.CacheTTL,
	)

	return &Injector{
		Config:      cfg,
		DB:          db,
		Router:      r,
		EmailWorker: emailWorker,
	}, nil
}
