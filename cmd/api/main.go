package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/friendship-service/internal/api/http"
	"github.com/spec-kit/friendship-service/internal/api/http/handlers"
	"github.com/spec-kit/friendship-service/internal/auth"
	"github.com/spec-kit/friendship-service/internal/config"
	"github.com/spec-kit/friendship-service/internal/events"
	"github.com/spec-kit/friendship-service/internal/observability"
	"github.com/spec-kit/friendship-service/internal/persistence"
	"github.com/spec-kit/friendship-service/internal/ratelimit"
	"github.com/spec-kit/friendship-service/internal/repository"
	"github.com/spec-kit/friendship-service/internal/service"
	"github.com/spec-kit/friendship-service/internal/worker"
)

const (
	shutdownTimeout   = 10 * time.Second
	limiterPruneEvery = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redisConn *persistence.Redis
	if cfg.RateLimit.Backend == config.RateLimitBackendRedis {
		redisConn, err = persistence.NewRedis(ctx, cfg.Redis, true, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisConn.Close()
	}

	accountRepo, requestRepo := buildRepositories(pg, logger)
	limiter := buildLimiter(cfg.RateLimit, redisConn, logger)
	worker.StartLimiterJanitor(ctx, limiter, limiterPruneEvery, logger)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))

	authService := service.NewAuthService(*cfg, service.AuthDependencies{AccountRepo: accountRepo})
	friendshipService := service.NewFriendshipService(service.FriendshipDependencies{
		AccountRepo:       accountRepo,
		FriendRequestRepo: requestRepo,
		Limiter:           limiter,
		Dispatcher:        dispatcher,
		Metrics:           metrics,
		Logger:            logger,
	})
	queryService := service.NewQueryService(service.QueryDependencies{
		AccountRepo:       accountRepo,
		FriendRequestRepo: requestRepo,
		PageSize:          cfg.Search.PageSize,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisConn),
		Accounts:       handlers.NewAccountsHandler(authService),
		Friends:        handlers.NewFriendsHandler(friendshipService, queryService),
		Search:         handlers.NewSearchHandler(queryService),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func buildRepositories(pg *persistence.Postgres, logger *zap.Logger) (repository.AccountRepository, repository.FriendRequestRepository) {
	if pg.Enabled() {
		pool := pg.PoolHandle()
		return repository.NewAccountRepository(pool), repository.NewFriendRequestRepository(pool)
	}
	logger.Warn("using in-memory store; data is lost on restart")
	accounts := repository.NewMemoryAccountRepository()
	return accounts, repository.NewMemoryFriendRequestRepository(accounts)
}

func buildLimiter(cfg config.RateLimitConfig, redisConn *persistence.Redis, logger *zap.Logger) ratelimit.Limiter {
	policy := ratelimit.Policy{Limit: cfg.SendMax, Window: cfg.Window()}
	if policy.Disabled() {
		logger.Warn("friend request rate limit disabled")
		return ratelimit.NewNoopLimiter()
	}
	logger.Info("friend request rate limit",
		zap.String("backend", cfg.Backend),
		zap.Int("limit", policy.Limit),
		zap.Duration("window", policy.Window))
	if cfg.Backend == config.RateLimitBackendRedis && redisConn != nil {
		return ratelimit.NewRedisLimiter(redisConn.Client, policy, cfg.KeyPrefix)
	}
	return ratelimit.NewMemoryLimiter(policy)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
