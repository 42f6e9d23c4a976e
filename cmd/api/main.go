// Package main - точка входа для API-сервера учебного ядра WSA.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: реализация хранилищ, кеш, планировщик
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/naluwan/wsa/config"
	"github.com/naluwan/wsa/internal/application/command"
	"github.com/naluwan/wsa/internal/application/eventhandler"
	"github.com/naluwan/wsa/internal/application/query"
	"github.com/naluwan/wsa/internal/domain/access"
	"github.com/naluwan/wsa/internal/domain/catalog"
	"github.com/naluwan/wsa/internal/domain/leaderboard"
	"github.com/naluwan/wsa/internal/domain/progress"
	"github.com/naluwan/wsa/internal/domain/shared"
	"github.com/naluwan/wsa/internal/domain/xp"
	"github.com/naluwan/wsa/internal/infrastructure/messaging"
	"github.com/naluwan/wsa/internal/infrastructure/persistence/memory"
	"github.com/naluwan/wsa/internal/infrastructure/persistence/postgres"
	"github.com/naluwan/wsa/internal/infrastructure/persistence/redis"
	"github.com/naluwan/wsa/internal/infrastructure/scheduler"
	httpserver "github.com/naluwan/wsa/internal/interface/http"
	"github.com/naluwan/wsa/pkg/logger"
	"github.com/naluwan/wsa/pkg/timeutil"

	"github.com/joho/godotenv"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	// .env нужен только в разработке: в проде переменные приходят из окружения.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(os.Stdout, logger.ParseLevel(cfg.Observability.LogLevel))
	log.Info("starting WSA learning hub API",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	anchor := timeutil.NewWeekAnchor(cfg.XP.Location, cfg.XP.WeekStartDay)
	clock := timeutil.SystemClock{}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ХРАНИЛИЩА: POSTGRES ЛИБО IN-MEMORY
	// ─────────────────────────────────────────────────────────────────────────
	var (
		catalogRepo  catalog.Repository
		entitlements access.EntitlementStore
		accounts     xp.Repository
		store        progress.Store
		checkers     []httpserver.HealthChecker
	)

	if cfg.Database.InMemory {
		log.Warn("running with in-memory storage, all state is volatile")
		memAccounts := memory.NewXPAccountRepository()
		catalogRepo = memory.NewCatalogRepository()
		entitlements = memory.NewEntitlementStore()
		accounts = memAccounts
		store = memory.NewProgressStore(memAccounts, anchor)
	} else {
		log.Info("connecting to database...")
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = cfg.Database.URL
		pgCfg.MaxConns = int32(cfg.Database.MaxConns)
		pgCfg.MinConns = int32(cfg.Database.MinConns)
		pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
		pgCfg.ConnectTimeout = cfg.Database.ConnectTimeout

		dbConn, err := postgres.NewConnection(ctx, pgCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			dbConn.Close()
		}()
		log.Info("database connection established")

		if cfg.Database.Migrate {
			log.Info("running database migrations...")
			if err := postgres.NewMigrator(dbConn).Up(ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info("migrations completed")
		}

		catalogRepo = postgres.NewCatalogRepository(dbConn)
		entitlements = postgres.NewEntitlementStore(dbConn)
		accounts = postgres.NewXPAccountRepository(dbConn)
		store = postgres.NewProgressStore(dbConn, anchor)
		checkers = append(checkers, dbConn)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. КЕШ РЕЙТИНГА (REDIS, ОПЦИОНАЛЬНО)
	// ─────────────────────────────────────────────────────────────────────────
	var lbCache leaderboard.Cache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisClient, err := redis.NewClient(ctx, redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, leaderboard cache disabled", logger.Err(err))
		} else {
			defer func() {
				log.Info("closing Redis connection...")
				_ = redisClient.Close()
			}()
			lbCache = redis.NewLeaderboardCache(redisClient, cfg.Redis.LeaderboardTTL)
			checkers = append(checkers, redisClient)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	eventBus := messaging.NewEventBus(log)

	completeUnit := command.NewCompleteUnitHandler(catalogRepo, entitlements, store, eventBus, anchor, clock)
	getCourses := query.NewGetCoursesHandler(catalogRepo)
	getCourse := query.NewGetCourseHandler(catalogRepo, store)
	getUnit := query.NewGetUnitHandler(catalogRepo, entitlements, store)
	getLeaderboard := query.NewGetLeaderboardHandler(accounts, lbCache, anchor, clock)
	getMe := query.NewGetMeHandler(accounts, anchor, clock)

	// Прохождение юнита перестраивает кеш рейтинга, чтобы оба разреза
	// отражали новое начисление без ожидания планировщика.
	if lbCache != nil {
		onCompleted := eventhandler.NewOnUnitCompletedHandler(getLeaderboard, lbCache, log)
		eventBus.Subscribe(shared.EventUnitCompleted, onCompleted.Handle)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ПЛАНИРОВЩИК
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Scheduler.Enabled && lbCache != nil {
		sched := scheduler.New(getLeaderboard, lbCache, clock, log)
		sched.RebuildInterval = cfg.Scheduler.RebuildLeaderboardInterval
		sched.JobTimeout = cfg.Scheduler.JobTimeout
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HTTP-СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := httpserver.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	httpCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	httpCfg.MaxHeaderBytes = cfg.HTTP.MaxHeaderBytes
	httpCfg.EnableCORS = cfg.HTTP.EnableCORS
	httpCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpCfg.JWTSecret = cfg.Auth.JWTSecret

	server := httpserver.NewServer(httpCfg, httpserver.Dependencies{
		CompleteUnitHandler:   completeUnit,
		GetCoursesHandler:     getCourses,
		GetCourseHandler:      getCourse,
		GetUnitHandler:        getUnit,
		GetLeaderboardHandler: getLeaderboard,
		GetMeHandler:          getMe,
		Logger:                log,
		HealthCheckers:        checkers,
	})

	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
