// Package main is the entry point of the learning progress hub server.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure progress/achievement logic without external dependencies
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: PostgreSQL/Redis persistence, event bus, scheduler
// - Interface: HTTP REST endpoints
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ailearn-hub/learning-progress-hub/config"
	"github.com/ailearn-hub/learning-progress-hub/internal/application/command"
	"github.com/ailearn-hub/learning-progress-hub/internal/application/query"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/achievement"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/infrastructure/messaging"
	"github.com/ailearn-hub/learning-progress-hub/internal/infrastructure/persistence/memory"
	"github.com/ailearn-hub/learning-progress-hub/internal/infrastructure/persistence/postgres"
	"github.com/ailearn-hub/learning-progress-hub/internal/infrastructure/persistence/redis"
	"github.com/ailearn-hub/learning-progress-hub/internal/infrastructure/scheduler"
	"github.com/ailearn-hub/learning-progress-hub/internal/infrastructure/scheduler/jobs"
	httpserver "github.com/ailearn-hub/learning-progress-hub/internal/interface/http"
	"github.com/ailearn-hub/learning-progress-hub/internal/interface/http/handlers"
	"github.com/ailearn-hub/learning-progress-hub/pkg/logger"
	"github.com/ailearn-hub/learning-progress-hub/pkg/retry"
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
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	logOpts := logger.DefaultOptions()
	logOpts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	log := logger.New(logOpts)

	log.Info("starting learning progress hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. PERSISTENCE (PostgreSQL or in-memory)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		store    progress.Store
		dbConn   *postgres.Connection
		eventLog *postgres.EventLog
	)

	if cfg.Database.Disabled || cfg.Database.URL == "" {
		log.Warn("running without PostgreSQL, records are kept in memory only")
		store = memory.NewRecordStore()
	} else {
		log.Info("connecting to database")
		dbConn, err = retry.DoWithData(ctx, func(ctx context.Context) (*postgres.Connection, error) {
			conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
			if err != nil {
				return nil, err
			}
			if err := conn.Ping(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return conn, nil
		}, retry.WithMaxAttempts(5), retry.WithInitialDelay(250*time.Millisecond),
			retry.WithRetryIf(func(error) bool { return true }),
			retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
				log.Warn("database connect failed, retrying",
					logger.Int("attempt", attempt),
					logger.Duration("delay", delay),
					logger.Err(err),
				)
			}))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection")
			dbConn.Close()
		}()
		log.Info("database connection established")

		if cfg.Database.AutoMigrate {
			log.Info("running database migrations")
			migrator := postgres.NewMigrator(dbConn)
			if err := migrator.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		store = postgres.NewRecordStore(dbConn, log)
		eventLog = postgres.NewEventLog(dbConn, log)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional stats cache)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache    *redis.Cache
		snapshotCache *redis.SnapshotCache
	)

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis")
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

		err = retry.CacheRetrier().Do(ctx, func(context.Context) error {
			redisCache, err = redis.NewCache(redisCfg)
			return err
		})
		if err != nil {
			log.Warn("failed to connect to Redis, stats caching disabled", logger.Err(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
			snapshotCache = redis.NewSnapshotCache(redisCache, log)
			log.Info("Redis connection established")
		}
	}

	// Interface wiring goes through locals so a disabled cache stays a true
	// nil interface, not a typed nil.
	var invalidator command.SnapshotInvalidator
	var statsCache query.StatsCache
	if snapshotCache != nil {
		invalidator = snapshotCache
		statsCache = snapshotCache
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus")
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = slog.Default()
	eventBus := messaging.NewInMemoryEventBus(busConfig)
	defer func() {
		log.Info("closing event bus")
		_ = eventBus.Close()
	}()

	if eventLog != nil {
		if err := eventBus.SubscribeAll(eventLog.Handler()); err != nil {
			return fmt.Errorf("failed to subscribe event log: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. DOMAIN SERVICES
	// ─────────────────────────────────────────────────────────────────────────
	aggregator := progress.NewAggregator()
	engine := achievement.NewEngine()
	clock := progress.SystemClock{}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer")

	recomputeCmd := command.NewRecomputeStatsHandler(store, aggregator, invalidator, eventBus)
	checkAchievementsCmd := command.NewCheckAchievementsHandler(store, engine, recomputeCmd, invalidator, eventBus)
	recordContentCmd := command.NewRecordContentLearnedHandler(store, recomputeCmd, eventBus)
	recordTermCmd := command.NewRecordTermLearnedHandler(store, recomputeCmd, eventBus)
	recordQuizCmd := command.NewRecordQuizResultHandler(store, clock, recomputeCmd, checkAchievementsCmd, eventBus)
	setStatsCmd := command.NewSetStatsHandler(store, invalidator, eventBus)

	catalog := query.Catalog{
		ContentTotal: cfg.Catalog.ContentTotal,
		TermSetTotal: cfg.Catalog.TermSetTotal,
	}
	allProgressQuery := query.NewGetAllProgressHandler(store)
	statsQuery := query.NewGetStatsHandler(store, aggregator, clock, statsCache, catalog)
	periodStatsQuery := query.NewGetPeriodStatsHandler(store, aggregator)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Scheduler.Enabled {
		log.Info("starting scheduler")
		sched := scheduler.NewScheduler(scheduler.SchedulerConfig{Logger: slog.Default()})

		repairJob := jobs.NewRepairSnapshotsJob(store, recomputeCmd, log)
		if err := sched.Register(repairJob, scheduler.NewIntervalSchedule(cfg.Scheduler.RepairSnapshotsInterval)); err != nil {
			return fmt.Errorf("failed to register repair job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler")
			_ = sched.Stop()
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	if dbConn != nil {
		healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	}
	if redisCache != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	serverConfig := httpserver.DefaultConfig()
	serverConfig.Host = cfg.HTTP.Host
	serverConfig.Port = cfg.HTTP.Port
	serverConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	serverConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	serverConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	serverConfig.EnableCORS = cfg.HTTP.EnableCORS
	serverConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	// Same typed-nil guard as the caches: only expose the journal when it exists.
	var eventReader httpserver.EventReader
	if eventLog != nil {
		eventReader = eventLog
	}

	server := httpserver.NewServer(serverConfig, httpserver.Dependencies{
		RecordContentHandler:     recordContentCmd,
		RecordTermHandler:        recordTermCmd,
		RecordQuizHandler:        recordQuizCmd,
		SetStatsHandler:          setStatsCmd,
		CheckAchievementsHandler: checkAchievementsCmd,
		GetAllProgressHandler:    allProgressQuery,
		GetStatsHandler:          statsQuery,
		GetPeriodStatsHandler:    periodStatsQuery,
		EventReader:              eventReader,
		Logger:                   log,
		HealthChecker:            healthChecker,
	})

	serverErrCh := server.StartAsync()
	log.Info("HTTP server started", logger.String("address", server.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 11. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
