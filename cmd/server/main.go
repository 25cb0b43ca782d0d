package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pet-progression/internal/clock"
	"github.com/pet-progression/internal/config"
	"github.com/pet-progression/internal/discovery"
	"github.com/pet-progression/internal/events"
	"github.com/pet-progression/internal/handler"
	"github.com/pet-progression/internal/kafka"
	"github.com/pet-progression/internal/postgres"
	"github.com/pet-progression/internal/redis"
	"github.com/pet-progression/internal/service"
	"github.com/pet-progression/internal/sqlite"
	"github.com/pet-progression/internal/store"
	"github.com/pet-progression/internal/websocket"
	"github.com/pet-progression/internal/worker"
)

const (
	archiveBatchSize     = 100
	archiveFlushInterval = 2 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		cfg = config.DefaultConfig()
		if envErr := config.ApplyEnv(cfg); envErr != nil {
			fmt.Fprintln(os.Stderr, envErr)
			os.Exit(1)
		}
	}

	logger := newLogger(os.Stdout, cfg.Logging)
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid timezone", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redisClient *goredis.Client
	if cfg.Storage.Driver == config.DriverRedis {
		logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
		redisClient, err = redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		logger.Info("connected to Redis")
	}

	var postgresRepo *postgres.Repository
	if cfg.Storage.Driver == config.DriverPostgres || cfg.Postgres.Enabled {
		logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		postgresRepo, err = postgres.NewRepository(ctx, &cfg.Postgres, logger)
		if err != nil {
			logger.Error("failed to connect to PostgreSQL", "error", err)
			os.Exit(1)
		}
		defer postgresRepo.Close()

		if err := postgresRepo.RunMigrations(ctx); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("connected to PostgreSQL")
	}

	var docs store.Store
	switch cfg.Storage.Driver {
	case config.DriverRedis:
		docs = redis.NewStore(redisClient, cfg.Redis.KeyPrefix)
	case config.DriverPostgres:
		docs = postgresRepo
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			logger.Error("failed to open sqlite store", "path", cfg.Storage.SQLitePath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
		docs = db
	default:
		logger.Warn("using in-memory storage, progress is lost on restart")
		docs = store.NewMemory()
	}
	logger.Info("document store ready", "driver", cfg.Storage.Driver)

	bus := events.NewBus(logger)

	registry, err := service.NewRegistry(docs, bus, service.Options{
		Clock:    clock.Real{},
		Location: loc,
		Seed:     cfg.Game.Seed,
		Discovery: discovery.Defaults{
			Enabled:       !cfg.Game.Discovery.Disabled,
			IntervalHours: cfg.Game.Discovery.IntervalHours,
			Chance:        cfg.Game.Discovery.Chance,
			MaxPerDay:     cfg.Game.Discovery.MaxPerDay,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to build session registry", "error", err)
		os.Exit(1)
	}

	wsHub := websocket.NewHub(logger)
	go wsHub.Run()
	bus.Subscribe(wsHub.Listener())

	var archiver *postgres.Archiver
	if postgresRepo != nil {
		archiver = postgres.NewArchiver(postgresRepo, archiveBatchSize, archiveFlushInterval, logger)
		archiver.Start()
		bus.Subscribe(archiver.Listener())
	}

	var leaderboard *redis.Leaderboard
	var syncWorker *worker.SyncWorker
	if redisClient != nil {
		leaderboard = redis.NewLeaderboard(redisClient, cfg.Redis.KeyPrefix, logger)
		leaderboard.Start()
		bus.Subscribe(leaderboard.Listener(), events.KindPointsAwarded)

		if postgresRepo != nil {
			syncWorker = worker.NewSyncWorker(leaderboard, postgresRepo, &cfg.Sync, logger)
			if err := syncWorker.SyncFromDatabase(ctx); err != nil {
				logger.Warn("failed to restore leaderboard from database", "error", err)
			}
			if cfg.Sync.Enabled {
				if err := syncWorker.Start(ctx); err != nil {
					logger.Error("failed to start sync worker", "error", err)
					os.Exit(1)
				}
			}
		}
	}

	var rewardProducer *kafka.RewardProducer
	var kafkaConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka",
			"brokers", cfg.Kafka.Brokers,
			"action_topic", cfg.Kafka.ActionTopic,
			"event_topic", cfg.Kafka.EventTopic,
		)
		rewardProducer, err = kafka.NewRewardProducer(&cfg.Kafka, logger)
		if err != nil {
			logger.Warn("failed to create reward producer, continuing without it", "error", err)
		} else {
			bus.Subscribe(rewardProducer.Listener(), kafka.RewardKinds...)
		}

		kafkaConsumer, err = kafka.NewConsumer(&cfg.Kafka, kafka.NewSessionHandler(registry, logger), logger)
		if err != nil {
			logger.Warn("failed to create Kafka consumer, continuing without Kafka", "error", err)
		} else if err := kafkaConsumer.Start(); err != nil {
			logger.Warn("failed to start Kafka consumer, continuing without Kafka", "error", err)
			kafkaConsumer = nil
		} else {
			logger.Info("Kafka consumer started successfully")
		}
	}

	var refreshWorker *worker.RefreshWorker
	if cfg.Refresh.Enabled {
		refreshWorker = worker.NewRefreshWorker(registry, wsHub, cfg.Refresh.Interval, logger)
		refreshWorker.Start(ctx)
		wsHub.OnSubscribe(func(playerID string) { refreshWorker.Push(ctx, playerID) })
	}

	var lb handler.Leaderboard
	if leaderboard != nil {
		lb = leaderboard
	}
	httpHandler := handler.NewHandler(registry, lb, wsHub, logger,
		handler.WithLeaderboardLimits(cfg.Leaderboard.DefaultLimit, cfg.Leaderboard.MaxLimit),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}
	if refreshWorker != nil {
		refreshWorker.Stop()
	}
	wsHub.Stop()

	if leaderboard != nil {
		leaderboard.Stop()
		if dropped := leaderboard.Dropped(); dropped > 0 {
			logger.Warn("leaderboard awards dropped", "count", dropped)
		}
	}
	if syncWorker != nil {
		if err := syncWorker.Stop(); err != nil {
			logger.Error("failed to stop sync worker", "error", err)
		}
		syncWorker.RunOnce(shutdownCtx)
	}
	if rewardProducer != nil {
		rewardProducer.Close()
	}
	if archiver != nil {
		archiver.Stop()
		if dropped := archiver.Dropped(); dropped > 0 {
			logger.Warn("archive events dropped", "count", dropped)
		}
	}

	logger.Info("server stopped")
}

func newLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
