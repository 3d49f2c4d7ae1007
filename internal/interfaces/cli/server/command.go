// Package server implements the `server` CLI command: it wires the
// full sync engine (HTTP surface, webhook dispatcher, reconciliation
// scheduler) and runs it until interrupted.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"stridesync/internal/application/integration/services"
	"stridesync/internal/infrastructure/cache"
	"stridesync/internal/infrastructure/config"
	"stridesync/internal/infrastructure/crypto"
	"stridesync/internal/infrastructure/database"
	"stridesync/internal/infrastructure/dispatch"
	"stridesync/internal/infrastructure/migration"
	"stridesync/internal/infrastructure/observability"
	"stridesync/internal/infrastructure/repository"
	"stridesync/internal/infrastructure/scheduler"
	"stridesync/internal/infrastructure/strava"
	httpRouter "stridesync/internal/interfaces/http"
	"stridesync/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the sync engine",
		Long:  `Start the HTTP server, webhook dispatcher, and periodic reconciliation scheduler.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// server.mode in the config file holds a gin mode; the --env flag
	// wins so a production deploy cannot come up in debug mode.
	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	log.Infow("starting sync engine", "environment", env, "auto_migrate", autoMigrate)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if autoMigrate {
		if err := migration.Run(database.Get(), log); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
	}

	cipher, err := crypto.NewTokenCipher(cfg.Sync.Key())
	if err != nil {
		return fmt.Errorf("failed to build token cipher: %w", err)
	}

	provider := strava.NewClient(cfg.Strava)
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	credRepo := repository.NewIntegrationCredentialRepository(database.Get())
	workoutRepo := repository.NewWorkoutRepository(database.Get())

	tokens := services.NewTokenLifecycleService(cipher, provider, log)
	importer := services.NewImporterService(workoutRepo, log)
	processor := services.NewWebhookProcessorService(credRepo, tokens, importer, provider, metrics, log)
	reconciler := services.NewReconcilerService(credRepo, tokens, importer, provider, metrics, log)
	reconciler.SetLookback(time.Duration(cfg.Sync.LookbackHours) * time.Hour)

	dispatcher := dispatch.NewDispatcher(cfg.Sync.QueueSize, cfg.Sync.Workers, log)

	var reconcileLock scheduler.ReconcileLock
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		reconcileLock = cache.NewRedisReconcileLock(redisClient, "stridesync:reconcile:lock", uuid.NewString())
		log.Infow("reconciliation lock enabled", "redis_addr", cfg.Redis.GetAddr())
	}

	schedulerMgr, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	interval := time.Duration(cfg.Sync.IntervalHours) * time.Hour
	if err := schedulerMgr.RegisterReconciliationJob(reconciler, reconcileLock, interval); err != nil {
		return fmt.Errorf("failed to register reconciliation job: %w", err)
	}
	schedulerMgr.Start()

	router := httpRouter.NewRouter(database.Get(), cfg, cipher, provider, reconciler, processor, dispatcher, metrics, log)
	router.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("server stopped unexpectedly", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// stop accepting HTTP work first, then the sweep, then drain the
	// webhook queue so in-flight imports finish.
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	if err := schedulerMgr.Stop(); err != nil {
		log.Errorw("failed to stop scheduler", "error", err)
	}
	if err := dispatcher.Stop(ctx); err != nil {
		log.Errorw("failed to drain dispatcher", "error", err)
	}

	log.Info("sync engine exited")
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
