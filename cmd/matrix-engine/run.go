package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/app/background"
	"github.com/LavaJover/shvark-matrix-service/internal/app/setup"
	"github.com/LavaJover/shvark-matrix-service/internal/config"
	"github.com/LavaJover/shvark-matrix-service/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/postgres"
	redisstore "github.com/LavaJover/shvark-matrix-service/internal/infrastructure/redis"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/scheduler"
	userdto "github.com/LavaJover/shvark-matrix-service/internal/usecase/dto/user"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
)

const confirmDedupPrefix = "matrix:confirm:"

func runServe(parent context.Context, cfg *config.MatrixConfig) error {
	ctx, stop := signalContext(parent)
	defer stop()

	deps, err := setup.InitializeDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init dependencies: %w", err)
	}
	defer deps.Close()

	useCases, err := setup.InitializeUseCases(deps)
	if err != nil {
		return fmt.Errorf("failed to init usecases: %w", err)
	}
	if err := ensureHouse(ctx, cfg, useCases); err != nil {
		return err
	}

	// Фоновые задачи
	background.NewBackgroundTasks(useCases.DonationUsecase, cfg.Donation.SweepInterval).StartAll(ctx)

	// Подтверждения от бота
	consumer := kafka.NewConfirmationConsumer(
		kafka.NewDefaultKafkaSubscriber(cfg.KafkaService.Brokers),
		useCases.DonationUsecase,
		redisstore.NewDeduper(deps.Redis, confirmDedupPrefix, cfg.Redis.DedupTTL),
		cfg.KafkaService.ConfirmationsTopic,
		cfg.KafkaService.GroupID,
	)
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("confirmation consumer stopped", "error", err)
		}
	}()

	metricsServer := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           metricsMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("metrics server started", "addr", cfg.Metrics.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()

	grpcServer := grpc.NewServer()
	grpcapi.RegisterDonationServiceServer(grpcServer, grpcapi.NewDonationHandler(useCases.DonationUsecase, useCases.UserUsecase))

	addr := net.JoinHostPort(cfg.GRPCServer.Host, cfg.GRPCServer.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		grpcServer.GracefulStop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("gRPC server started", "addr", addr)
	if err := grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func runWorker(parent context.Context, cfg *config.MatrixConfig) error {
	ctx, stop := signalContext(parent)
	defer stop()

	deps, err := setup.InitializeDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init dependencies: %w", err)
	}
	defer deps.Close()

	useCases, err := setup.InitializeUseCases(deps)
	if err != nil {
		return fmt.Errorf("failed to init usecases: %w", err)
	}

	srv := scheduler.NewServer(cfg.Redis, cfg.Donation.TaskQueue, cfg.Donation.Concurrency)
	if err := srv.Start(scheduler.NewServeMux(scheduler.NewHandlers(useCases.DonationUsecase))); err != nil {
		return fmt.Errorf("failed to start task worker: %w", err)
	}
	slog.Info("task worker started", "queue", cfg.Donation.TaskQueue, "concurrency", cfg.Donation.Concurrency)

	<-ctx.Done()
	srv.Shutdown()
	return nil
}

func runMigrate(cfg *config.MatrixConfig, rollback int) error {
	db := postgres.MustInitDB(cfg)
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if rollback > 0 {
		return migrate.RollbackMigrations(db, cfg.MatrixDB.MigrationsPath, rollback)
	}
	return migrate.RunMigrations(db, cfg.MatrixDB.MigrationsPath)
}

func runBootstrap(parent context.Context, cfg *config.MatrixConfig) error {
	ctx, stop := signalContext(parent)
	defer stop()

	deps, err := setup.InitializeDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init dependencies: %w", err)
	}
	defer deps.Close()

	useCases, err := setup.InitializeUseCases(deps)
	if err != nil {
		return fmt.Errorf("failed to init usecases: %w", err)
	}
	return ensureHouse(ctx, cfg, useCases)
}

func ensureHouse(ctx context.Context, cfg *config.MatrixConfig, useCases *setup.UseCases) error {
	if cfg.House.UserID == 0 {
		slog.Warn("house user id is not configured, skipping bootstrap")
		return nil
	}
	house, err := useCases.UserUsecase.EnsureHouse(ctx, &userdto.EnsureHouseInput{
		UserID:    cfg.House.UserID,
		Username:  cfg.House.Username,
		FirstName: cfg.House.FirstName,
	})
	if err != nil {
		return fmt.Errorf("failed to bootstrap house account: %w", err)
	}
	slog.Info("house account ready", "user_id", house.UserID)
	return nil
}
