package setup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-matrix-service/internal/config"
	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/notifier"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/postgres/repository"
	redisstore "github.com/LavaJover/shvark-matrix-service/internal/infrastructure/redis"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/scheduler"
	"github.com/hibiken/asynq"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.MatrixConfig
	DB           *gorm.DB
	UoW          domain.UnitOfWork
	Repositories domain.Repositories
	Publisher    *kafka.DefaultKafkaPublisher
	Events       *kafka.EventPublisher
	Notifier     domain.Notifier
	Redis        *goredis.Client
	TaskClient   *asynq.Client
	Scheduler    *scheduler.AsynqScheduler
	Metrics      *metrics.MatrixMetrics
	EventLogger  logger.PlacementEventLogger
}

func InitializeDependencies(ctx context.Context, cfg *config.MatrixConfig) (*Dependencies, error) {
	db := postgres.MustInitDB(cfg)

	redisClient, err := redisstore.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	kafkaPublisher := kafka.NewDefaultKafkaPublisher(cfg.KafkaService.Brokers)
	n, err := initNotifier(cfg, kafkaPublisher)
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}

	taskClient := asynq.NewClient(scheduler.RedisOpt(cfg.Redis))

	return &Dependencies{
		Config:       cfg,
		DB:           db,
		UoW:          postgres.NewUnitOfWork(db),
		Repositories: repository.NewRepositories(db),
		Publisher:    kafkaPublisher,
		Events:       kafka.NewEventPublisher(kafkaPublisher, cfg.KafkaService.EventsTopic),
		Notifier:     n,
		Redis:        redisClient,
		TaskClient:   taskClient,
		Scheduler:    scheduler.NewAsynqScheduler(taskClient, cfg.Donation.TaskQueue),
		Metrics:      metrics.NewMatrixMetrics(nil),
		EventLogger:  logger.NewPGPlacementEventLogger(db),
	}, nil
}

func initNotifier(cfg *config.MatrixConfig, p *kafka.DefaultKafkaPublisher) (domain.Notifier, error) {
	switch cfg.Notifier.Driver {
	case "telegram":
		tg, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken)
		if err != nil {
			return nil, err
		}
		// поток уведомлений в kafka остается для остальных сервисов
		return notifier.Multi{tg, kafka.NewKafkaNotifier(p, cfg.KafkaService.NotificationsTopic)}, nil
	case "log":
		return notifier.NewLogNotifier(slog.Default()), nil
	default:
		return kafka.NewKafkaNotifier(p, cfg.KafkaService.NotificationsTopic), nil
	}
}

// Close releases connections in reverse order of creation.
func (d *Dependencies) Close() {
	if err := d.TaskClient.Close(); err != nil {
		slog.Error("failed to close task client", "error", err)
	}
	if err := d.Publisher.Close(); err != nil {
		slog.Error("failed to close kafka publisher", "error", err)
	}
	if err := d.Redis.Close(); err != nil {
		slog.Error("failed to close redis", "error", err)
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
