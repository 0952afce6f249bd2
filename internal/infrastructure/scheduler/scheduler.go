package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/config"
	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/hibiken/asynq"
)

// AsynqScheduler ставит отложенные задачи в redis через asynq
type AsynqScheduler struct {
	client *asynq.Client
	queue  string
	now    func() time.Time
}

func RedisOpt(cfg config.Redis) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewAsynqScheduler(client *asynq.Client, queue string) *AsynqScheduler {
	if queue == "" {
		queue = "default"
	}
	return &AsynqScheduler{client: client, queue: queue, now: time.Now}
}

// ScheduleDonationExpiry is keyed by donate id, scheduling twice keeps the first task.
func (s *AsynqScheduler) ScheduleDonationExpiry(ctx context.Context, donateID string, senderUserID int64, after time.Duration) error {
	task, err := NewDonationExpireTask(donateID, senderUserID)
	if err != nil {
		return err
	}
	return s.enqueue(ctx, task,
		asynq.Queue(s.queue),
		asynq.ProcessIn(after),
		asynq.TaskID("expire:"+donateID),
		asynq.MaxRetry(5),
	)
}

// SchedulePlacementRetry dedups per member and minute of the planned run.
func (s *AsynqScheduler) SchedulePlacementRetry(ctx context.Context, retry domain.PlacementRetry, after time.Duration) error {
	task, err := NewPlacementRetryTask(retry)
	if err != nil {
		return err
	}
	runAt := s.now().Add(after).Truncate(time.Minute)
	return s.enqueue(ctx, task,
		asynq.Queue(s.queue),
		asynq.ProcessIn(after),
		asynq.TaskID(fmt.Sprintf("retry:%s:%d:%d", retry.BuildType.ShortCode(), retry.MemberUserID, runAt.Unix())),
		asynq.MaxRetry(3),
	)
}

func (s *AsynqScheduler) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		slog.Debug("task already scheduled", "type", task.Type())
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	slog.Debug("task scheduled", "type", task.Type(), "id", info.ID, "process_at", info.NextProcessAt)
	return nil
}
