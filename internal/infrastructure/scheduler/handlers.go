package scheduler

import (
	"context"
	"log/slog"

	"github.com/LavaJover/shvark-matrix-service/internal/config"
	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	donationdto "github.com/LavaJover/shvark-matrix-service/internal/usecase/dto/donation"
	"github.com/hibiken/asynq"
)

type DonationTasks interface {
	ExpireDonation(ctx context.Context, input *donationdto.ExpireDonationInput) error
	RetryPlacement(ctx context.Context, retry domain.PlacementRetry) error
}

type Handlers struct {
	donations DonationTasks
}

func NewHandlers(donations DonationTasks) *Handlers {
	return &Handlers{donations: donations}
}

func (h *Handlers) HandleDonationExpire(ctx context.Context, t *asynq.Task) error {
	p, err := decodeExpire(t)
	if err != nil {
		slog.Error("bad expire task", "error", err)
		return err
	}
	input := &donationdto.ExpireDonationInput{DonateID: p.DonateID}
	// отправитель из задачи получает уведомление об отмене
	if p.SenderUserID != 0 {
		sender := p.SenderUserID
		input.FallbackRecipientUserID = &sender
	}
	return h.donations.ExpireDonation(ctx, input)
}

func (h *Handlers) HandlePlacementRetry(ctx context.Context, t *asynq.Task) error {
	retry, err := decodeRetry(t)
	if err != nil {
		slog.Error("bad placement retry task", "error", err)
		return err
	}
	return h.donations.RetryPlacement(ctx, retry)
}

func NewServeMux(h *Handlers) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeDonationExpire, h.HandleDonationExpire)
	mux.HandleFunc(TypePlacementRetry, h.HandlePlacementRetry)
	return mux
}

func NewServer(redisCfg config.Redis, queue string, concurrency int) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 10
	}
	if queue == "" {
		queue = "default"
	}
	return asynq.NewServer(
		RedisOpt(redisCfg),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				queue: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				slog.Error("task failed", "type", task.Type(), "error", err)
			}),
		},
	)
}
