package donation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/metrics"
	donationdto "github.com/LavaJover/shvark-matrix-service/internal/usecase/dto/donation"
	"github.com/LavaJover/shvark-matrix-service/internal/usecase/placement"
	"github.com/google/uuid"
)

type DonationUsecase interface {
	InitiateDonation(ctx context.Context, input *donationdto.InitiateDonationInput) (*donationdto.InitiateDonationOutput, error)
	RetryPlacement(ctx context.Context, retry domain.PlacementRetry) error
	ConfirmDonationLeg(ctx context.Context, transactionID string) error
	ExpireDonation(ctx context.Context, input *donationdto.ExpireDonationInput) error
	CancelExpiredDonations(ctx context.Context) error
	GetDonationHistory(ctx context.Context, userID int64) (*donationdto.DonationHistoryOutput, error)
}

type CancelMode string

const (
	CancelModeFlag   CancelMode = "flag"
	CancelModeDelete CancelMode = "delete"
)

type Config struct {
	ConfirmationWindow time.Duration
	FreeCheckInterval  time.Duration
	CancelMode         CancelMode
	CreditPolicy       placement.CreditPolicy
}

type DefaultDonationUsecase struct {
	UoW         domain.UnitOfWork
	Repos       domain.Repositories
	Notifier    domain.Notifier
	Scheduler   domain.TaskScheduler
	Metrics     *metrics.MatrixMetrics
	EventLogger logger.PlacementEventLogger
	Events      domain.EventPublisher
	Config      Config

	now       func() time.Time
	newID     func() string
	requestID func() string
	log       *slog.Logger
}

type Option func(*DefaultDonationUsecase)

func WithClock(now func() time.Time) Option {
	return func(uc *DefaultDonationUsecase) { uc.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(uc *DefaultDonationUsecase) { uc.newID = newID }
}

func WithRequestIDGenerator(gen func() string) Option {
	return func(uc *DefaultDonationUsecase) { uc.requestID = gen }
}

func WithLogger(l *slog.Logger) Option {
	return func(uc *DefaultDonationUsecase) { uc.log = l }
}

func WithEventPublisher(p domain.EventPublisher) Option {
	return func(uc *DefaultDonationUsecase) { uc.Events = p }
}

func NewDefaultDonationUsecase(
	uow domain.UnitOfWork,
	repos domain.Repositories,
	notifier domain.Notifier,
	scheduler domain.TaskScheduler,
	matrixMetrics *metrics.MatrixMetrics,
	eventLogger logger.PlacementEventLogger,
	cfg Config,
	opts ...Option,
) *DefaultDonationUsecase {
	if cfg.ConfirmationWindow <= 0 {
		cfg.ConfirmationWindow = 30 * time.Minute
	}
	if cfg.FreeCheckInterval <= 0 {
		cfg.FreeCheckInterval = 10 * time.Minute
	}
	if cfg.CancelMode == "" {
		cfg.CancelMode = CancelModeFlag
	}
	uc := &DefaultDonationUsecase{
		UoW:         uow,
		Repos:       repos,
		Notifier:    notifier,
		Scheduler:   scheduler,
		Metrics:     matrixMetrics,
		EventLogger: eventLogger,
		Config:      cfg,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
		requestID:   func() string { return uuid.New().String() },
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *DefaultDonationUsecase) engine(repos domain.Repositories) *placement.Engine {
	return placement.New(repos,
		placement.WithCreditPolicy(uc.Config.CreditPolicy),
		placement.WithClock(uc.now),
		placement.WithIDGenerator(uc.newID),
		placement.WithLogger(uc.log),
	)
}

// notify delivers after commit. Failures are logged and never undo the placement.
func (uc *DefaultDonationUsecase) notify(ctx context.Context, notes ...domain.Notification) {
	if uc.Notifier == nil {
		return
	}
	for _, n := range notes {
		if err := uc.Notifier.Notify(ctx, n); err != nil {
			slog.Error("failed to deliver notification", "user_id", n.UserID, "kind", n.Kind, "error", err)
			uc.recordNotifyError(n.Kind)
		}
	}
}

func (uc *DefaultDonationUsecase) publish(ctx context.Context, events ...domain.DonationEvent) {
	if uc.Events == nil {
		return
	}
	for _, e := range events {
		if e.OccurredAt.IsZero() {
			e.OccurredAt = uc.now()
		}
		if err := uc.Events.PublishDonationEvent(ctx, e); err != nil {
			slog.Error("failed to publish donation event", "type", e.Type, "donate_id", e.DonateID, "error", err)
			uc.recordEngineError("publish_event", err)
		}
	}
}

func (uc *DefaultDonationUsecase) GetDonationHistory(ctx context.Context, userID int64) (*donationdto.DonationHistoryOutput, error) {
	sent, err := uc.Repos.Donates.GetDonatesBySender(ctx, userID)
	if err != nil {
		return nil, err
	}
	received, err := uc.Repos.Donates.GetTransactionsByRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &donationdto.DonationHistoryOutput{Sent: sent, Received: received}, nil
}

func (uc *DefaultDonationUsecase) sponsorOf(ctx context.Context, repos domain.Repositories, member *domain.TelegramUser) (*domain.TelegramUser, error) {
	if member.SponsorUserID == nil {
		return nil, nil
	}
	sponsor, err := repos.Users.GetUserByUserID(ctx, *member.SponsorUserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	return sponsor, err
}
