package setup

import (
	"fmt"

	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-matrix-service/internal/usecase"
	"github.com/LavaJover/shvark-matrix-service/internal/usecase/donation"
	"github.com/LavaJover/shvark-matrix-service/internal/usecase/placement"
)

type UseCases struct {
	DonationUsecase donation.DonationUsecase
	UserUsecase     usecase.UserUsecase
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	requestID, err := logger.NewRequestIDGenerator()
	if err != nil {
		return nil, fmt.Errorf("request id generator: %w", err)
	}

	cfg := deps.Config.Donation
	donationUsecase := donation.NewDefaultDonationUsecase(
		deps.UoW,
		deps.Repositories,
		deps.Notifier,
		deps.Scheduler,
		deps.Metrics,
		deps.EventLogger,
		donation.Config{
			ConfirmationWindow: cfg.ConfirmationWindow,
			FreeCheckInterval:  cfg.FreeCheckInterval,
			CancelMode:         donation.CancelMode(cfg.CancelMode),
			CreditPolicy:       placement.ParseCreditPolicy(cfg.CreditPolicy),
		},
		donation.WithEventPublisher(deps.Events),
		donation.WithRequestIDGenerator(requestID),
	)

	userUsecase := usecase.NewDefaultUserUsecase(deps.UoW, deps.Repositories, deps.Notifier)

	return &UseCases{
		DonationUsecase: donationUsecase,
		UserUsecase:     userUsecase,
	}, nil
}
