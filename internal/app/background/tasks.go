package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/usecase/donation"
)

type BackgroundTasks struct {
	DonationUsecase donation.DonationUsecase
	SweepInterval   time.Duration
}

func NewBackgroundTasks(donationUC donation.DonationUsecase, sweepInterval time.Duration) *BackgroundTasks {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	return &BackgroundTasks{
		DonationUsecase: donationUC,
		SweepInterval:   sweepInterval,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startExpiredDonationsSweep(ctx)
}

// подбирает подарки, чьи задачи истечения потерялись в очереди
func (bt *BackgroundTasks) startExpiredDonationsSweep(ctx context.Context) {
	ticker := time.NewTicker(bt.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bt.sweepOnce(ctx)
		}
	}
}

func (bt *BackgroundTasks) sweepOnce(ctx context.Context) {
	if err := bt.DonationUsecase.CancelExpiredDonations(ctx); err != nil {
		slog.Error("expired donations sweep failed", "error", err)
	}
}
