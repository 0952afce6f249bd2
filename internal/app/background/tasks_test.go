package background

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	donationdto "github.com/LavaJover/shvark-matrix-service/internal/usecase/dto/donation"
	"github.com/stretchr/testify/assert"
)

type sweepCounter struct {
	calls atomic.Int32
}

func (s *sweepCounter) InitiateDonation(ctx context.Context, input *donationdto.InitiateDonationInput) (*donationdto.InitiateDonationOutput, error) {
	return nil, errors.New("unused")
}

func (s *sweepCounter) RetryPlacement(ctx context.Context, retry domain.PlacementRetry) error {
	return nil
}

func (s *sweepCounter) ConfirmDonationLeg(ctx context.Context, transactionID string) error {
	return nil
}

func (s *sweepCounter) ExpireDonation(ctx context.Context, input *donationdto.ExpireDonationInput) error {
	return nil
}

func (s *sweepCounter) CancelExpiredDonations(ctx context.Context) error {
	s.calls.Add(1)
	return errors.New("keeps running after errors")
}

func (s *sweepCounter) GetDonationHistory(ctx context.Context, userID int64) (*donationdto.DonationHistoryOutput, error) {
	return nil, nil
}

func TestSweepRunsUntilCanceled(t *testing.T) {
	counter := &sweepCounter{}
	bt := NewBackgroundTasks(counter, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	bt.StartAll(ctx)
	assert.Eventually(t, func() bool { return counter.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
}
