package scheduler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/scheduler"
	donationdto "github.com/LavaJover/shvark-matrix-service/internal/usecase/dto/donation"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDonations struct {
	expired   []string
	fallbacks []*int64
	retries   []domain.PlacementRetry
}

func (r *recordingDonations) ExpireDonation(ctx context.Context, input *donationdto.ExpireDonationInput) error {
	r.expired = append(r.expired, input.DonateID)
	r.fallbacks = append(r.fallbacks, input.FallbackRecipientUserID)
	return nil
}

func (r *recordingDonations) RetryPlacement(ctx context.Context, retry domain.PlacementRetry) error {
	r.retries = append(r.retries, retry)
	return nil
}

func TestHandlersDecodeTasks(t *testing.T) {
	ctx := context.Background()
	rec := &recordingDonations{}
	h := scheduler.NewHandlers(rec)

	expire, err := scheduler.NewDonationExpireTask("d1", 10)
	require.NoError(t, err)
	assert.Equal(t, scheduler.TypeDonationExpire, expire.Type())
	require.NoError(t, h.HandleDonationExpire(ctx, expire))

	want := domain.PlacementRetry{MemberUserID: 10, MatrixID: "m1", Amount: 20, BuildType: domain.BuildTypeBinary}
	retry, err := scheduler.NewPlacementRetryTask(want)
	require.NoError(t, err)
	assert.JSONEq(t, `{"member_user_id":10,"matrix_id":"m1","amount":20,"build_type":"b"}`, string(retry.Payload()))
	require.NoError(t, h.HandlePlacementRetry(ctx, retry))

	assert.Equal(t, []string{"d1"}, rec.expired)
	require.Len(t, rec.fallbacks, 1)
	require.NotNil(t, rec.fallbacks[0], "sender from the task payload is passed on")
	assert.Equal(t, int64(10), *rec.fallbacks[0])
	assert.Equal(t, []domain.PlacementRetry{want}, rec.retries)
}

func TestExpireTaskWithoutSender(t *testing.T) {
	rec := &recordingDonations{}
	h := scheduler.NewHandlers(rec)

	task := asynq.NewTask(scheduler.TypeDonationExpire, []byte(`{"donate_id":"d2"}`))
	require.NoError(t, h.HandleDonationExpire(context.Background(), task))

	assert.Equal(t, []string{"d2"}, rec.expired)
	assert.Nil(t, rec.fallbacks[0])
}

func TestHandlersSkipRetryOnBadPayload(t *testing.T) {
	ctx := context.Background()
	h := scheduler.NewHandlers(&recordingDonations{})

	tests := []struct {
		name string
		task *asynq.Task
		run  func(context.Context, *asynq.Task) error
	}{
		{"expire not json", asynq.NewTask(scheduler.TypeDonationExpire, []byte("x")), h.HandleDonationExpire},
		{"expire without id", asynq.NewTask(scheduler.TypeDonationExpire, []byte(`{}`)), h.HandleDonationExpire},
		{"retry not json", asynq.NewTask(scheduler.TypePlacementRetry, []byte("x")), h.HandlePlacementRetry},
		{"retry unknown build type", asynq.NewTask(scheduler.TypePlacementRetry, []byte(`{"build_type":"q"}`)), h.HandlePlacementRetry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(ctx, tt.task)
			require.Error(t, err)
			assert.True(t, errors.Is(err, asynq.SkipRetry))
		})
	}
}
