package donation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/usecase/donation"
	donationdto "github.com/LavaJover/shvark-matrix-service/internal/usecase/dto/donation"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initiate(userID int64, amount float64) *donationdto.InitiateDonationInput {
	return &donationdto.InitiateDonationInput{MemberUserID: userID, Amount: amount, BuildType: tri}
}

func TestInitiateAndConfirmUnderHouse(t *testing.T) {
	f := newFixture(t)
	f.user(10, houseID, 1, domain.StatusNotActive)

	out, err := f.uc.InitiateDonation(f.ctx, initiate(10, 10))
	require.NoError(t, err)
	require.True(t, out.Placed)
	assert.Equal(t, domain.StatusBase, out.Status)
	assert.Equal(t, []domain.Credit{{RecipientID: houseID, Amount: 10}}, out.Recipients)
	require.Len(t, out.TransactionIDs, 1)
	txID := out.TransactionIDs[0]

	require.Len(t, f.scheduler.expiries, 1)
	assert.Equal(t, out.DonateID, f.scheduler.expiries[0].donateID)
	assert.Equal(t, int64(10), f.scheduler.expiries[0].senderID)
	assert.Equal(t, 30*time.Minute, f.scheduler.expiries[0].after)

	requests := f.notifier.byKind(domain.NotificationDonateRequest)
	require.Len(t, requests, 1)
	assert.Equal(t, houseID, requests[0].UserID)
	assert.Equal(t, "confirm_transaction_"+txID, requests[0].Actions[0].Data)
	created := f.notifier.byKind(domain.NotificationDonateCreated)
	require.Len(t, created, 1)
	assert.Equal(t, int64(10), created[0].UserID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DonationsCreatedTotal.WithLabelValues("TRINARY", "BASE")))

	require.NoError(t, f.uc.ConfirmDonationLeg(f.ctx, txID))

	d := f.getDonate(out.DonateID)
	assert.True(t, d.IsConfirmed)
	assert.Equal(t, domain.StatusBase, f.getUser(10).TrinaryStatus)
	assert.Equal(t, 10.0, f.getUser(houseID).TrinaryBill)

	nodes, err := f.repos.Matrices.GetUserMatrices(f.ctx, 10, domain.StatusBase, tri)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	target := f.getMatrix(out.TargetMatrixID)
	assert.Equal(t, []string{nodes[0].ID}, target.FirstLevelIDs())
	assert.Contains(t, target.Members, int64(10))

	assert.Len(t, f.notifier.byKind(domain.NotificationLegConfirmed), 1)
	confirmed := f.notifier.byKind(domain.NotificationDonateConfirmed)
	require.Len(t, confirmed, 1)
	assert.Equal(t, "detail_matrix_"+target.ID, confirmed[0].Actions[0].Data)
	growth := f.notifier.byKind(domain.NotificationFirstLevelGrowth)
	require.Len(t, growth, 1)
	assert.Equal(t, houseID, growth[0].UserID)

	// повторное подтверждение ничего не меняет
	require.NoError(t, f.uc.ConfirmDonationLeg(f.ctx, txID))
	assert.Equal(t, 10.0, f.getUser(houseID).TrinaryBill)
	assert.Len(t, f.notifier.byKind(domain.NotificationDonateConfirmed), 1)
	assert.Equal(t, 1, f.getMatrix(target.ID).FirstLevelCount())

	assert.Equal(t, []domain.DonationEventType{
		domain.EventDonationCreated,
		domain.EventLegConfirmed,
		domain.EventDonationConfirmed,
	}, f.events.types())

	history, err := f.uc.GetDonationHistory(f.ctx, houseID)
	require.NoError(t, err)
	assert.Empty(t, history.Sent)
	require.Len(t, history.Received, 1)
	assert.Equal(t, txID, history.Received[0].ID)
}

func TestInitiateRejections(t *testing.T) {
	f := newFixture(t)
	f.user(10, houseID, 1, domain.StatusNotActive)
	f.user(11, houseID, 1, domain.StatusBronze)

	_, err := f.uc.InitiateDonation(f.ctx, initiate(10, 15))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PlacementsTotal.WithLabelValues("TRINARY", "", "invalid_amount")))

	_, err = f.uc.InitiateDonation(f.ctx, &donationdto.InitiateDonationInput{MemberUserID: 10, Amount: 10, BuildType: "QUAD"})
	assert.ErrorIs(t, err, domain.ErrInvalidBuildType)

	_, err = f.uc.InitiateDonation(f.ctx, initiate(404, 10))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.uc.InitiateDonation(f.ctx, initiate(houseID, 10))
	assert.ErrorIs(t, err, domain.ErrHouseCannotDonate)

	_, err = f.uc.InitiateDonation(f.ctx, initiate(11, 30))
	assert.ErrorIs(t, err, domain.ErrStatusNotUpgrade)

	_, err = f.uc.InitiateDonation(f.ctx, initiate(10, 10))
	require.NoError(t, err)
	_, err = f.uc.InitiateDonation(f.ctx, initiate(10, 30))
	assert.ErrorIs(t, err, domain.ErrPendingDonationExists)

	sent, err := f.repos.Donates.GetDonatesBySender(f.ctx, 10)
	require.NoError(t, err)
	assert.Len(t, sent, 1)
	assert.Empty(t, f.notifier.byKind(domain.NotificationPlacementDeferred))
}

func TestInitiateSurvivesExpirySchedulingFailure(t *testing.T) {
	f := newFixture(t)
	f.user(10, houseID, 1, domain.StatusNotActive)
	f.scheduler.err = errors.New("redis down")

	out, err := f.uc.InitiateDonation(f.ctx, initiate(10, 10))
	require.NoError(t, err)
	assert.True(t, out.Placed)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EngineErrorsTotal.WithLabelValues("schedule_expiry")))
}

func TestDeferredPlacementAndRetry(t *testing.T) {
	f := newFixture(t)
	f.user(2, houseID, 1, domain.StatusBase)
	f.matrix("s1", 2, domain.StatusBase, "a", "b")
	blocker := f.pendingDonate(99, "s1")
	f.user(10, 2, 2, domain.StatusNotActive)

	out, err := f.uc.InitiateDonation(f.ctx, initiate(10, 10))
	require.NoError(t, err)
	assert.False(t, out.Placed)
	assert.Equal(t, "s1", out.TargetMatrixID)
	assert.Empty(t, out.DonateID)

	require.Len(t, f.scheduler.retries, 1)
	want := domain.PlacementRetry{MemberUserID: 10, MatrixID: "s1", Amount: 10, BuildType: tri}
	assert.Equal(t, want, f.scheduler.retries[0].retry)
	assert.Equal(t, 10*time.Minute, f.scheduler.retries[0].after)
	assert.Len(t, f.notifier.byKind(domain.NotificationPlacementDeferred), 1)

	// стол все еще занят: задача переносится без повторного уведомления
	require.NoError(t, f.uc.RetryPlacement(f.ctx, want))
	assert.Len(t, f.scheduler.retries, 2)
	assert.Len(t, f.notifier.byKind(domain.NotificationPlacementDeferred), 1)

	require.NoError(t, f.repos.Donates.CancelDonate(f.ctx, blocker.ID))
	require.NoError(t, f.uc.RetryPlacement(f.ctx, want))

	pending, err := f.repos.Donates.GetPendingDonatesBySender(f.ctx, 10, tri)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "s1", pending[0].MatrixID)
	require.Len(t, pending[0].Transactions, 1)
	assert.Equal(t, int64(2), pending[0].Transactions[0].RecipientID)
	assert.Len(t, f.notifier.byKind(domain.NotificationPlacementReady), 1)
	assert.Empty(t, f.notifier.byKind(domain.NotificationDonateCreated))

	// повторная доставка задачи
	require.NoError(t, f.uc.RetryPlacement(f.ctx, want))
	assert.Len(t, f.scheduler.retries, 2)
	pending, err = f.repos.Donates.GetPendingDonatesBySender(f.ctx, 10, tri)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRetryPlacementSkipsReachedTier(t *testing.T) {
	f := newFixture(t)
	f.user(10, houseID, 1, domain.StatusBronze)

	require.NoError(t, f.uc.RetryPlacement(f.ctx, domain.PlacementRetry{MemberUserID: 10, Amount: 10, BuildType: tri}))
	require.NoError(t, f.uc.RetryPlacement(f.ctx, domain.PlacementRetry{MemberUserID: 404, Amount: 10, BuildType: tri}))
	assert.Empty(t, f.scheduler.retries)
	assert.Empty(t, f.scheduler.expiries)
}

func TestConfirmReroutesWhenTargetClosed(t *testing.T) {
	f := newFixture(t)
	f.user(2, houseID, 1, domain.StatusBase)
	f.matrix("s1", 2, domain.StatusBase, "a", "b")
	f.user(10, 2, 2, domain.StatusNotActive)

	out, err := f.uc.InitiateDonation(f.ctx, initiate(10, 10))
	require.NoError(t, err)
	require.True(t, out.Placed)
	assert.Equal(t, "s1", out.TargetMatrixID)

	s1 := f.getMatrix("s1")
	s1.Archived = true
	require.NoError(t, f.repos.Matrices.UpdateMatrix(f.ctx, s1))

	require.NoError(t, f.uc.ConfirmDonationLeg(f.ctx, out.TransactionIDs[0]))

	// деньги уже ушли спонсору, а место нашлось у дома
	assert.Equal(t, 10.0, f.getUser(2).TrinaryBill)
	houseMatrices, err := f.repos.Matrices.GetUserMatrices(f.ctx, houseID, domain.StatusBase, tri)
	require.NoError(t, err)
	require.Len(t, houseMatrices, 1)
	nodes, err := f.repos.Matrices.GetUserMatrices(f.ctx, 10, domain.StatusBase, tri)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, []string{nodes[0].ID}, houseMatrices[0].FirstLevelIDs())
	assert.Len(t, f.getMatrix("s1").FirstLevelIDs(), 2)
	assert.Equal(t, domain.StatusBase, f.getUser(10).TrinaryStatus)
}

func TestConfirmUnknownTransaction(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.uc.ConfirmDonationLeg(f.ctx, "nope"), domain.ErrTransactionNotFound)
}

func TestExpireFlagMode(t *testing.T) {
	f := newFixture(t)
	f.user(10, houseID, 1, domain.StatusNotActive)
	out, err := f.uc.InitiateDonation(f.ctx, initiate(10, 10))
	require.NoError(t, err)

	input := &donationdto.ExpireDonationInput{DonateID: out.DonateID}
	require.NoError(t, f.uc.ExpireDonation(f.ctx, input))
	require.NoError(t, f.uc.ExpireDonation(f.ctx, input))

	assert.True(t, f.getDonate(out.DonateID).IsCanceled)
	expired := f.notifier.byKind(domain.NotificationDonateExpired)
	require.Len(t, expired, 1)
	assert.Equal(t, int64(10), expired[0].UserID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DonationsExpiredTotal.WithLabelValues("TRINARY", "flag")))

	assert.ErrorIs(t, f.uc.ConfirmDonationLeg(f.ctx, out.TransactionIDs[0]), domain.ErrDonationCanceled)
	assert.Zero(t, f.getUser(houseID).TrinaryBill)

	_, err = f.uc.InitiateDonation(f.ctx, initiate(10, 10))
	assert.NoError(t, err)
}

func TestExpireDeleteModeWithFallbackRecipient(t *testing.T) {
	f := newFixture(t, func(c *donation.Config) { c.CancelMode = donation.CancelModeDelete })
	f.user(10, houseID, 1, domain.StatusNotActive)
	out, err := f.uc.InitiateDonation(f.ctx, initiate(10, 10))
	require.NoError(t, err)

	fallback := houseID
	require.NoError(t, f.uc.ExpireDonation(f.ctx, &donationdto.ExpireDonationInput{DonateID: out.DonateID, FallbackRecipientUserID: &fallback}))

	_, err = f.repos.Donates.GetDonateByID(f.ctx, out.DonateID)
	assert.ErrorIs(t, err, domain.ErrDonateNotFound)
	expired := f.notifier.byKind(domain.NotificationDonateExpired)
	require.Len(t, expired, 1)
	assert.Equal(t, houseID, expired[0].UserID)
}

func TestExpireConfirmedDonateIsNoop(t *testing.T) {
	f := newFixture(t)
	f.user(10, houseID, 1, domain.StatusNotActive)
	out, err := f.uc.InitiateDonation(f.ctx, initiate(10, 10))
	require.NoError(t, err)
	require.NoError(t, f.uc.ConfirmDonationLeg(f.ctx, out.TransactionIDs[0]))

	require.NoError(t, f.uc.ExpireDonation(f.ctx, &donationdto.ExpireDonationInput{DonateID: out.DonateID}))
	require.NoError(t, f.uc.ExpireDonation(f.ctx, &donationdto.ExpireDonationInput{DonateID: "missing"}))

	d := f.getDonate(out.DonateID)
	assert.True(t, d.IsConfirmed)
	assert.False(t, d.IsCanceled)
	assert.Empty(t, f.notifier.byKind(domain.NotificationDonateExpired))
}

func TestCancelExpiredDonations(t *testing.T) {
	f := newFixture(t)
	f.user(10, houseID, 1, domain.StatusNotActive)
	f.user(11, houseID, 1, domain.StatusNotActive)
	f.user(12, houseID, 1, domain.StatusNotActive)

	old1, err := f.uc.InitiateDonation(f.ctx, initiate(10, 10))
	require.NoError(t, err)
	old2, err := f.uc.InitiateDonation(f.ctx, initiate(11, 10))
	require.NoError(t, err)
	f.advance(31 * time.Minute)
	fresh, err := f.uc.InitiateDonation(f.ctx, initiate(12, 10))
	require.NoError(t, err)

	require.NoError(t, f.uc.CancelExpiredDonations(f.ctx))

	assert.True(t, f.getDonate(old1.DonateID).IsCanceled)
	assert.True(t, f.getDonate(old2.DonateID).IsCanceled)
	assert.True(t, f.getDonate(fresh.DonateID).Pending())
	assert.Len(t, f.notifier.byKind(domain.NotificationDonateExpired), 2)
}
