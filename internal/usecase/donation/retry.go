package donation

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	donationdto "github.com/LavaJover/shvark-matrix-service/internal/usecase/dto/donation"
)

// RetryPlacement re-runs routing for a deferred donation. The scheduler
// delivers at least once, so a member that already has a donate in flight or
// already holds the tier is skipped.
func (uc *DefaultDonationUsecase) RetryPlacement(ctx context.Context, retry domain.PlacementRetry) error {
	member, err := uc.Repos.Users.GetUserByUserID(ctx, retry.MemberUserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	status, ok := domain.StatusFor(retry.Amount, retry.BuildType)
	if !ok {
		return fmt.Errorf("%w: retry payload %v", domain.ErrInvalidAmount, retry.Amount)
	}
	if member.StatusFor(retry.BuildType).AtLeast(status) {
		return nil
	}
	pending, err := uc.Repos.Donates.GetPendingDonatesBySender(ctx, member.UserID, retry.BuildType)
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		return nil
	}

	_, err = uc.initiate(ctx, &donationdto.InitiateDonationInput{
		MemberUserID: retry.MemberUserID,
		Amount:       retry.Amount,
		BuildType:    retry.BuildType,
	}, true)
	if errors.Is(err, domain.ErrPendingDonationExists) || errors.Is(err, domain.ErrStatusNotUpgrade) {
		return nil
	}
	return err
}
