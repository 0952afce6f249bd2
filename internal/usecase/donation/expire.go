package donation

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	donationdto "github.com/LavaJover/shvark-matrix-service/internal/usecase/dto/donation"
)

// ExpireDonation cancels a donate that is still pending. Confirmed, canceled
// and unknown donates are left alone so that repeated firings are harmless.
func (uc *DefaultDonationUsecase) ExpireDonation(ctx context.Context, input *donationdto.ExpireDonationInput) error {
	var expired *domain.Donate
	err := uc.UoW.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		donate, err := repos.Donates.GetDonateByIDForUpdate(ctx, input.DonateID)
		if errors.Is(err, domain.ErrDonateNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !donate.Pending() {
			return nil
		}

		switch uc.Config.CancelMode {
		case CancelModeDelete:
			err = repos.Donates.DeleteDonate(ctx, donate.ID)
		default:
			err = repos.Donates.CancelDonate(ctx, donate.ID)
		}
		if err != nil {
			return fmt.Errorf("cancel donate: %w", err)
		}
		expired = donate
		return nil
	})
	if err != nil {
		uc.recordEngineError("expire", err)
		return err
	}
	if expired == nil {
		return nil
	}

	uc.recordDonateExpired(expired)
	recipient := expired.SenderID
	if input.FallbackRecipientUserID != nil {
		recipient = *input.FallbackRecipientUserID
	}
	uc.notify(ctx, donateExpired(recipient, expired))
	uc.publish(ctx, domain.DonationEvent{
		Type:      domain.EventDonationExpired,
		DonateID:  expired.ID,
		MatrixID:  expired.MatrixID,
		UserID:    expired.SenderID,
		BuildType: expired.BuildType,
		Amount:    expired.Amount,
	})
	return nil
}

// CancelExpiredDonations expires every pending donate older than the
// confirmation window. It covers expiry tasks lost by the scheduler.
func (uc *DefaultDonationUsecase) CancelExpiredDonations(ctx context.Context) error {
	deadline := uc.now().Add(-uc.Config.ConfirmationWindow)
	donates, err := uc.Repos.Donates.FindExpiredDonates(ctx, deadline)
	if err != nil {
		return fmt.Errorf("find expired donates: %w", err)
	}
	var errs []error
	for _, d := range donates {
		if err := uc.ExpireDonation(ctx, &donationdto.ExpireDonationInput{DonateID: d.ID}); err != nil {
			errs = append(errs, fmt.Errorf("donate %s: %w", d.ID, err))
		}
	}
	return errors.Join(errs...)
}
