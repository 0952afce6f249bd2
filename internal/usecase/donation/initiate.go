package donation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/logger"
	donationdto "github.com/LavaJover/shvark-matrix-service/internal/usecase/dto/donation"
	"github.com/LavaJover/shvark-matrix-service/internal/usecase/placement"
)

func (uc *DefaultDonationUsecase) InitiateDonation(ctx context.Context, input *donationdto.InitiateDonationInput) (*donationdto.InitiateDonationOutput, error) {
	return uc.initiate(ctx, input, false)
}

func (uc *DefaultDonationUsecase) initiate(ctx context.Context, input *donationdto.InitiateDonationInput, fromRetry bool) (*donationdto.InitiateDonationOutput, error) {
	started := uc.now()
	if !input.BuildType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidBuildType, input.BuildType)
	}
	status, ok := domain.StatusFor(input.Amount, input.BuildType)
	if !ok {
		uc.recordPlacement(input.BuildType, "", "invalid_amount")
		return nil, fmt.Errorf("%w: %v for %s", domain.ErrInvalidAmount, input.Amount, input.BuildType)
	}

	var (
		out    *donationdto.InitiateDonationOutput
		member *domain.TelegramUser
		route  *placement.RouteResult
		donate *domain.Donate
	)
	err := uc.UoW.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		member, err = repos.Users.GetUserByUserID(ctx, input.MemberUserID)
		if err != nil {
			return err
		}
		if member.IsAdmin {
			return domain.ErrHouseCannotDonate
		}
		if status.Rank() <= member.StatusFor(input.BuildType).Rank() {
			return fmt.Errorf("%w: %s has %s", domain.ErrStatusNotUpgrade, input.BuildType, member.StatusFor(input.BuildType))
		}
		pending, err := repos.Donates.GetPendingDonatesBySender(ctx, member.UserID, input.BuildType)
		if err != nil {
			return fmt.Errorf("get pending donates: %w", err)
		}
		if len(pending) > 0 {
			return domain.ErrPendingDonationExists
		}

		sponsor, err := uc.sponsorOf(ctx, repos, member)
		if err != nil {
			return fmt.Errorf("get sponsor: %w", err)
		}
		route, err = uc.engine(repos).Route(ctx, placement.RouteRequest{
			Sponsor:   sponsor,
			Member:    member,
			Amount:    input.Amount,
			BuildType: input.BuildType,
		})
		if err != nil {
			return err
		}

		out = &donationdto.InitiateDonationOutput{
			TargetMatrixID: route.Target.ID,
			Placed:         route.Placeable,
			Status:         route.Status,
		}
		if !route.Placeable {
			return nil
		}

		now := uc.now()
		donate = &domain.Donate{
			ID:        uc.newID(),
			SenderID:  member.UserID,
			MatrixID:  route.Target.ID,
			BuildType: input.BuildType,
			Amount:    input.Amount,
			CreatedAt: now,
		}
		for _, credit := range route.Credits {
			donate.Transactions = append(donate.Transactions, &domain.DonateTransaction{
				ID:          uc.newID(),
				DonateID:    donate.ID,
				RecipientID: credit.RecipientID,
				Amount:      credit.Amount,
				CreatedAt:   now,
			})
		}
		if err := repos.Donates.CreateDonate(ctx, donate); err != nil {
			return fmt.Errorf("create donate: %w", err)
		}
		out.DonateID = donate.ID
		out.Recipients = append(out.Recipients, route.Credits...)
		for _, tx := range donate.Transactions {
			out.TransactionIDs = append(out.TransactionIDs, tx.ID)
		}
		return nil
	})
	if err != nil {
		uc.recordEngineError("initiate", err)
		return nil, err
	}

	uc.recordRoute(input.BuildType, route, uc.now().Sub(started))
	uc.logRouted(ctx, member, input, route, out)

	if !out.Placed {
		retry := domain.PlacementRetry{
			MemberUserID: member.UserID,
			MatrixID:     out.TargetMatrixID,
			Amount:       input.Amount,
			BuildType:    input.BuildType,
		}
		if err := uc.scheduleRetry(ctx, retry); err != nil {
			return nil, err
		}
		if !fromRetry {
			uc.notify(ctx, placementDeferred(member.UserID, input.BuildType, uc.Config.FreeCheckInterval))
		}
		uc.publish(ctx, domain.DonationEvent{
			Type:      domain.EventDonationDeferred,
			MatrixID:  out.TargetMatrixID,
			UserID:    member.UserID,
			BuildType: input.BuildType,
			Status:    route.Status,
			Amount:    input.Amount,
		})
		return out, nil
	}

	uc.recordDonateCreated(donate, route.Status)
	if uc.Scheduler != nil {
		if err := uc.Scheduler.ScheduleDonationExpiry(ctx, donate.ID, member.UserID, uc.Config.ConfirmationWindow); err != nil {
			// подарок уже записан, его закроет фоновая очистка
			slog.Error("failed to schedule donation expiry", "donate_id", donate.ID, "error", err)
			uc.recordEngineError("schedule_expiry", err)
		}
	}

	notes := make([]domain.Notification, 0, len(donate.Transactions)+1)
	for _, tx := range donate.Transactions {
		notes = append(notes, donateRequest(member, donate, tx))
	}
	notes = append(notes, donateCreated(member.UserID, donate, uc.Config.ConfirmationWindow, fromRetry))
	uc.notify(ctx, notes...)
	uc.publish(ctx, domain.DonationEvent{
		Type:      domain.EventDonationCreated,
		DonateID:  donate.ID,
		MatrixID:  donate.MatrixID,
		UserID:    member.UserID,
		BuildType: donate.BuildType,
		Status:    route.Status,
		Amount:    donate.Amount,
	})
	return out, nil
}

func (uc *DefaultDonationUsecase) scheduleRetry(ctx context.Context, retry domain.PlacementRetry) error {
	if uc.Scheduler == nil {
		return nil
	}
	if err := uc.Scheduler.SchedulePlacementRetry(ctx, retry, uc.Config.FreeCheckInterval); err != nil {
		uc.recordEngineError("schedule_retry", err)
		return fmt.Errorf("schedule placement retry: %w", err)
	}
	return nil
}

func (uc *DefaultDonationUsecase) logRouted(ctx context.Context, member *domain.TelegramUser, input *donationdto.InitiateDonationInput, route *placement.RouteResult, out *donationdto.InitiateDonationOutput) {
	if uc.EventLogger == nil {
		return
	}
	event := logger.PlacementRoutedEvent{
		RequestID:      uc.requestID(),
		MemberUserID:   member.UserID,
		BuildType:      string(input.BuildType),
		Status:         string(route.Status),
		Amount:         input.Amount,
		TargetMatrixID: route.Target.ID,
		DonateID:       out.DonateID,
		Placed:         out.Placed,
		House:          route.House,
		Fallback:       route.Fallback,
		Hops:           route.Hops,
		Timestamp:      uc.now(),
	}
	go func(event logger.PlacementRoutedEvent) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := uc.EventLogger.LogPlacementRouted(ctx, event); err != nil {
			slog.Error("failed to log placement", "member_user_id", event.MemberUserID, "error", err)
		}
	}(event)
}
