package donation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-matrix-service/internal/usecase/placement"
)

type confirmOutcome struct {
	donate    *domain.Donate
	sender    *domain.TelegramUser
	tx        *domain.DonateTransaction
	status    domain.Status
	completed bool
	attach    *placement.AttachResult
	node      *domain.Matrix
	rerouted  bool
}

// ConfirmDonationLeg marks one recipient leg as received. Once every leg is
// confirmed the sender is attached to the matrix chosen at initiation.
// Repeated calls for a confirmed leg are no-ops.
func (uc *DefaultDonationUsecase) ConfirmDonationLeg(ctx context.Context, transactionID string) error {
	var res *confirmOutcome
	err := uc.UoW.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		res, err = uc.confirmInTx(ctx, repos, transactionID)
		return err
	})
	if err != nil {
		uc.recordEngineError("confirm", err)
		return err
	}
	if res == nil {
		return nil
	}

	uc.recordLegConfirmed(res.donate.BuildType)
	notes := []domain.Notification{legConfirmed(res.sender.UserID, res.tx)}
	events := []domain.DonationEvent{{
		Type:          domain.EventLegConfirmed,
		DonateID:      res.donate.ID,
		TransactionID: res.tx.ID,
		UserID:        res.tx.RecipientID,
		BuildType:     res.donate.BuildType,
		Amount:        res.tx.Amount,
	}}
	if res.completed {
		uc.recordDonateConfirmed(res.donate, res.status)
		uc.recordAttach(res.attach)
		uc.logAttached(ctx, res)
		notes = append(notes, donateConfirmed(res.sender.UserID, res.donate, res.status, res.attach.Target))
		notes = append(notes, res.attach.Notifications...)
		events = append(events, domain.DonationEvent{
			Type:      domain.EventDonationConfirmed,
			DonateID:  res.donate.ID,
			MatrixID:  res.attach.Target.ID,
			UserID:    res.sender.UserID,
			BuildType: res.donate.BuildType,
			Status:    res.status,
			Amount:    res.donate.Amount,
		})
		for _, m := range res.attach.Archived {
			events = append(events, domain.DonationEvent{
				Type:      domain.EventMatrixArchived,
				MatrixID:  m.ID,
				UserID:    m.OwnerID,
				BuildType: m.BuildType,
				Status:    m.Status,
			})
		}
	}
	uc.notify(ctx, notes...)
	uc.publish(ctx, events...)
	return nil
}

func (uc *DefaultDonationUsecase) confirmInTx(ctx context.Context, repos domain.Repositories, transactionID string) (*confirmOutcome, error) {
	tx, err := repos.Donates.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	donate, err := repos.Donates.GetDonateByIDForUpdate(ctx, tx.DonateID)
	if err != nil {
		return nil, err
	}
	if donate.IsCanceled || tx.IsCanceled {
		return nil, domain.ErrDonationCanceled
	}
	// повторное подтверждение той же доли
	if tx.IsConfirmed {
		return nil, nil
	}

	if err := repos.Donates.ConfirmTransaction(ctx, tx.ID); err != nil {
		return nil, fmt.Errorf("confirm transaction: %w", err)
	}
	recipient, err := repos.Users.GetUserByUserIDForUpdate(ctx, tx.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("get recipient %d: %w", tx.RecipientID, err)
	}
	recipient.AddBill(donate.BuildType, tx.Amount)
	if err := repos.Users.UpdateUser(ctx, recipient); err != nil {
		return nil, fmt.Errorf("update recipient bill: %w", err)
	}
	for _, t := range donate.Transactions {
		if t.ID == tx.ID {
			t.IsConfirmed = true
		}
	}

	sender, err := repos.Users.GetUserByUserIDForUpdate(ctx, donate.SenderID)
	if err != nil {
		return nil, fmt.Errorf("get sender %d: %w", donate.SenderID, err)
	}
	out := &confirmOutcome{donate: donate, sender: sender, tx: tx}
	if donate.IsConfirmed || !donate.AllLegsConfirmed() {
		return out, nil
	}

	if err := repos.Donates.SetDonateConfirmed(ctx, donate.ID); err != nil {
		return nil, fmt.Errorf("set donate confirmed: %w", err)
	}
	donate.IsConfirmed = true

	status, ok := domain.StatusFor(donate.Amount, donate.BuildType)
	if !ok {
		return nil, fmt.Errorf("%w: stored donate %s", domain.ErrInvalidAmount, donate.ID)
	}
	engine := uc.engine(repos)
	node := engine.NewMatrix(sender.UserID, status, donate.BuildType)
	if err := repos.Matrices.CreateMatrix(ctx, node); err != nil {
		return nil, fmt.Errorf("create member matrix: %w", err)
	}

	attach, err := engine.Attach(ctx, donate.MatrixID, node, sender)
	if errors.Is(err, domain.ErrMatrixFull) {
		// стол заполнился, пока подарок ждал подтверждения: ищем новое место
		slog.Warn("target matrix filled before confirmation, rerouting", "donate_id", donate.ID, "matrix_id", donate.MatrixID)
		attach, err = uc.reroute(ctx, repos, engine, sender, donate, node)
		out.rerouted = true
	}
	if err != nil {
		return nil, err
	}

	sender.SetStatus(donate.BuildType, status)
	if err := repos.Users.UpdateUser(ctx, sender); err != nil {
		return nil, fmt.Errorf("update sender status: %w", err)
	}
	out.status = status
	out.completed = true
	out.attach = attach
	out.node = node
	return out, nil
}

func (uc *DefaultDonationUsecase) reroute(ctx context.Context, repos domain.Repositories, engine *placement.Engine, sender *domain.TelegramUser, donate *domain.Donate, node *domain.Matrix) (*placement.AttachResult, error) {
	sponsor, err := uc.sponsorOf(ctx, repos, sender)
	if err != nil {
		return nil, fmt.Errorf("get sponsor: %w", err)
	}
	route, err := engine.Route(ctx, placement.RouteRequest{
		Sponsor:   sponsor,
		Member:    sender,
		Amount:    donate.Amount,
		BuildType: donate.BuildType,
	})
	if err != nil {
		return nil, err
	}
	return engine.Attach(ctx, route.Target.ID, node, sender)
}

func (uc *DefaultDonationUsecase) logAttached(ctx context.Context, res *confirmOutcome) {
	if uc.EventLogger == nil {
		return
	}
	event := logger.PlacementAttachedEvent{
		RequestID:    uc.requestID(),
		DonateID:     res.donate.ID,
		MemberUserID: res.sender.UserID,
		MatrixID:     res.attach.Target.ID,
		NodeID:       res.node.ID,
		Level:        res.attach.Level,
		BranchID:     res.attach.BranchID,
		Rerouted:     res.rerouted,
		Timestamp:    uc.now(),
	}
	go func(event logger.PlacementAttachedEvent) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := uc.EventLogger.LogPlacementAttached(ctx, event); err != nil {
			slog.Error("failed to log attach", "donate_id", event.DonateID, "error", err)
		}
	}(event)
}
