package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	userdto "github.com/LavaJover/shvark-matrix-service/internal/usecase/dto/user"
	"github.com/google/uuid"
)

type UserUsecase interface {
	EnsureHouse(ctx context.Context, input *userdto.EnsureHouseInput) (*domain.TelegramUser, error)
	RegisterUser(ctx context.Context, input *userdto.RegisterUserInput) (*userdto.RegisterUserOutput, error)
	GetUser(ctx context.Context, userID int64) (*domain.TelegramUser, error)
	GetMatrix(ctx context.Context, matrixID string) (*domain.Matrix, error)
	GetMatrixTeam(ctx context.Context, matrixID string) (*userdto.MatrixTeamOutput, error)
	GetReferrals(ctx context.Context, sponsorUserID int64) ([]*domain.TelegramUser, error)
}

type DefaultUserUsecase struct {
	uow      domain.UnitOfWork
	repos    domain.Repositories
	notifier domain.Notifier
	now      func() time.Time
}

func NewDefaultUserUsecase(uow domain.UnitOfWork, repos domain.Repositories, notifier domain.Notifier) *DefaultUserUsecase {
	return &DefaultUserUsecase{
		uow:      uow,
		repos:    repos,
		notifier: notifier,
		now:      time.Now,
	}
}

// EnsureHouse creates the house account together with one root matrix per
// tier and build type. Running it again only adds what is missing.
func (uc *DefaultUserUsecase) EnsureHouse(ctx context.Context, input *userdto.EnsureHouseInput) (*domain.TelegramUser, error) {
	var house *domain.TelegramUser
	err := uc.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		house, err = repos.Users.GetAdmin(ctx)
		if errors.Is(err, domain.ErrNoHouse) {
			house = &domain.TelegramUser{
				ID:            uuid.New().String(),
				UserID:        input.UserID,
				Username:      input.Username,
				FirstName:     input.FirstName,
				TrinaryStatus: domain.StatusBrilliant,
				BinaryStatus:  domain.StatusBrilliant,
				IsAdmin:       true,
				CreatedAt:     uc.now(),
			}
			if err := repos.Users.CreateUser(ctx, house); err != nil {
				return fmt.Errorf("create house account: %w", err)
			}
			slog.Info("house account created", "user_id", house.UserID)
		} else if err != nil {
			return err
		}

		for _, bt := range []domain.BuildType{domain.BuildTypeTrinary, domain.BuildTypeBinary} {
			for _, st := range domain.OrderedTiers() {
				existing, err := repos.Matrices.GetUserMatrices(ctx, house.UserID, st, bt)
				if err != nil {
					return fmt.Errorf("get house matrices: %w", err)
				}
				if len(existing) > 0 {
					continue
				}
				m := &domain.Matrix{
					ID:        uuid.New().String(),
					OwnerID:   house.UserID,
					Status:    st,
					BuildType: bt,
					CreatedAt: uc.now(),
					UpdatedAt: uc.now(),
				}
				if err := repos.Matrices.CreateMatrix(ctx, m); err != nil {
					return fmt.Errorf("create house matrix %s %s: %w", st, bt, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return house, nil
}

// RegisterUser is idempotent: a known user is returned unchanged.
func (uc *DefaultUserUsecase) RegisterUser(ctx context.Context, input *userdto.RegisterUserInput) (*userdto.RegisterUserOutput, error) {
	var (
		out     *userdto.RegisterUserOutput
		sponsor *domain.TelegramUser
	)
	err := uc.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		existing, err := repos.Users.GetUserByUserID(ctx, input.UserID)
		if err == nil {
			out = &userdto.RegisterUserOutput{User: existing}
			return nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}

		house, err := repos.Users.GetAdmin(ctx)
		if err != nil {
			return fmt.Errorf("get house account: %w", err)
		}
		sponsor = house
		if input.SponsorUserID != nil && *input.SponsorUserID != input.UserID {
			s, err := repos.Users.GetUserByUserID(ctx, *input.SponsorUserID)
			switch {
			case err == nil:
				sponsor = s
			case errors.Is(err, domain.ErrUserNotFound):
				slog.Warn("unknown sponsor, linking to house", "user_id", input.UserID, "sponsor_user_id", *input.SponsorUserID)
			default:
				return fmt.Errorf("get sponsor: %w", err)
			}
		}

		sponsorID := sponsor.UserID
		user := &domain.TelegramUser{
			ID:            uuid.New().String(),
			UserID:        input.UserID,
			Username:      input.Username,
			FirstName:     input.FirstName,
			SponsorUserID: &sponsorID,
			Depth:         sponsor.Depth + 1,
			TrinaryStatus: domain.StatusNotActive,
			BinaryStatus:  domain.StatusNotActive,
			CreatedAt:     uc.now(),
		}
		if err := repos.Users.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if err := repos.Users.IncrementInvites(ctx, sponsorID); err != nil {
			return fmt.Errorf("increment invites: %w", err)
		}
		out = &userdto.RegisterUserOutput{User: user, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Created && uc.notifier != nil {
		n := domain.Notification{
			UserID: sponsor.UserID,
			Kind:   domain.NotificationReferralJoined,
			Text:   fmt.Sprintf("По Вашей ссылке зарегистрировался %s", out.User.DisplayName()),
		}
		if err := uc.notifier.Notify(ctx, n); err != nil {
			slog.Error("failed to notify sponsor", "sponsor_user_id", sponsor.UserID, "error", err)
		}
	}
	return out, nil
}

func (uc *DefaultUserUsecase) GetUser(ctx context.Context, userID int64) (*domain.TelegramUser, error) {
	return uc.repos.Users.GetUserByUserID(ctx, userID)
}

func (uc *DefaultUserUsecase) GetMatrix(ctx context.Context, matrixID string) (*domain.Matrix, error) {
	return uc.repos.Matrices.GetMatrixByID(ctx, matrixID)
}

func (uc *DefaultUserUsecase) GetReferrals(ctx context.Context, sponsorUserID int64) ([]*domain.TelegramUser, error) {
	return uc.repos.Users.GetInvitedUsers(ctx, sponsorUserID)
}

// GetMatrixTeam resolves the owners of the nodes on both levels, in tree order.
func (uc *DefaultUserUsecase) GetMatrixTeam(ctx context.Context, matrixID string) (*userdto.MatrixTeamOutput, error) {
	m, err := uc.repos.Matrices.GetMatrixByID(ctx, matrixID)
	if err != nil {
		return nil, err
	}
	ids := append(m.FirstLevelIDs(), m.SecondLevelIDs()...)
	nodes, err := uc.repos.Matrices.GetMatricesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	owners := make(map[string]int64, len(nodes))
	for _, n := range nodes {
		owners[n.ID] = n.OwnerID
	}

	out := &userdto.MatrixTeamOutput{Matrix: m}
	for _, id := range m.FirstLevelIDs() {
		if owner, ok := owners[id]; ok {
			out.FirstLevel = append(out.FirstLevel, owner)
		}
	}
	for _, id := range m.SecondLevelIDs() {
		if owner, ok := owners[id]; ok {
			out.SecondLevel = append(out.SecondLevel, owner)
		}
	}
	return out, nil
}
