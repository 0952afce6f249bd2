package grpcapi

import (
	"context"
	"log/slog"

	"github.com/LavaJover/shvark-matrix-service/internal/delivery/grpcapi/mappers"
	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/usecase"
	"github.com/LavaJover/shvark-matrix-service/internal/usecase/donation"
	donationdto "github.com/LavaJover/shvark-matrix-service/internal/usecase/dto/donation"
	userdto "github.com/LavaJover/shvark-matrix-service/internal/usecase/dto/user"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type DonationHandler struct {
	donations donation.DonationUsecase
	users     usecase.UserUsecase
}

func NewDonationHandler(donations donation.DonationUsecase, users usecase.UserUsecase) *DonationHandler {
	return &DonationHandler{
		donations: donations,
		users:     users,
	}
}

func (h *DonationHandler) InitiateDonation(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(r)
	userID := req.Int64("user_id")
	amount := req.Float("amount")
	rawBuildType := req.String("build_type")
	if err := req.Err(); err != nil {
		return nil, err
	}
	buildType, err := domain.ParseBuildType(rawBuildType)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := h.donations.InitiateDonation(ctx, &donationdto.InitiateDonationInput{
		MemberUserID: userID,
		Amount:       amount,
		BuildType:    buildType,
	})
	if err != nil {
		slog.Error("initiate donation failed", "user_id", userID, "build_type", buildType, "error", err)
		return nil, toStatus(err)
	}

	return respond(map[string]any{
		"placed":           out.Placed,
		"target_matrix_id": out.TargetMatrixID,
		"donate_id":        out.DonateID,
		"status":           string(out.Status),
		"recipients":       mappers.CreditsToList(out.Recipients),
		"transaction_ids":  mappers.StringsToList(out.TransactionIDs),
	})
}

func (h *DonationHandler) ConfirmDonationLeg(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(r)
	transactionID := req.String("transaction_id")
	if err := req.Err(); err != nil {
		return nil, err
	}
	if err := h.donations.ConfirmDonationLeg(ctx, transactionID); err != nil {
		slog.Error("confirm donation leg failed", "transaction_id", transactionID, "error", err)
		return nil, toStatus(err)
	}
	return respond(map[string]any{"message": "transaction confirmed"})
}

func (h *DonationHandler) ExpireDonation(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(r)
	donateID := req.String("donate_id")
	fallback := req.OptionalInt64("fallback_user_id")
	if err := req.Err(); err != nil {
		return nil, err
	}
	if err := h.donations.ExpireDonation(ctx, &donationdto.ExpireDonationInput{
		DonateID:                donateID,
		FallbackRecipientUserID: fallback,
	}); err != nil {
		return nil, toStatus(err)
	}
	return respond(map[string]any{"message": "donation expired"})
}

func (h *DonationHandler) ListDonations(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(r)
	userID := req.Int64("user_id")
	if err := req.Err(); err != nil {
		return nil, err
	}
	history, err := h.donations.GetDonationHistory(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}

	sent := make([]any, 0, len(history.Sent))
	for _, d := range history.Sent {
		sent = append(sent, mappers.DonateToMap(d))
	}
	received := make([]any, 0, len(history.Received))
	for _, tx := range history.Received {
		received = append(received, mappers.TransactionToMap(tx))
	}
	return respond(map[string]any{
		"sent":     sent,
		"received": received,
	})
}

func (h *DonationHandler) RegisterUser(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(r)
	input := &userdto.RegisterUserInput{
		UserID:        req.Int64("user_id"),
		Username:      req.OptionalString("username"),
		FirstName:     req.OptionalString("first_name"),
		SponsorUserID: req.OptionalInt64("sponsor_user_id"),
	}
	if err := req.Err(); err != nil {
		return nil, err
	}
	out, err := h.users.RegisterUser(ctx, input)
	if err != nil {
		slog.Error("register user failed", "user_id", input.UserID, "error", err)
		return nil, toStatus(err)
	}
	return respond(map[string]any{
		"user":    mappers.TelegramUserToMap(out.User),
		"created": out.Created,
	})
}

func (h *DonationHandler) GetUser(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(r)
	userID := req.Int64("user_id")
	if err := req.Err(); err != nil {
		return nil, err
	}
	u, err := h.users.GetUser(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return respond(map[string]any{"user": mappers.TelegramUserToMap(u)})
}

func (h *DonationHandler) GetReferrals(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(r)
	userID := req.Int64("user_id")
	if err := req.Err(); err != nil {
		return nil, err
	}
	referrals, err := h.users.GetReferrals(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	list := make([]any, 0, len(referrals))
	for _, u := range referrals {
		list = append(list, mappers.TelegramUserToMap(u))
	}
	return respond(map[string]any{"referrals": list})
}

func (h *DonationHandler) GetMatrix(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(r)
	matrixID := req.String("matrix_id")
	if err := req.Err(); err != nil {
		return nil, err
	}
	m, err := h.users.GetMatrix(ctx, matrixID)
	if err != nil {
		return nil, toStatus(err)
	}
	return respond(map[string]any{"matrix": mappers.MatrixToMap(m)})
}

func (h *DonationHandler) GetMatrixTeam(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	req := newRequest(r)
	matrixID := req.String("matrix_id")
	if err := req.Err(); err != nil {
		return nil, err
	}
	team, err := h.users.GetMatrixTeam(ctx, matrixID)
	if err != nil {
		return nil, toStatus(err)
	}
	return respond(map[string]any{
		"matrix":       mappers.MatrixToMap(team.Matrix),
		"first_level":  mappers.Int64sToList(team.FirstLevel),
		"second_level": mappers.Int64sToList(team.SecondLevel),
	})
}

func respond(m map[string]any) (*structpb.Struct, error) {
	s, err := mappers.ToStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return s, nil
}
