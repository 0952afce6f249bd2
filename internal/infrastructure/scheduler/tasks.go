package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/hibiken/asynq"
)

const (
	TypeDonationExpire = "donation:expire"
	TypePlacementRetry = "placement:retry"
)

type expirePayload struct {
	DonateID     string `json:"donate_id"`
	SenderUserID int64  `json:"sender_user_id"`
}

// retryPayload хранит тип структуры коротким кодом "b" / "t"
type retryPayload struct {
	MemberUserID int64   `json:"member_user_id"`
	MatrixID     string  `json:"matrix_id"`
	Amount       float64 `json:"amount"`
	BuildType    string  `json:"build_type"`
}

func NewDonationExpireTask(donateID string, senderUserID int64) (*asynq.Task, error) {
	body, err := json.Marshal(expirePayload{DonateID: donateID, SenderUserID: senderUserID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDonationExpire, body), nil
}

func NewPlacementRetryTask(retry domain.PlacementRetry) (*asynq.Task, error) {
	body, err := json.Marshal(retryPayload{
		MemberUserID: retry.MemberUserID,
		MatrixID:     retry.MatrixID,
		Amount:       retry.Amount,
		BuildType:    retry.BuildType.ShortCode(),
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePlacementRetry, body), nil
}

func decodeExpire(t *asynq.Task) (expirePayload, error) {
	var p expirePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	if p.DonateID == "" {
		return p, fmt.Errorf("%s payload without donate id: %w", t.Type(), asynq.SkipRetry)
	}
	return p, nil
}

func decodeRetry(t *asynq.Task) (domain.PlacementRetry, error) {
	var p retryPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return domain.PlacementRetry{}, fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	bt, err := domain.ParseBuildType(p.BuildType)
	if err != nil {
		return domain.PlacementRetry{}, fmt.Errorf("%s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return domain.PlacementRetry{
		MemberUserID: p.MemberUserID,
		MatrixID:     p.MatrixID,
		Amount:       p.Amount,
		BuildType:    bt,
	}, nil
}
