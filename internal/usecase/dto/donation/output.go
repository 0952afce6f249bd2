package donationdto

import "github.com/LavaJover/shvark-matrix-service/internal/domain"

type InitiateDonationOutput struct {
	TargetMatrixID string
	Placed         bool
	DonateID       string
	Status         domain.Status
	Recipients     []domain.Credit
	TransactionIDs []string
}

type DonationHistoryOutput struct {
	Sent     []*domain.Donate
	Received []*domain.DonateTransaction
}
