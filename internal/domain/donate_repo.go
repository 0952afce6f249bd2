package domain

import (
	"context"
	"time"
)

type DonateRepository interface {
	// CreateDonate stores the donate together with its transactions.
	CreateDonate(ctx context.Context, donate *Donate) error
	GetDonateByID(ctx context.Context, donateID string) (*Donate, error)
	GetDonateByIDForUpdate(ctx context.Context, donateID string) (*Donate, error)
	GetTransactionByID(ctx context.Context, transactionID string) (*DonateTransaction, error)
	ConfirmTransaction(ctx context.Context, transactionID string) error
	SetDonateConfirmed(ctx context.Context, donateID string) error

	CountPendingDonates(ctx context.Context, matrixID string) (int, error)
	CountPendingByMatrixIDs(ctx context.Context, matrixIDs []string) (map[string]int, error)
	GetPendingDonatesBySender(ctx context.Context, senderID int64, buildType BuildType) ([]*Donate, error)

	CancelDonate(ctx context.Context, donateID string) error
	DeleteDonate(ctx context.Context, donateID string) error
	FindExpiredDonates(ctx context.Context, createdBefore time.Time) ([]*Donate, error)

	GetDonatesBySender(ctx context.Context, senderID int64) ([]*Donate, error)
	GetTransactionsByRecipient(ctx context.Context, recipientID int64) ([]*DonateTransaction, error)
}
