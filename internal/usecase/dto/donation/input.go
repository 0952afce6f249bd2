package donationdto

import "github.com/LavaJover/shvark-matrix-service/internal/domain"

type InitiateDonationInput struct {
	MemberUserID int64
	Amount       float64
	BuildType    domain.BuildType
}

type ExpireDonationInput struct {
	DonateID string
	// FallbackRecipientUserID receives the expiry notice instead of the stored sender.
	FallbackRecipientUserID *int64
}
