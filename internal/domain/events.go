package domain

import (
	"context"
	"time"
)

type DonationEventType string

const (
	EventDonationDeferred  DonationEventType = "DONATION_DEFERRED"
	EventDonationCreated   DonationEventType = "DONATION_CREATED"
	EventLegConfirmed      DonationEventType = "LEG_CONFIRMED"
	EventDonationConfirmed DonationEventType = "DONATION_CONFIRMED"
	EventDonationExpired   DonationEventType = "DONATION_EXPIRED"
	EventMatrixArchived    DonationEventType = "MATRIX_ARCHIVED"
)

// DonationEvent уходит во внешнюю шину после коммита
type DonationEvent struct {
	Type          DonationEventType `json:"type"`
	DonateID      string            `json:"donate_id,omitempty"`
	TransactionID string            `json:"transaction_id,omitempty"`
	MatrixID      string            `json:"matrix_id,omitempty"`
	UserID        int64             `json:"user_id"`
	BuildType     BuildType         `json:"build_type"`
	Status        Status            `json:"status,omitempty"`
	Amount        float64           `json:"amount,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

type EventPublisher interface {
	PublishDonationEvent(ctx context.Context, event DonationEvent) error
}
