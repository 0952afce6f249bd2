package domain

import (
	"context"
	"time"
)

type NotificationKind string

const (
	NotificationDonateRequest     NotificationKind = "DONATE_REQUEST"
	NotificationDonateCreated     NotificationKind = "DONATE_CREATED"
	NotificationLegConfirmed      NotificationKind = "LEG_CONFIRMED"
	NotificationDonateExpired     NotificationKind = "DONATE_EXPIRED"
	NotificationDonateConfirmed   NotificationKind = "DONATE_CONFIRMED"
	NotificationPlacementDeferred NotificationKind = "PLACEMENT_DEFERRED"
	NotificationPlacementReady    NotificationKind = "PLACEMENT_READY"
	NotificationFirstLevelGrowth  NotificationKind = "FIRST_LEVEL_GROWTH"
	NotificationMatrixClosed      NotificationKind = "MATRIX_CLOSED"
	NotificationReferralJoined    NotificationKind = "REFERRAL_JOINED"
)

// Action - кнопка под сообщением, Data уходит обратно боту как callback
type Action struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

type Notification struct {
	UserID  int64            `json:"user_id"`
	Kind    NotificationKind `json:"kind"`
	Text    string           `json:"text"`
	Actions []Action         `json:"actions,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type PlacementRetry struct {
	MemberUserID int64     `json:"member_user_id"`
	MatrixID     string    `json:"matrix_id"`
	Amount       float64   `json:"amount"`
	BuildType    BuildType `json:"build_type"`
}

type TaskScheduler interface {
	ScheduleDonationExpiry(ctx context.Context, donateID string, senderUserID int64, after time.Duration) error
	SchedulePlacementRetry(ctx context.Context, retry PlacementRetry, after time.Duration) error
}
