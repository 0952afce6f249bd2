package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
)

type LegConfirmer interface {
	ConfirmDonationLeg(ctx context.Context, transactionID string) error
}

type Deduper interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// ConfirmationConsumer turns confirmation events from the bot into
// ConfirmDonationLeg calls. Delivery is at least once, the deduper drops
// repeats by event id.
type ConfirmationConsumer struct {
	subscriber domain.SubscriberPort
	confirmer  LegConfirmer
	dedup      Deduper
	topic      string
	groupID    string
}

func NewConfirmationConsumer(subscriber domain.SubscriberPort, confirmer LegConfirmer, dedup Deduper, topic, groupID string) *ConfirmationConsumer {
	return &ConfirmationConsumer{
		subscriber: subscriber,
		confirmer:  confirmer,
		dedup:      dedup,
		topic:      topic,
		groupID:    groupID,
	}
}

// Run blocks until ctx is canceled or the subscription closes.
func (c *ConfirmationConsumer) Run(ctx context.Context) error {
	msgs, err := c.subscriber.Subscribe(ctx, c.topic, c.groupID)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", c.topic, err)
	}
	slog.Info("confirmation consumer started", "topic", c.topic, "group_id", c.groupID)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := c.Handle(ctx, msg); err != nil {
				slog.Error("failed to handle confirmation", "error", err)
			}
		}
	}
}

func (c *ConfirmationConsumer) Handle(ctx context.Context, msg domain.Message) error {
	var event ConfirmationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// битое сообщение повторять бессмысленно
		slog.Warn("dropping malformed confirmation", "key", string(msg.Key), "error", err)
		return nil
	}
	if event.TransactionID == "" {
		slog.Warn("dropping confirmation without transaction id", "event_id", event.EventID)
		return nil
	}
	key := event.EventID
	if key == "" {
		key = "tx:" + event.TransactionID
	}

	if c.dedup != nil {
		claimed, err := c.dedup.Claim(ctx, key)
		if err != nil {
			return err
		}
		if !claimed {
			slog.Debug("duplicate confirmation skipped", "event_id", key)
			return nil
		}
	}

	err := c.confirmer.ConfirmDonationLeg(ctx, event.TransactionID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrTransactionNotFound), errors.Is(err, domain.ErrDonationCanceled):
		slog.Warn("confirmation rejected", "transaction_id", event.TransactionID, "error", err)
		return nil
	}
	// временная ошибка: снимаем отметку, чтобы повтор прошел
	if c.dedup != nil {
		if rerr := c.dedup.Release(ctx, key); rerr != nil {
			slog.Error("failed to release dedup key", "event_id", key, "error", rerr)
		}
	}
	return fmt.Errorf("confirm leg %s: %w", event.TransactionID, err)
}
