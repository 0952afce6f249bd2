package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
)

// NotificationEvent - сообщение для бота, он сам рисует текст и кнопки
type NotificationEvent struct {
	domain.Notification
	SentAt time.Time `json:"sent_at"`
}

// ConfirmationEvent приходит от бота, когда получатель нажал "Подтвердить получение"
type ConfirmationEvent struct {
	EventID       string `json:"event_id"`
	TransactionID string `json:"transaction_id"`
}

type EventPublisher struct {
	publisher *DefaultKafkaPublisher
	topic     string
}

func NewEventPublisher(publisher *DefaultKafkaPublisher, topic string) *EventPublisher {
	return &EventPublisher{publisher: publisher, topic: topic}
}

const (
	eventPublishBatch   = 1
	eventPublishRetries = 3
)

// PublishDonationEvent keys by user so one member's events stay ordered.
func (p *EventPublisher) PublishDonationEvent(ctx context.Context, event domain.DonationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal donation event: %w", err)
	}
	msg := domain.Message{Key: []byte(strconv.FormatInt(event.UserID, 10)), Value: body}
	return p.publisher.PublishWithRetry(ctx, p.topic, []domain.Message{msg}, eventPublishBatch, eventPublishRetries)
}

// KafkaNotifier hands notifications to the bot service through a topic.
type KafkaNotifier struct {
	publisher *DefaultKafkaPublisher
	topic     string
	now       func() time.Time
}

func NewKafkaNotifier(publisher *DefaultKafkaPublisher, topic string) *KafkaNotifier {
	return &KafkaNotifier{publisher: publisher, topic: topic, now: time.Now}
}

func (n *KafkaNotifier) Notify(ctx context.Context, note domain.Notification) error {
	return n.publisher.PublishJSON(ctx, n.topic, note.UserID, NotificationEvent{Notification: note, SentAt: n.now()})
}
