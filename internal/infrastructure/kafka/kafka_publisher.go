package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type DefaultKafkaPublisher struct {
	writer *kafka.Writer
}

func NewDefaultKafkaPublisher(brokers []string) *DefaultKafkaPublisher {
	return &DefaultKafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (k *DefaultKafkaPublisher) Publish(ctx context.Context, topic string, msgs ...domain.Message) error {
	km := make([]kafka.Message, 0, len(msgs))
	now := time.Now()
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Key:   m.Key,
			Value: m.Value,
			Time:  now,
			Topic: topic,
		})
	}
	return k.writer.WriteMessages(ctx, km...)
}

// PublishJSON кладет v одним сообщением с ключом по пользователю
func (k *DefaultKafkaPublisher) PublishJSON(ctx context.Context, topic string, userID int64, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return k.Publish(ctx, topic, domain.Message{Key: []byte(strconv.FormatInt(userID, 10)), Value: body})
}

// PublishWithRetry splits msgs into batches and retries every batch up to
// maxRetries times with a linear backoff.
func (k *DefaultKafkaPublisher) PublishWithRetry(ctx context.Context, topic string, msgs []domain.Message, batchSize, maxRetries int) error {
	if len(msgs) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}

	published := 0
	var lastErr error
	for i := 0; i < len(msgs); i += batchSize {
		end := min(i+batchSize, len(msgs))
		batch := msgs[i:end]

		var err error
		for attempt := 1; attempt <= maxRetries; attempt++ {
			if err = k.Publish(ctx, topic, batch...); err == nil {
				published += len(batch)
				break
			}
			slog.Warn("kafka batch publish failed", "topic", topic, "attempt", attempt, "error", err)
			if attempt < maxRetries {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Duration(attempt) * time.Second):
				}
			}
		}
		if err != nil {
			lastErr = fmt.Errorf("batch %d-%d failed after %d attempts: %w", i, end, maxRetries, err)
		}
	}
	if lastErr != nil {
		return fmt.Errorf("published %d/%d messages: %w", published, len(msgs), lastErr)
	}
	return nil
}

func (k *DefaultKafkaPublisher) Close() error {
	return k.writer.Close()
}
