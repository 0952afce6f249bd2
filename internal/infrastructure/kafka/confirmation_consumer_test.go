package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDedup struct {
	keys map[string]bool
}

func (d *memDedup) Claim(ctx context.Context, key string) (bool, error) {
	if d.keys[key] {
		return false, nil
	}
	d.keys[key] = true
	return true, nil
}

func (d *memDedup) Release(ctx context.Context, key string) error {
	delete(d.keys, key)
	return nil
}

type recordingConfirmer struct {
	calls []string
	err   error
}

func (c *recordingConfirmer) ConfirmDonationLeg(ctx context.Context, transactionID string) error {
	c.calls = append(c.calls, transactionID)
	return c.err
}

type chanSubscriber struct {
	ch chan domain.Message
}

func (s *chanSubscriber) Subscribe(ctx context.Context, topic, groupID string) (<-chan domain.Message, error) {
	return s.ch, nil
}

func message(t *testing.T, eventID, txID string) domain.Message {
	body, err := json.Marshal(kafka.ConfirmationEvent{EventID: eventID, TransactionID: txID})
	require.NoError(t, err)
	return domain.Message{Key: []byte(txID), Value: body}
}

func TestConfirmationConsumerDeduplicates(t *testing.T) {
	ctx := context.Background()
	dedup := &memDedup{keys: map[string]bool{}}
	confirmer := &recordingConfirmer{}
	c := kafka.NewConfirmationConsumer(nil, confirmer, dedup, "confirmations", "matrix")

	require.NoError(t, c.Handle(ctx, message(t, "e1", "tx1")))
	require.NoError(t, c.Handle(ctx, message(t, "e1", "tx1")))
	require.NoError(t, c.Handle(ctx, message(t, "", "tx2")))
	require.NoError(t, c.Handle(ctx, message(t, "", "tx2")))

	assert.Equal(t, []string{"tx1", "tx2"}, confirmer.calls)
}

func TestConfirmationConsumerDropsBadMessages(t *testing.T) {
	ctx := context.Background()
	confirmer := &recordingConfirmer{}
	c := kafka.NewConfirmationConsumer(nil, confirmer, nil, "confirmations", "matrix")

	require.NoError(t, c.Handle(ctx, domain.Message{Value: []byte("{not json")}))
	require.NoError(t, c.Handle(ctx, message(t, "e1", "")))
	assert.Empty(t, confirmer.calls)
}

func TestConfirmationConsumerReleasesOnTransientError(t *testing.T) {
	ctx := context.Background()
	dedup := &memDedup{keys: map[string]bool{}}
	confirmer := &recordingConfirmer{err: errors.New("db gone")}
	c := kafka.NewConfirmationConsumer(nil, confirmer, dedup, "confirmations", "matrix")

	require.Error(t, c.Handle(ctx, message(t, "e1", "tx1")))
	assert.Empty(t, dedup.keys)

	confirmer.err = domain.ErrDonationCanceled
	require.NoError(t, c.Handle(ctx, message(t, "e1", "tx1")))
	assert.True(t, dedup.keys["e1"], "permanent rejections stay claimed")
	assert.Len(t, confirmer.calls, 2)
}

func TestConfirmationConsumerRunStopsWhenChannelCloses(t *testing.T) {
	sub := &chanSubscriber{ch: make(chan domain.Message, 2)}
	confirmer := &recordingConfirmer{}
	c := kafka.NewConfirmationConsumer(sub, confirmer, nil, "confirmations", "matrix")

	sub.ch <- message(t, "e1", "tx1")
	close(sub.ch)

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, []string{"tx1"}, confirmer.calls)
}
