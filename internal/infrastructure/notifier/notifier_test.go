package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	chatID int64
	text   string
	opts   *gotgbot.SendMessageOpts
	err    error
}

func (s *fakeSender) SendMessage(chatId int64, text string, opts *gotgbot.SendMessageOpts) (*gotgbot.Message, error) {
	s.chatID, s.text, s.opts = chatId, text, opts
	return &gotgbot.Message{}, s.err
}

func TestTelegramNotifierBuildsKeyboard(t *testing.T) {
	sender := &fakeSender{}
	n := &TelegramNotifier{bot: sender}

	err := n.Notify(context.Background(), domain.Notification{
		UserID:  42,
		Kind:    domain.NotificationDonateRequest,
		Text:    "hello",
		Actions: []domain.Action{{Label: "Подтвердить получение", Data: "confirm_transaction_t1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), sender.chatID)
	assert.Equal(t, "hello", sender.text)
	kb, ok := sender.opts.ReplyMarkup.(gotgbot.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "confirm_transaction_t1", kb.InlineKeyboard[0][0].CallbackData)
}

func TestTelegramNotifierWithoutActions(t *testing.T) {
	sender := &fakeSender{err: errors.New("blocked by user")}
	n := &TelegramNotifier{bot: sender}

	err := n.Notify(context.Background(), domain.Notification{UserID: 1, Kind: domain.NotificationDonateExpired, Text: "x"})
	require.Error(t, err)
	assert.Nil(t, sender.opts.ReplyMarkup)
	assert.Nil(t, Keyboard(nil))
}

type countingNotifier struct {
	n   int
	err error
}

func (c *countingNotifier) Notify(ctx context.Context, note domain.Notification) error {
	c.n++
	return c.err
}

func TestMultiDeliversToAll(t *testing.T) {
	failing := &countingNotifier{err: errors.New("down")}
	ok := &countingNotifier{}
	err := Multi{failing, ok, NewLogNotifier(nil)}.Notify(context.Background(), domain.Notification{UserID: 1})
	require.Error(t, err)
	assert.Equal(t, 1, failing.n)
	assert.Equal(t, 1, ok.n)
}
