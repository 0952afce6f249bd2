package notifier

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/PaulSonOfLars/gotgbot/v2"
)

type messageSender interface {
	SendMessage(chatId int64, text string, opts *gotgbot.SendMessageOpts) (*gotgbot.Message, error)
}

// TelegramNotifier sends notifications straight to the user's private chat.
type TelegramNotifier struct {
	bot messageSender
}

func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	bot, err := gotgbot.NewBot(token, nil)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, note domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts := &gotgbot.SendMessageOpts{
		LinkPreviewOptions: &gotgbot.LinkPreviewOptions{IsDisabled: true},
	}
	if kb := Keyboard(note.Actions); kb != nil {
		opts.ReplyMarkup = *kb
	}
	if _, err := n.bot.SendMessage(note.UserID, note.Text, opts); err != nil {
		return fmt.Errorf("send %s to %d: %w", note.Kind, note.UserID, err)
	}
	return nil
}

// Keyboard puts every action on its own row.
func Keyboard(actions []domain.Action) *gotgbot.InlineKeyboardMarkup {
	if len(actions) == 0 {
		return nil
	}
	rows := make([][]gotgbot.InlineKeyboardButton, 0, len(actions))
	for _, a := range actions {
		rows = append(rows, []gotgbot.InlineKeyboardButton{{Text: a.Label, CallbackData: a.Data}})
	}
	return &gotgbot.InlineKeyboardMarkup{InlineKeyboard: rows}
}
