package notifier

import (
	"context"
	"errors"
	"log/slog"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
)

// LogNotifier только пишет уведомления в лог, для локального запуска
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(l *slog.Logger) *LogNotifier {
	if l == nil {
		l = slog.Default()
	}
	return &LogNotifier{log: l}
}

func (n *LogNotifier) Notify(ctx context.Context, note domain.Notification) error {
	n.log.InfoContext(ctx, "notification",
		"user_id", note.UserID,
		"kind", note.Kind,
		"text", note.Text,
		"actions", len(note.Actions),
	)
	return nil
}

// Multi delivers to every notifier and joins the failures.
type Multi []domain.Notifier

func (m Multi) Notify(ctx context.Context, note domain.Notification) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
