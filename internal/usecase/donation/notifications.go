package donation

import (
	"fmt"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
)

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f$", v)
}

func placementDeferred(userID int64, bt domain.BuildType, interval time.Duration) domain.Notification {
	return domain.Notification{
		UserID: userID,
		Kind:   domain.NotificationPlacementDeferred,
		Text: fmt.Sprintf("Все подходящие %s столы сейчас заняты. Мы проверим снова через %s и сообщим, когда место освободится",
			bt, interval.Round(time.Minute)),
	}
}

func donateRequest(sender *domain.TelegramUser, d *domain.Donate, tx *domain.DonateTransaction) domain.Notification {
	return domain.Notification{
		UserID: tx.RecipientID,
		Kind:   domain.NotificationDonateRequest,
		Text: fmt.Sprintf("%s отправляет Вам подарок %s (%s стол). Подтвердите получение, когда средства поступят",
			sender.DisplayName(), formatAmount(tx.Amount), d.BuildType),
		Actions: []domain.Action{
			{Label: "Подтвердить получение", Data: "confirm_transaction_" + tx.ID},
		},
	}
}

func donateCreated(userID int64, d *domain.Donate, window time.Duration, fromRetry bool) domain.Notification {
	kind := domain.NotificationDonateCreated
	text := fmt.Sprintf("Подарок %s создан. Получатели должны подтвердить его в течение %s", formatAmount(d.Amount), window.Round(time.Minute))
	if fromRetry {
		kind = domain.NotificationPlacementReady
		text = "Место освободилось! " + text
	}
	return domain.Notification{UserID: userID, Kind: kind, Text: text}
}

func legConfirmed(senderID int64, tx *domain.DonateTransaction) domain.Notification {
	return domain.Notification{
		UserID: senderID,
		Kind:   domain.NotificationLegConfirmed,
		Text:   fmt.Sprintf("Получатель подтвердил подарок %s", formatAmount(tx.Amount)),
	}
}

func donateConfirmed(senderID int64, d *domain.Donate, status domain.Status, target *domain.Matrix) domain.Notification {
	return domain.Notification{
		UserID: senderID,
		Kind:   domain.NotificationDonateConfirmed,
		Text:   fmt.Sprintf("Подарок подтвержден. Ваш статус в %s структуре: %s", d.BuildType, status),
		Actions: []domain.Action{
			{Label: "Посмотреть стол", Data: "detail_matrix_" + target.ID},
		},
	}
}

func donateExpired(userID int64, d *domain.Donate) domain.Notification {
	return domain.Notification{
		UserID: userID,
		Kind:   domain.NotificationDonateExpired,
		Text:   fmt.Sprintf("Время подтверждения подарка %s истекло, подарок отменен", formatAmount(d.Amount)),
	}
}
