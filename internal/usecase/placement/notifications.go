package placement

import (
	"fmt"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
)

func viewMatrixAction(m *domain.Matrix) domain.Action {
	return domain.Action{Label: "Посмотреть стол", Data: "detail_matrix_" + m.ID}
}

func tableName(m *domain.Matrix) string {
	return fmt.Sprintf("%s %s", m.Status, m.BuildType)
}

func firstLevelGrowth(m *domain.Matrix) domain.Notification {
	return domain.Notification{
		UserID:  m.OwnerID,
		Kind:    domain.NotificationFirstLevelGrowth,
		Text:    fmt.Sprintf("На Ваш %s стол добавился агент, Вы на шаг ближе к подаркам", tableName(m)),
		Actions: []domain.Action{viewMatrixAction(m)},
	}
}

func matrixClosed(m *domain.Matrix) domain.Notification {
	return domain.Notification{
		UserID:  m.OwnerID,
		Kind:    domain.NotificationMatrixClosed,
		Text:    fmt.Sprintf("Ваш %s стол заполнен и закрыт", tableName(m)),
		Actions: []domain.Action{viewMatrixAction(m)},
	}
}
