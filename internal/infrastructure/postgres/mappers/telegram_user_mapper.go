package mappers

import (
	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/postgres/models"
)

func ToDomainTelegramUser(model *models.TelegramUserModel) *domain.TelegramUser {
	return &domain.TelegramUser{
		ID:            model.ID,
		UserID:        model.UserID,
		Username:      model.Username,
		FirstName:     model.FirstName,
		SponsorUserID: model.SponsorUserID,
		InvitesCount:  model.InvitesCount,
		Depth:         model.Depth,
		TrinaryStatus: domain.Status(model.TrinaryStatus),
		BinaryStatus:  domain.Status(model.BinaryStatus),
		TrinaryBill:   model.TrinaryBill,
		BinaryBill:    model.BinaryBill,
		IsAdmin:       model.IsAdmin,
		IsBanned:      model.IsBanned,
		CreatedAt:     model.CreatedAt,
	}
}

func ToGORMTelegramUser(user *domain.TelegramUser) *models.TelegramUserModel {
	trinary, binary := user.TrinaryStatus, user.BinaryStatus
	if trinary == "" {
		trinary = domain.StatusNotActive
	}
	if binary == "" {
		binary = domain.StatusNotActive
	}
	return &models.TelegramUserModel{
		ID:            user.ID,
		UserID:        user.UserID,
		Username:      user.Username,
		FirstName:     user.FirstName,
		SponsorUserID: user.SponsorUserID,
		InvitesCount:  user.InvitesCount,
		Depth:         user.Depth,
		TrinaryStatus: string(trinary),
		BinaryStatus:  string(binary),
		TrinaryBill:   user.TrinaryBill,
		BinaryBill:    user.BinaryBill,
		IsAdmin:       user.IsAdmin,
		IsBanned:      user.IsBanned,
		CreatedAt:     user.CreatedAt,
	}
}
