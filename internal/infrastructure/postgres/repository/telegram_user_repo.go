package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultUserRepository struct {
	DB *gorm.DB
}

func NewDefaultUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{DB: db}
}

func (r *DefaultUserRepository) CreateUser(ctx context.Context, user *domain.TelegramUser) error {
	model := mappers.ToGORMTelegramUser(user)
	if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserExists
		}
		return err
	}
	user.CreatedAt = model.CreatedAt
	return nil
}

func (r *DefaultUserRepository) first(db *gorm.DB, query string, arg any) (*domain.TelegramUser, error) {
	var model models.TelegramUserModel
	err := db.First(&model, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainTelegramUser(&model), nil
}

func (r *DefaultUserRepository) GetUserByID(ctx context.Context, id string) (*domain.TelegramUser, error) {
	return r.first(r.DB.WithContext(ctx), "id = ?", id)
}

func (r *DefaultUserRepository) GetUserByUserID(ctx context.Context, userID int64) (*domain.TelegramUser, error) {
	return r.first(r.DB.WithContext(ctx), "user_id = ?", userID)
}

func (r *DefaultUserRepository) GetUserByUserIDForUpdate(ctx context.Context, userID int64) (*domain.TelegramUser, error) {
	return r.first(r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "user_id = ?", userID)
}

// GetAdmin returns the oldest admin account, the house.
func (r *DefaultUserRepository) GetAdmin(ctx context.Context) (*domain.TelegramUser, error) {
	var model models.TelegramUserModel
	err := r.DB.WithContext(ctx).
		Where("is_admin = ?", true).
		Order("created_at ASC, id ASC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoHouse
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainTelegramUser(&model), nil
}

func (r *DefaultUserRepository) UpdateUser(ctx context.Context, user *domain.TelegramUser) error {
	model := mappers.ToGORMTelegramUser(user)
	res := r.DB.WithContext(ctx).Model(&models.TelegramUserModel{}).
		Where("user_id = ?", user.UserID).
		Updates(map[string]any{
			"username":       model.Username,
			"first_name":     model.FirstName,
			"invites_count":  model.InvitesCount,
			"trinary_status": model.TrinaryStatus,
			"binary_status":  model.BinaryStatus,
			"trinary_bill":   model.TrinaryBill,
			"binary_bill":    model.BinaryBill,
			"is_banned":      model.IsBanned,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *DefaultUserRepository) IncrementInvites(ctx context.Context, userID int64) error {
	res := r.DB.WithContext(ctx).Model(&models.TelegramUserModel{}).
		Where("user_id = ?", userID).
		Update("invites_count", gorm.Expr("invites_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *DefaultUserRepository) GetInvitedUsers(ctx context.Context, sponsorUserID int64) ([]*domain.TelegramUser, error) {
	var userModels []models.TelegramUserModel
	if err := r.DB.WithContext(ctx).
		Where("sponsor_user_id = ?", sponsorUserID).
		Order("created_at ASC, id ASC").
		Find(&userModels).Error; err != nil {
		return nil, err
	}
	users := make([]*domain.TelegramUser, 0, len(userModels))
	for i := range userModels {
		users = append(users, mappers.ToDomainTelegramUser(&userModels[i]))
	}
	return users, nil
}
