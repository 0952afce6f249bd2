package domain

import "context"

type UserRepository interface {
	CreateUser(ctx context.Context, user *TelegramUser) error
	GetUserByID(ctx context.Context, id string) (*TelegramUser, error)
	GetUserByUserID(ctx context.Context, userID int64) (*TelegramUser, error)
	GetUserByUserIDForUpdate(ctx context.Context, userID int64) (*TelegramUser, error)
	GetAdmin(ctx context.Context) (*TelegramUser, error)
	UpdateUser(ctx context.Context, user *TelegramUser) error
	IncrementInvites(ctx context.Context, userID int64) error
	GetInvitedUsers(ctx context.Context, sponsorUserID int64) ([]*TelegramUser, error)
}
