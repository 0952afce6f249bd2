package models

import "time"

type TelegramUserModel struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	UserID        int64  `gorm:"uniqueIndex;not null"`
	Username      string
	FirstName     string
	SponsorUserID *int64 `gorm:"index"`
	InvitesCount  int    `gorm:"default:0"`
	Depth         int    `gorm:"default:0"`
	TrinaryStatus string `gorm:"type:varchar(16);default:'NOT_ACTIVE'"`
	BinaryStatus  string `gorm:"type:varchar(16);default:'NOT_ACTIVE'"`
	TrinaryBill   float64
	BinaryBill    float64
	IsAdmin       bool `gorm:"default:false;index"`
	IsBanned      bool `gorm:"default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (TelegramUserModel) TableName() string {
	return "telegram_users"
}
