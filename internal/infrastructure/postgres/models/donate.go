package models

import "time"

type DonateModel struct {
	ID           string                   `gorm:"primaryKey;type:uuid"`
	SenderID     int64                    `gorm:"index:idx_donate_sender;not null"`
	MatrixID     string                   `gorm:"type:uuid;index;not null"`
	BuildType    string                   `gorm:"index:idx_donate_sender;type:varchar(8);not null"`
	Amount       float64                  `gorm:"not null"`
	IsConfirmed  bool                     `gorm:"default:false;index:idx_donate_pending"`
	IsCanceled   bool                     `gorm:"default:false;index:idx_donate_pending"`
	CreatedAt    time.Time                `gorm:"index:idx_donate_pending"`
	Transactions []DonateTransactionModel `gorm:"foreignKey:DonateID;references:ID;constraint:OnDelete:CASCADE"`
}

func (DonateModel) TableName() string {
	return "donates"
}

type DonateTransactionModel struct {
	ID          string  `gorm:"primaryKey;type:uuid"`
	DonateID    string  `gorm:"type:uuid;index;not null"`
	RecipientID int64   `gorm:"index;not null"`
	Amount      float64 `gorm:"not null"`
	IsConfirmed bool    `gorm:"default:false"`
	IsCanceled  bool    `gorm:"default:false"`
	CreatedAt   time.Time
}

func (DonateTransactionModel) TableName() string {
	return "donate_transactions"
}
