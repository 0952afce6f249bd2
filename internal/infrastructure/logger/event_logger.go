package logger

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// PlacementRoutedEvent - результат поиска стола для подарка
type PlacementRoutedEvent struct {
	ID             uint   `gorm:"primaryKey"`
	RequestID      string `gorm:"index"`
	MemberUserID   int64  `gorm:"index"`
	BuildType      string
	Status         string
	Amount         float64
	TargetMatrixID string
	DonateID       string
	Placed         bool
	House          bool
	Fallback       bool
	Hops           int
	Timestamp      time.Time
}

// PlacementAttachedEvent - участник фактически поставлен в стол
type PlacementAttachedEvent struct {
	ID           uint   `gorm:"primaryKey"`
	RequestID    string `gorm:"index"`
	DonateID     string `gorm:"index"`
	MemberUserID int64
	MatrixID     string
	NodeID       string
	Level        int
	BranchID     string
	Rerouted     bool
	Timestamp    time.Time
}

type PlacementEventLogger interface {
	LogPlacementRouted(ctx context.Context, event PlacementRoutedEvent) error
	LogPlacementAttached(ctx context.Context, event PlacementAttachedEvent) error
}

type PGPlacementEventLogger struct {
	db *gorm.DB
}

func NewPGPlacementEventLogger(db *gorm.DB) *PGPlacementEventLogger {
	return &PGPlacementEventLogger{db: db}
}

func (l *PGPlacementEventLogger) LogPlacementRouted(ctx context.Context, event PlacementRoutedEvent) error {
	return l.db.WithContext(ctx).Create(&event).Error
}

func (l *PGPlacementEventLogger) LogPlacementAttached(ctx context.Context, event PlacementAttachedEvent) error {
	return l.db.WithContext(ctx).Create(&event).Error
}
