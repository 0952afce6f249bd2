package postgres

import (
	"log"

	"github.com/LavaJover/shvark-matrix-service/internal/config"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.MatrixConfig) *gorm.DB {
	dsn := cfg.MatrixDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if err := db.AutoMigrate(
		&models.TelegramUserModel{},
		&models.MatrixModel{},
		&models.DonateModel{},
		&models.DonateTransactionModel{},
		&logger.PlacementRoutedEvent{},
		&logger.PlacementAttachedEvent{},
	); err != nil {
		log.Fatalf("failed to migrate db: %v\n", err.Error())
	}

	return db
}
