package repository

import (
	"context"
	"errors"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultDonateRepository struct {
	DB *gorm.DB
}

func NewDefaultDonateRepository(db *gorm.DB) *DefaultDonateRepository {
	return &DefaultDonateRepository{DB: db}
}

const pendingDonate = "is_confirmed = FALSE AND is_canceled = FALSE"

func (r *DefaultDonateRepository) CreateDonate(ctx context.Context, donate *domain.Donate) error {
	model := mappers.ToGORMDonate(donate)
	// транзакции создаются ассоциацией вместе с подарком
	if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	donate.CreatedAt = model.CreatedAt
	return nil
}

func (r *DefaultDonateRepository) GetDonateByID(ctx context.Context, donateID string) (*domain.Donate, error) {
	return r.first(r.DB.WithContext(ctx), donateID)
}

func (r *DefaultDonateRepository) GetDonateByIDForUpdate(ctx context.Context, donateID string) (*domain.Donate, error) {
	return r.first(r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), donateID)
}

func (r *DefaultDonateRepository) first(db *gorm.DB, donateID string) (*domain.Donate, error) {
	var model models.DonateModel
	err := db.Preload("Transactions", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).First(&model, "id = ?", donateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrDonateNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainDonate(&model), nil
}

func (r *DefaultDonateRepository) GetTransactionByID(ctx context.Context, transactionID string) (*domain.DonateTransaction, error) {
	var model models.DonateTransactionModel
	err := r.DB.WithContext(ctx).First(&model, "id = ?", transactionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainDonateTransaction(&model), nil
}

func (r *DefaultDonateRepository) ConfirmTransaction(ctx context.Context, transactionID string) error {
	res := r.DB.WithContext(ctx).Model(&models.DonateTransactionModel{}).
		Where("id = ?", transactionID).
		Update("is_confirmed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (r *DefaultDonateRepository) SetDonateConfirmed(ctx context.Context, donateID string) error {
	return r.updateDonate(ctx, donateID, "is_confirmed", true)
}

func (r *DefaultDonateRepository) updateDonate(ctx context.Context, donateID, column string, value any) error {
	res := r.DB.WithContext(ctx).Model(&models.DonateModel{}).
		Where("id = ?", donateID).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrDonateNotFound
	}
	return nil
}

func (r *DefaultDonateRepository) CountPendingDonates(ctx context.Context, matrixID string) (int, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.DonateModel{}).
		Where("matrix_id = ?", matrixID).
		Where(pendingDonate).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *DefaultDonateRepository) CountPendingByMatrixIDs(ctx context.Context, matrixIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(matrixIDs))
	if len(matrixIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		MatrixID string
		Count    int
	}
	if err := r.DB.WithContext(ctx).Model(&models.DonateModel{}).
		Select("matrix_id, COUNT(*) AS count").
		Where("matrix_id IN ?", matrixIDs).
		Where(pendingDonate).
		Group("matrix_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.MatrixID] = row.Count
	}
	return counts, nil
}

func (r *DefaultDonateRepository) find(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]*domain.Donate, error) {
	var donateModels []models.DonateModel
	if err := r.DB.WithContext(ctx).
		Scopes(scope).
		Preload("Transactions").
		Order("created_at ASC, id ASC").
		Find(&donateModels).Error; err != nil {
		return nil, err
	}
	donates := make([]*domain.Donate, 0, len(donateModels))
	for i := range donateModels {
		donates = append(donates, mappers.ToDomainDonate(&donateModels[i]))
	}
	return donates, nil
}

func (r *DefaultDonateRepository) GetPendingDonatesBySender(ctx context.Context, senderID int64, buildType domain.BuildType) ([]*domain.Donate, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("sender_id = ? AND build_type = ?", senderID, string(buildType)).Where(pendingDonate)
	})
}

func (r *DefaultDonateRepository) CancelDonate(ctx context.Context, donateID string) error {
	if err := r.updateDonate(ctx, donateID, "is_canceled", true); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(&models.DonateTransactionModel{}).
		Where("donate_id = ?", donateID).
		Update("is_canceled", true).Error
}

func (r *DefaultDonateRepository) DeleteDonate(ctx context.Context, donateID string) error {
	if err := r.DB.WithContext(ctx).Where("donate_id = ?", donateID).Delete(&models.DonateTransactionModel{}).Error; err != nil {
		return err
	}
	res := r.DB.WithContext(ctx).Delete(&models.DonateModel{}, "id = ?", donateID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrDonateNotFound
	}
	return nil
}

func (r *DefaultDonateRepository) FindExpiredDonates(ctx context.Context, createdBefore time.Time) ([]*domain.Donate, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where(pendingDonate).Where("created_at < ?", createdBefore)
	})
}

func (r *DefaultDonateRepository) GetDonatesBySender(ctx context.Context, senderID int64) ([]*domain.Donate, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("sender_id = ?", senderID)
	})
}

func (r *DefaultDonateRepository) GetTransactionsByRecipient(ctx context.Context, recipientID int64) ([]*domain.DonateTransaction, error) {
	var txModels []models.DonateTransactionModel
	if err := r.DB.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at ASC, id ASC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	txs := make([]*domain.DonateTransaction, 0, len(txModels))
	for i := range txModels {
		txs = append(txs, mappers.ToDomainDonateTransaction(&txModels[i]))
	}
	return txs, nil
}
