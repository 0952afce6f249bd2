package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultMatrixRepository struct {
	DB *gorm.DB
}

func NewDefaultMatrixRepository(db *gorm.DB) *DefaultMatrixRepository {
	return &DefaultMatrixRepository{DB: db}
}

func (r *DefaultMatrixRepository) CreateMatrix(ctx context.Context, matrix *domain.Matrix) error {
	model := mappers.ToGORMMatrix(matrix)
	if err := r.DB.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	matrix.CreatedAt = model.CreatedAt
	matrix.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *DefaultMatrixRepository) GetMatrixByID(ctx context.Context, matrixID string) (*domain.Matrix, error) {
	return r.first(r.DB.WithContext(ctx), matrixID)
}

func (r *DefaultMatrixRepository) GetMatrixByIDForUpdate(ctx context.Context, matrixID string) (*domain.Matrix, error) {
	return r.first(r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), matrixID)
}

func (r *DefaultMatrixRepository) first(db *gorm.DB, matrixID string) (*domain.Matrix, error) {
	var model models.MatrixModel
	if err := db.First(&model, "id = ?", matrixID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMatrixNotFound
		}
		return nil, err
	}
	return mappers.ToDomainMatrix(&model), nil
}

func (r *DefaultMatrixRepository) GetUserMatrices(ctx context.Context, ownerID int64, status domain.Status, buildType domain.BuildType) ([]*domain.Matrix, error) {
	var matrixModels []models.MatrixModel
	if err := r.DB.WithContext(ctx).
		Where("owner_id = ? AND status = ? AND build_type = ?", ownerID, status, buildType).
		Order("created_at ASC, id ASC").
		Find(&matrixModels).Error; err != nil {
		return nil, err
	}
	return toDomainMatrices(matrixModels), nil
}

func (r *DefaultMatrixRepository) GetMatricesByIDs(ctx context.Context, matrixIDs []string) ([]*domain.Matrix, error) {
	if len(matrixIDs) == 0 {
		return nil, nil
	}
	var matrixModels []models.MatrixModel
	if err := r.DB.WithContext(ctx).
		Where("id IN ?", matrixIDs).
		Order("created_at ASC, id ASC").
		Find(&matrixModels).Error; err != nil {
		return nil, err
	}
	return toDomainMatrices(matrixModels), nil
}

// GetParentMatrix ищет стол, у которого matrixID стоит на первом уровне
func (r *DefaultMatrixRepository) GetParentMatrix(ctx context.Context, matrixID string, status domain.Status, buildType domain.BuildType) (*domain.Matrix, error) {
	// @> сравнивает только node_id, children в пробе нет
	probe, err := json.Marshal([]map[string]string{{"node_id": matrixID}})
	if err != nil {
		return nil, err
	}

	var model models.MatrixModel
	err = r.DB.WithContext(ctx).
		Where("status = ? AND build_type = ?", status, buildType).
		Where("tree @> ?::jsonb", string(probe)).
		Order("created_at ASC, id ASC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMatrixNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainMatrix(&model), nil
}

func (r *DefaultMatrixRepository) UpdateMatrix(ctx context.Context, matrix *domain.Matrix) error {
	model := mappers.ToGORMMatrix(matrix)
	res := r.DB.WithContext(ctx).Model(&models.MatrixModel{ID: matrix.ID}).Updates(map[string]any{
		"tree":         model.Tree,
		"display_tree": model.DisplayTree,
		"members":      model.Members,
		"archived":     model.Archived,
		"updated_at":   gorm.Expr("NOW()"),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrMatrixNotFound
	}
	return nil
}

func toDomainMatrices(matrixModels []models.MatrixModel) []*domain.Matrix {
	matrices := make([]*domain.Matrix, 0, len(matrixModels))
	for i := range matrixModels {
		matrices = append(matrices, mappers.ToDomainMatrix(&matrixModels[i]))
	}
	return matrices
}
