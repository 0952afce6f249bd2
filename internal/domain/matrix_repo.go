package domain

import "context"

type MatrixRepository interface {
	CreateMatrix(ctx context.Context, matrix *Matrix) error
	GetMatrixByID(ctx context.Context, matrixID string) (*Matrix, error)
	// GetMatrixByIDForUpdate locks the row until the surrounding unit of work ends.
	GetMatrixByIDForUpdate(ctx context.Context, matrixID string) (*Matrix, error)
	// GetUserMatrices returns matrices ordered by creation time, oldest first.
	GetUserMatrices(ctx context.Context, ownerID int64, status Status, buildType BuildType) ([]*Matrix, error)
	GetMatricesByIDs(ctx context.Context, matrixIDs []string) ([]*Matrix, error)
	// GetParentMatrix returns the oldest matrix of the same tier holding matrixID
	// on its first level, ErrMatrixNotFound when there is none.
	GetParentMatrix(ctx context.Context, matrixID string, status Status, buildType BuildType) (*Matrix, error)
	UpdateMatrix(ctx context.Context, matrix *Matrix) error
}
