package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
)

type MatrixRepository struct {
	s *Store
}

func (r *MatrixRepository) CreateMatrix(ctx context.Context, matrix *domain.Matrix) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.matrices[matrix.ID]; ok {
		return fmt.Errorf("matrix %s already exists", matrix.ID)
	}
	if matrix.CreatedAt.IsZero() {
		matrix.CreatedAt = time.Now()
	}
	matrix.UpdatedAt = matrix.CreatedAt
	r.s.matrices[matrix.ID] = matrixRow{seq: r.s.nextSeq(), matrix: matrix.Clone()}
	return nil
}

func (r *MatrixRepository) GetMatrixByID(ctx context.Context, matrixID string) (*domain.Matrix, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.matrices[matrixID]
	if !ok {
		return nil, domain.ErrMatrixNotFound
	}
	return row.matrix.Clone(), nil
}

// GetMatrixByIDForUpdate relies on UnitOfWork serialization instead of row locks.
func (r *MatrixRepository) GetMatrixByIDForUpdate(ctx context.Context, matrixID string) (*domain.Matrix, error) {
	return r.GetMatrixByID(ctx, matrixID)
}

func (r *MatrixRepository) GetUserMatrices(ctx context.Context, ownerID int64, status domain.Status, buildType domain.BuildType) ([]*domain.Matrix, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rows []matrixRow
	for _, row := range r.s.matrices {
		m := row.matrix
		if m.OwnerID == ownerID && m.Status == status && m.BuildType == buildType {
			rows = append(rows, row)
		}
	}
	return sortMatrices(rows), nil
}

func (r *MatrixRepository) GetMatricesByIDs(ctx context.Context, matrixIDs []string) ([]*domain.Matrix, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rows []matrixRow
	for _, id := range matrixIDs {
		if row, ok := r.s.matrices[id]; ok {
			rows = append(rows, row)
		}
	}
	return sortMatrices(rows), nil
}

func (r *MatrixRepository) GetParentMatrix(ctx context.Context, matrixID string, status domain.Status, buildType domain.BuildType) (*domain.Matrix, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rows []matrixRow
	for _, row := range r.s.matrices {
		m := row.matrix
		if m.Status != status || m.BuildType != buildType {
			continue
		}
		if _, ok := m.Branch(matrixID); ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, domain.ErrMatrixNotFound
	}
	return sortMatrices(rows)[0], nil
}

func (r *MatrixRepository) UpdateMatrix(ctx context.Context, matrix *domain.Matrix) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.matrices[matrix.ID]
	if !ok {
		return domain.ErrMatrixNotFound
	}
	matrix.UpdatedAt = time.Now()
	row.matrix = matrix.Clone()
	r.s.matrices[matrix.ID] = row
	return nil
}
