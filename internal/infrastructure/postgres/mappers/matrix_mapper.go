package mappers

import (
	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/postgres/models"
	"gorm.io/datatypes"
)

func ToDomainMatrix(model *models.MatrixModel) *domain.Matrix {
	m := &domain.Matrix{
		ID:          model.ID,
		OwnerID:     model.OwnerID,
		Status:      model.Status,
		BuildType:   model.BuildType,
		Tree:        model.Tree.Data(),
		DisplayTree: model.DisplayTree.Data(),
		Members:     model.Members.Data(),
		Archived:    model.Archived,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	// null в jsonb после ручных правок
	if m.Tree == nil {
		m.Tree = []domain.Branch{}
	}
	if m.DisplayTree == nil {
		m.DisplayTree = []domain.DisplayBranch{}
	}
	if m.Members == nil {
		m.Members = []int64{}
	}
	return m
}

func ToGORMMatrix(matrix *domain.Matrix) *models.MatrixModel {
	tree := make([]domain.Branch, len(matrix.Tree))
	for i, b := range matrix.Tree {
		tree[i] = domain.Branch{NodeID: b.NodeID, Children: b.Children}
		if tree[i].Children == nil {
			tree[i].Children = []string{}
		}
	}
	display := matrix.DisplayTree
	if display == nil {
		display = []domain.DisplayBranch{}
	}
	members := matrix.Members
	if members == nil {
		members = []int64{}
	}
	return &models.MatrixModel{
		ID:          matrix.ID,
		OwnerID:     matrix.OwnerID,
		Status:      matrix.Status,
		BuildType:   matrix.BuildType,
		Tree:        datatypes.NewJSONType(tree),
		DisplayTree: datatypes.NewJSONType(display),
		Members:     datatypes.NewJSONType(members),
		Archived:    matrix.Archived,
		CreatedAt:   matrix.CreatedAt,
		UpdatedAt:   matrix.UpdatedAt,
	}
}
