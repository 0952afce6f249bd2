package models

import (
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"gorm.io/datatypes"
)

type MatrixModel struct {
	ID          string                                     `gorm:"primaryKey;type:uuid"`
	OwnerID     int64                                      `gorm:"index:idx_matrix_owner_tier;not null"`
	Status      domain.Status                              `gorm:"index:idx_matrix_owner_tier;type:varchar(16);not null"`
	BuildType   domain.BuildType                           `gorm:"index:idx_matrix_owner_tier;type:varchar(8);not null"`
	Tree        datatypes.JSONType[[]domain.Branch]        `gorm:"type:jsonb;not null"`
	DisplayTree datatypes.JSONType[[]domain.DisplayBranch] `gorm:"type:jsonb;not null"`
	Members     datatypes.JSONType[[]int64]                `gorm:"type:jsonb;not null"`
	Archived    bool                                       `gorm:"default:false"`
	CreatedAt   time.Time                                  `gorm:"index"`
	UpdatedAt   time.Time
}

func (MatrixModel) TableName() string {
	return "matrices"
}
