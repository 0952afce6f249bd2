package postgres

import (
	"context"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/postgres/repository"
	"gorm.io/gorm"
)

// UnitOfWork opens one database transaction per Do call. Row locks taken by
// the ForUpdate reads are held until it commits.
type UnitOfWork struct {
	DB *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{DB: db}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	return u.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, repository.NewRepositories(tx))
	})
}
