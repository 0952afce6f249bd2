package repository

import (
	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"gorm.io/gorm"
)

// NewRepositories binds all repositories to db, a plain handle or an open transaction.
func NewRepositories(db *gorm.DB) domain.Repositories {
	return domain.Repositories{
		Matrices: NewDefaultMatrixRepository(db),
		Donates:  NewDefaultDonateRepository(db),
		Users:    NewDefaultUserRepository(db),
	}
}
