package userdto

import "github.com/LavaJover/shvark-matrix-service/internal/domain"

type RegisterUserOutput struct {
	User    *domain.TelegramUser
	Created bool
}

type MatrixTeamOutput struct {
	Matrix      *domain.Matrix
	FirstLevel  []int64
	SecondLevel []int64
}
