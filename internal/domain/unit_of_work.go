package domain

import "context"

type Repositories struct {
	Matrices MatrixRepository
	Donates  DonateRepository
	Users    UserRepository
}

// UnitOfWork runs fn inside one transaction. Any error returned by fn rolls
// every write back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
