// Package memory keeps the whole matrix state in process memory. The usecase
// and gRPC tests run against it instead of Postgres.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
)

type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	seq  int64

	matrices map[string]matrixRow
	donates  map[string]donateRow
	users    map[int64]userRow
}

type matrixRow struct {
	seq    int64
	matrix *domain.Matrix
}

type donateRow struct {
	seq    int64
	donate *domain.Donate
}

type userRow struct {
	seq  int64
	user *domain.TelegramUser
}

func NewStore() *Store {
	return &Store{
		matrices: make(map[string]matrixRow),
		donates:  make(map[string]donateRow),
		users:    make(map[int64]userRow),
	}
}

func (s *Store) Repositories() domain.Repositories {
	return domain.Repositories{
		Matrices: &MatrixRepository{s: s},
		Donates:  &DonateRepository{s: s},
		Users:    &UserRepository{s: s},
	}
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

type snapshot struct {
	seq      int64
	matrices map[string]matrixRow
	donates  map[string]donateRow
	users    map[int64]userRow
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		seq:      s.seq,
		matrices: make(map[string]matrixRow, len(s.matrices)),
		donates:  make(map[string]donateRow, len(s.donates)),
		users:    make(map[int64]userRow, len(s.users)),
	}
	for k, v := range s.matrices {
		snap.matrices[k] = matrixRow{seq: v.seq, matrix: v.matrix.Clone()}
	}
	for k, v := range s.donates {
		snap.donates[k] = donateRow{seq: v.seq, donate: cloneDonate(v.donate)}
	}
	for k, v := range s.users {
		snap.users[k] = userRow{seq: v.seq, user: cloneUser(v.user)}
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = snap.seq
	s.matrices = snap.matrices
	s.donates = snap.donates
	s.users = snap.users
}

// UnitOfWork serializes units of work and rolls the store back when fn fails.
type UnitOfWork struct {
	s *Store
}

func NewUnitOfWork(s *Store) *UnitOfWork {
	return &UnitOfWork{s: s}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	u.s.txMu.Lock()
	defer u.s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snap := u.s.snapshot()
	if err := fn(ctx, u.s.Repositories()); err != nil {
		u.s.restore(snap)
		return err
	}
	return nil
}

func sortMatrices(rows []matrixRow) []*domain.Matrix {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.matrix.CreatedAt.Equal(b.matrix.CreatedAt) {
			return a.matrix.CreatedAt.Before(b.matrix.CreatedAt)
		}
		return a.seq < b.seq
	})
	out := make([]*domain.Matrix, len(rows))
	for i, r := range rows {
		out[i] = r.matrix.Clone()
	}
	return out
}

func cloneDonate(d *domain.Donate) *domain.Donate {
	if d == nil {
		return nil
	}
	c := *d
	c.Transactions = make([]*domain.DonateTransaction, len(d.Transactions))
	for i, tx := range d.Transactions {
		t := *tx
		c.Transactions[i] = &t
	}
	return &c
}

func cloneUser(u *domain.TelegramUser) *domain.TelegramUser {
	if u == nil {
		return nil
	}
	c := *u
	if u.SponsorUserID != nil {
		id := *u.SponsorUserID
		c.SponsorUserID = &id
	}
	return &c
}
