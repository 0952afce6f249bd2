package memory

import (
	"context"
	"sort"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) CreateUser(ctx context.Context, user *domain.TelegramUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.UserID]; ok {
		return domain.ErrUserExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.s.users[user.UserID] = userRow{seq: r.s.nextSeq(), user: cloneUser(user)}
	return nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*domain.TelegramUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.users {
		if row.user.ID == id {
			return cloneUser(row.user), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) GetUserByUserID(ctx context.Context, userID int64) (*domain.TelegramUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(row.user), nil
}

func (r *UserRepository) GetUserByUserIDForUpdate(ctx context.Context, userID int64) (*domain.TelegramUser, error) {
	return r.GetUserByUserID(ctx, userID)
}

func (r *UserRepository) GetAdmin(ctx context.Context) (*domain.TelegramUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var admin *userRow
	for _, row := range r.s.users {
		if !row.user.IsAdmin {
			continue
		}
		if admin == nil || row.seq < admin.seq {
			row := row
			admin = &row
		}
	}
	if admin == nil {
		return nil, domain.ErrNoHouse
	}
	return cloneUser(admin.user), nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user *domain.TelegramUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.users[user.UserID]
	if !ok {
		return domain.ErrUserNotFound
	}
	row.user = cloneUser(user)
	r.s.users[user.UserID] = row
	return nil
}

func (r *UserRepository) IncrementInvites(ctx context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	row.user.InvitesCount++
	return nil
}

func (r *UserRepository) GetInvitedUsers(ctx context.Context, sponsorUserID int64) ([]*domain.TelegramUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rows []userRow
	for _, row := range r.s.users {
		if row.user.SponsorUserID != nil && *row.user.SponsorUserID == sponsorUserID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]*domain.TelegramUser, len(rows))
	for i, row := range rows {
		out[i] = cloneUser(row.user)
	}
	return out, nil
}
