package placement_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-matrix-service/internal/usecase/placement"
	"github.com/stretchr/testify/require"
)

const houseID int64 = 1

type fixture struct {
	t      *testing.T
	ctx    context.Context
	repos  domain.Repositories
	engine *placement.Engine
	clock  time.Time
	ids    int
	house  *domain.TelegramUser
}

func newFixture(t *testing.T, opts ...placement.Option) *fixture {
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		repos: memory.NewStore().Repositories(),
		clock: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	opts = append([]placement.Option{
		placement.WithClock(f.now),
		placement.WithIDGenerator(f.nextID),
	}, opts...)
	f.engine = placement.New(f.repos, opts...)

	f.house = &domain.TelegramUser{ID: "house", UserID: houseID, Username: "house", IsAdmin: true,
		TrinaryStatus: domain.StatusBrilliant, BinaryStatus: domain.StatusBrilliant}
	require.NoError(t, f.repos.Users.CreateUser(f.ctx, f.house))
	return f
}

func (f *fixture) now() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fixture) nextID() string {
	f.ids++
	return fmt.Sprintf("gen-%d", f.ids)
}

func (f *fixture) user(userID, sponsorID int64, depth int, bt domain.BuildType, status domain.Status) *domain.TelegramUser {
	u := &domain.TelegramUser{
		ID:            fmt.Sprintf("u%d", userID),
		UserID:        userID,
		Username:      fmt.Sprintf("user%d", userID),
		SponsorUserID: &sponsorID,
		Depth:         depth,
		TrinaryStatus: domain.StatusNotActive,
		BinaryStatus:  domain.StatusNotActive,
	}
	u.SetStatus(bt, status)
	require.NoError(f.t, f.repos.Users.CreateUser(f.ctx, u))
	return u
}

// matrix stores a node with the given first-level children counts per branch.
func (f *fixture) matrix(id string, ownerID int64, status domain.Status, bt domain.BuildType, branches ...branch) *domain.Matrix {
	m := &domain.Matrix{ID: id, OwnerID: ownerID, Status: status, BuildType: bt, CreatedAt: f.now()}
	for _, b := range branches {
		m.Tree = append(m.Tree, domain.Branch{NodeID: b.id, Children: b.children})
		m.DisplayTree = append(m.DisplayTree, domain.DisplayBranch{Label: b.id, Children: b.children})
		m.Members = append(m.Members, ownerID)
		for range b.children {
			m.Members = append(m.Members, ownerID)
		}
	}
	require.NoError(f.t, f.repos.Matrices.CreateMatrix(f.ctx, m))
	return m
}

type branch struct {
	id       string
	children []string
}

func br(id string, children ...string) branch {
	if children == nil {
		children = []string{}
	}
	return branch{id: id, children: children}
}

func (f *fixture) pending(matrixID string, n int) {
	for i := 0; i < n; i++ {
		require.NoError(f.t, f.repos.Donates.CreateDonate(f.ctx, &domain.Donate{
			ID:        f.nextID(),
			MatrixID:  matrixID,
			BuildType: domain.BuildTypeTrinary,
			CreatedAt: f.now(),
		}))
	}
}

func (f *fixture) get(id string) *domain.Matrix {
	m, err := f.repos.Matrices.GetMatrixByID(f.ctx, id)
	require.NoError(f.t, err)
	return m
}

func (f *fixture) safe(id string) bool {
	ok, err := f.engine.IsSafeToFillNow(f.ctx, f.get(id))
	require.NoError(f.t, err)
	return ok
}
