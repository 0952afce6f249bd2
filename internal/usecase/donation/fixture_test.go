package donation_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-matrix-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-matrix-service/internal/usecase/donation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const (
	houseID int64 = 1
	tri           = domain.BuildTypeTrinary
)

type fakeNotifier struct {
	mu    sync.Mutex
	notes []domain.Notification
}

func (n *fakeNotifier) Notify(ctx context.Context, note domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
	return nil
}

func (n *fakeNotifier) byKind(kind domain.NotificationKind) []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.Notification
	for _, note := range n.notes {
		if note.Kind == kind {
			out = append(out, note)
		}
	}
	return out
}

type fakeEvents struct {
	mu     sync.Mutex
	events []domain.DonationEvent
}

func (e *fakeEvents) PublishDonationEvent(ctx context.Context, event domain.DonationEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *fakeEvents) types() []domain.DonationEventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.DonationEventType, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

type expiryCall struct {
	donateID string
	senderID int64
	after    time.Duration
}

type retryCall struct {
	retry domain.PlacementRetry
	after time.Duration
}

type fakeScheduler struct {
	mu       sync.Mutex
	expiries []expiryCall
	retries  []retryCall
	err      error
}

func (s *fakeScheduler) ScheduleDonationExpiry(ctx context.Context, donateID string, senderUserID int64, after time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiries = append(s.expiries, expiryCall{donateID: donateID, senderID: senderUserID, after: after})
	return s.err
}

func (s *fakeScheduler) SchedulePlacementRetry(ctx context.Context, retry domain.PlacementRetry, after time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retries = append(s.retries, retryCall{retry: retry, after: after})
	return s.err
}

type fixture struct {
	t         *testing.T
	ctx       context.Context
	store     *memory.Store
	repos     domain.Repositories
	notifier  *fakeNotifier
	scheduler *fakeScheduler
	events    *fakeEvents
	metrics   *metrics.MatrixMetrics
	uc        *donation.DefaultDonationUsecase
	clock     time.Time
	ids       int
}

func newFixture(t *testing.T, mutate ...func(*donation.Config)) *fixture {
	store := memory.NewStore()
	f := &fixture{
		t:         t,
		ctx:       context.Background(),
		store:     store,
		repos:     store.Repositories(),
		notifier:  &fakeNotifier{},
		scheduler: &fakeScheduler{},
		events:    &fakeEvents{},
		metrics:   metrics.NewMatrixMetrics(prometheus.NewRegistry()),
		clock:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	cfg := donation.Config{
		ConfirmationWindow: 30 * time.Minute,
		FreeCheckInterval:  10 * time.Minute,
		CancelMode:         donation.CancelModeFlag,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	f.uc = donation.NewDefaultDonationUsecase(
		memory.NewUnitOfWork(store), f.repos, f.notifier, f.scheduler, f.metrics, nil, cfg,
		donation.WithClock(f.now),
		donation.WithIDGenerator(f.nextID),
		donation.WithEventPublisher(f.events),
	)
	require.NoError(t, f.repos.Users.CreateUser(f.ctx, &domain.TelegramUser{
		ID: "house", UserID: houseID, Username: "house", IsAdmin: true,
		TrinaryStatus: domain.StatusBrilliant, BinaryStatus: domain.StatusBrilliant,
	}))
	return f
}

func (f *fixture) now() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func (f *fixture) nextID() string {
	f.ids++
	return fmt.Sprintf("id-%d", f.ids)
}

func (f *fixture) user(userID, sponsorID int64, depth int, status domain.Status) *domain.TelegramUser {
	u := &domain.TelegramUser{
		ID:            fmt.Sprintf("u%d", userID),
		UserID:        userID,
		Username:      fmt.Sprintf("user%d", userID),
		SponsorUserID: &sponsorID,
		Depth:         depth,
		TrinaryStatus: domain.StatusNotActive,
		BinaryStatus:  domain.StatusNotActive,
	}
	u.SetStatus(tri, status)
	require.NoError(f.t, f.repos.Users.CreateUser(f.ctx, u))
	return u
}

func (f *fixture) getUser(userID int64) *domain.TelegramUser {
	u, err := f.repos.Users.GetUserByUserID(f.ctx, userID)
	require.NoError(f.t, err)
	return u
}

func (f *fixture) getMatrix(id string) *domain.Matrix {
	m, err := f.repos.Matrices.GetMatrixByID(f.ctx, id)
	require.NoError(f.t, err)
	return m
}

func (f *fixture) getDonate(id string) *domain.Donate {
	d, err := f.repos.Donates.GetDonateByID(f.ctx, id)
	require.NoError(f.t, err)
	return d
}

// matrix stores a trinary matrix owned by ownerID with the given first-level node ids.
func (f *fixture) matrix(id string, ownerID int64, status domain.Status, firstLevel ...string) *domain.Matrix {
	m := &domain.Matrix{ID: id, OwnerID: ownerID, Status: status, BuildType: tri, CreatedAt: f.now()}
	for _, node := range firstLevel {
		m.Tree = append(m.Tree, domain.Branch{NodeID: node, Children: []string{}})
		m.DisplayTree = append(m.DisplayTree, domain.DisplayBranch{Label: node, Children: []string{}})
		m.Members = append(m.Members, ownerID)
	}
	require.NoError(f.t, f.repos.Matrices.CreateMatrix(f.ctx, m))
	return m
}

func (f *fixture) pendingDonate(senderID int64, matrixID string) *domain.Donate {
	d := &domain.Donate{
		ID:        f.nextID(),
		SenderID:  senderID,
		MatrixID:  matrixID,
		BuildType: tri,
		Amount:    10,
		CreatedAt: f.now(),
	}
	require.NoError(f.t, f.repos.Donates.CreateDonate(f.ctx, d))
	return d
}
