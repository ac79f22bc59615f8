package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/friendship-service/internal/domain"
	"github.com/spec-kit/friendship-service/internal/events"
	"github.com/spec-kit/friendship-service/internal/observability"
	"github.com/spec-kit/friendship-service/internal/ratelimit"
	"github.com/spec-kit/friendship-service/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	accounts   repository.AccountRepository
	requests   repository.FriendRequestRepository
	clock      *fakeClock
	dispatcher *recordingDispatcher
	metrics    *observability.Metrics
	friendship *FriendshipService
	queries    *QueryService
}

func newHarness(t *testing.T, policy ratelimit.Policy) *harness {
	t.Helper()
	accounts := repository.NewMemoryAccountRepository()
	requests := repository.NewMemoryFriendRequestRepository(accounts)
	clock := newFakeClock()
	dispatcher := &recordingDispatcher{}
	metrics := observability.NewMetrics()

	h := &harness{
		accounts:   accounts,
		requests:   requests,
		clock:      clock,
		dispatcher: dispatcher,
		metrics:    metrics,
	}
	h.friendship = NewFriendshipService(FriendshipDependencies{
		AccountRepo:       accounts,
		FriendRequestRepo: requests,
		Limiter:           ratelimit.NewMemoryLimiter(policy),
		Dispatcher:        dispatcher,
		Metrics:           metrics,
		Logger:            zap.NewNop(),
		Clock:             clock.Now,
	})
	h.queries = NewQueryService(QueryDependencies{
		AccountRepo:       accounts,
		FriendRequestRepo: requests,
		PageSize:          3,
	})
	return h
}

func (h *harness) seed(t *testing.T, id, name, email string) domain.Account {
	t.Helper()
	acc := &domain.Account{ID: id, Name: name, Email: email}
	require.NoError(t, h.accounts.Create(context.Background(), acc))
	return *acc
}

func ids(accounts []domain.Account) []string {
	out := make([]string, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.ID)
	}
	return out
}

// mockFriendRequestRepo lets tests inject store failures.
type mockFriendRequestRepo struct {
	mock.Mock
}

func (m *mockFriendRequestRepo) FindByPair(ctx context.Context, senderID, recipientID string) (*domain.FriendRequest, error) {
	args := m.Called(ctx, senderID, recipientID)
	req, _ := args.Get(0).(*domain.FriendRequest)
	return req, args.Error(1)
}

func (m *mockFriendRequestRepo) FindPending(ctx context.Context, senderID, recipientID string) (*domain.FriendRequest, error) {
	args := m.Called(ctx, senderID, recipientID)
	req, _ := args.Get(0).(*domain.FriendRequest)
	return req, args.Error(1)
}

func (m *mockFriendRequestRepo) Create(ctx context.Context, req *domain.FriendRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockFriendRequestRepo) Transition(ctx context.Context, id string, to domain.FriendRequestStatus) (*domain.FriendRequest, error) {
	args := m.Called(ctx, id, to)
	req, _ := args.Get(0).(*domain.FriendRequest)
	return req, args.Error(1)
}

func (m *mockFriendRequestRepo) FriendsOf(ctx context.Context, accountID string) ([]domain.Account, error) {
	args := m.Called(ctx, accountID)
	accounts, _ := args.Get(0).([]domain.Account)
	return accounts, args.Error(1)
}

func (m *mockFriendRequestRepo) PendingRequestsFor(ctx context.Context, accountID string) ([]domain.Account, error) {
	args := m.Called(ctx, accountID)
	accounts, _ := args.Get(0).([]domain.Account)
	return accounts, args.Error(1)
}
