package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/friendship-service/internal/domain"
)

func seedAccounts(t *testing.T, repo AccountRepository, names ...string) []domain.Account {
	t.Helper()
	out := make([]domain.Account, 0, len(names))
	for _, name := range names {
		acc := &domain.Account{Name: name, Email: name + "@example.com"}
		require.NoError(t, repo.Create(context.Background(), acc))
		out = append(out, *acc)
	}
	return out
}

func TestMemoryFriendRequestRepository_CreateRejectsDuplicatePair(t *testing.T) {
	ctx := context.Background()
	accounts := NewMemoryAccountRepository()
	users := seedAccounts(t, accounts, "alice", "bob")
	repo := NewMemoryFriendRequestRepository(accounts)

	first := &domain.FriendRequest{SenderID: users[0].ID, RecipientID: users[1].ID}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, domain.FriendRequestStatusPending, first.Status)

	err := repo.Create(ctx, &domain.FriendRequest{SenderID: users[0].ID, RecipientID: users[1].ID})
	require.ErrorIs(t, err, ErrDuplicate)

	// the reverse direction is a distinct ordered pair
	require.NoError(t, repo.Create(ctx, &domain.FriendRequest{SenderID: users[1].ID, RecipientID: users[0].ID}))
}

func TestMemoryFriendRequestRepository_CreateRejectsSelf(t *testing.T) {
	accounts := NewMemoryAccountRepository()
	users := seedAccounts(t, accounts, "alice")
	repo := NewMemoryFriendRequestRepository(accounts)

	err := repo.Create(context.Background(), &domain.FriendRequest{SenderID: users[0].ID, RecipientID: users[0].ID})
	require.ErrorIs(t, err, domain.ErrSelfRequest)
}

func TestMemoryFriendRequestRepository_DuplicateStaysAfterTerminal(t *testing.T) {
	ctx := context.Background()
	accounts := NewMemoryAccountRepository()
	users := seedAccounts(t, accounts, "alice", "bob")
	repo := NewMemoryFriendRequestRepository(accounts)

	req := &domain.FriendRequest{SenderID: users[0].ID, RecipientID: users[1].ID}
	require.NoError(t, repo.Create(ctx, req))
	_, err := repo.Transition(ctx, req.ID, domain.FriendRequestStatusRejected)
	require.NoError(t, err)

	err = repo.Create(ctx, &domain.FriendRequest{SenderID: users[0].ID, RecipientID: users[1].ID})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryFriendRequestRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	accounts := NewMemoryAccountRepository()
	users := seedAccounts(t, accounts, "alice", "bob")
	repo := NewMemoryFriendRequestRepository(accounts)

	const workers = 64
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := repo.Create(ctx, &domain.FriendRequest{SenderID: users[0].ID, RecipientID: users[1].ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrDuplicate):
				duplicates++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, duplicates)
}

func TestMemoryFriendRequestRepository_Transition(t *testing.T) {
	ctx := context.Background()
	accounts := NewMemoryAccountRepository()
	users := seedAccounts(t, accounts, "alice", "bob")
	repo := NewMemoryFriendRequestRepository(accounts)

	req := &domain.FriendRequest{SenderID: users[0].ID, RecipientID: users[1].ID}
	require.NoError(t, repo.Create(ctx, req))

	_, err := repo.Transition(ctx, req.ID, domain.FriendRequestStatusPending)
	require.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := repo.Transition(ctx, req.ID, domain.FriendRequestStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendRequestStatusAccepted, updated.Status)
	assert.Equal(t, req.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	_, err = repo.Transition(ctx, req.ID, domain.FriendRequestStatusRejected)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = repo.FindPending(ctx, users[0].ID, users[1].ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Transition(ctx, "missing", domain.FriendRequestStatusAccepted)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryFriendRequestRepository_ConcurrentTransition(t *testing.T) {
	ctx := context.Background()
	accounts := NewMemoryAccountRepository()
	users := seedAccounts(t, accounts, "alice", "bob")
	repo := NewMemoryFriendRequestRepository(accounts)

	req := &domain.FriendRequest{SenderID: users[0].ID, RecipientID: users[1].ID}
	require.NoError(t, repo.Create(ctx, req))

	const workers = 32
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		to := domain.FriendRequestStatusAccepted
		if i%2 == 1 {
			to = domain.FriendRequestStatusRejected
		}
		go func() {
			defer wg.Done()
			if _, err := repo.Transition(ctx, req.ID, to); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestMemoryFriendRequestRepository_FriendsOfDerivation(t *testing.T) {
	ctx := context.Background()
	accounts := NewMemoryAccountRepository()
	users := seedAccounts(t, accounts, "alice", "bob", "carol", "dave")
	alice, bob, carol, dave := users[0], users[1], users[2], users[3]
	repo := NewMemoryFriendRequestRepository(accounts)

	accept := func(sender, recipient domain.Account) {
		req := &domain.FriendRequest{SenderID: sender.ID, RecipientID: recipient.ID}
		require.NoError(t, repo.Create(ctx, req))
		_, err := repo.Transition(ctx, req.ID, domain.FriendRequestStatusAccepted)
		require.NoError(t, err)
	}

	// both directions accepted independently must list bob once
	accept(alice, bob)
	accept(bob, alice)
	accept(carol, alice)

	rejected := &domain.FriendRequest{SenderID: alice.ID, RecipientID: dave.ID}
	require.NoError(t, repo.Create(ctx, rejected))
	_, err := repo.Transition(ctx, rejected.ID, domain.FriendRequestStatusRejected)
	require.NoError(t, err)

	friends, err := repo.FriendsOf(ctx, alice.ID)
	require.NoError(t, err)
	ids := accountIDs(friends)
	assert.ElementsMatch(t, []string{bob.ID, carol.ID}, ids)
	assert.NotContains(t, ids, alice.ID)

	bobFriends, err := repo.FriendsOf(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, accountIDs(bobFriends))

	daveFriends, err := repo.FriendsOf(ctx, dave.ID)
	require.NoError(t, err)
	assert.Empty(t, daveFriends)
}

func TestMemoryFriendRequestRepository_PendingRequestsFor(t *testing.T) {
	ctx := context.Background()
	accounts := NewMemoryAccountRepository()
	users := seedAccounts(t, accounts, "alice", "bob", "carol")
	alice, bob, carol := users[0], users[1], users[2]
	repo := NewMemoryFriendRequestRepository(accounts)

	fromBob := &domain.FriendRequest{SenderID: bob.ID, RecipientID: alice.ID}
	require.NoError(t, repo.Create(ctx, fromBob))
	require.NoError(t, repo.Create(ctx, &domain.FriendRequest{SenderID: carol.ID, RecipientID: alice.ID}))
	require.NoError(t, repo.Create(ctx, &domain.FriendRequest{SenderID: alice.ID, RecipientID: bob.ID}))

	pending, err := repo.PendingRequestsFor(ctx, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{bob.ID, carol.ID}, accountIDs(pending))

	_, err = repo.Transition(ctx, fromBob.ID, domain.FriendRequestStatusRejected)
	require.NoError(t, err)

	pending, err = repo.PendingRequestsFor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{carol.ID}, accountIDs(pending))
}

func accountIDs(accounts []domain.Account) []string {
	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
	return ids
}
