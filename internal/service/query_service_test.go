package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/friendship-service/internal/domain"
	"github.com/spec-kit/friendship-service/internal/repository"
	apperrors "github.com/spec-kit/friendship-service/pkg/util/errorutil"
)

func TestListFriends_BothDirectionsCountedOnce(t *testing.T) {
	h := newHarness(t, generousPolicy)
	ctx := context.Background()
	alice := h.seed(t, "a1", "Alice", "alice@example.com")
	bob := h.seed(t, "b1", "Bob", "bob@example.com")
	carol := h.seed(t, "c1", "Carol", "carol@example.com")

	_, err := h.friendship.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = h.friendship.SendRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = h.friendship.AcceptRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = h.friendship.AcceptRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = h.friendship.SendRequest(ctx, carol.ID, alice.ID)
	require.NoError(t, err)

	friends, err := h.queries.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, ids(friends))

	pending, err := h.queries.ListPending(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{carol.ID}, ids(pending))
}

func TestListFriends_DropsSelfAndDuplicatesFromStore(t *testing.T) {
	requests := &mockFriendRequestRepo{}
	requests.On("FriendsOf", mock.Anything, "me").Return([]domain.Account{
		{ID: "f1"}, {ID: "me"}, {ID: "f1"}, {ID: "f2"},
	}, nil)

	svc := NewQueryService(QueryDependencies{FriendRequestRepo: requests})
	friends, err := svc.ListFriends(context.Background(), "me")
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2"}, ids(friends))
}

func TestListPending_StoreFailureIsInternal(t *testing.T) {
	requests := &mockFriendRequestRepo{}
	requests.On("PendingRequestsFor", mock.Anything, "me").Return(nil, errors.New("timeout"))

	svc := NewQueryService(QueryDependencies{FriendRequestRepo: requests})
	_, err := svc.ListPending(context.Background(), "me")
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
}

func TestListPending_EmptyWhenNothingPending(t *testing.T) {
	h := newHarness(t, generousPolicy)
	alice := h.seed(t, "a1", "Alice", "alice@example.com")

	pending, err := h.queries.ListPending(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSearchUsers_MissingQuery(t *testing.T) {
	h := newHarness(t, generousPolicy)

	for _, q := range []string{"", "   "} {
		_, err := h.queries.SearchUsers(context.Background(), q, 1)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeMissingQuery, apperrors.CodeOf(err))
		assert.EqualError(t, err, MsgSearchQueryRequired)
	}
}

func TestSearchUsers_EmailExactAndNameSubstring(t *testing.T) {
	h := newHarness(t, generousPolicy)
	ctx := context.Background()
	h.seed(t, "u1", "Dana Scully", "dana@fbi.gov")
	h.seed(t, "u2", "Fox Mulder", "fox@fbi.gov")
	h.seed(t, "u3", "Walter Skinner", "skinner@fbi.gov")

	page, err := h.queries.SearchUsers(ctx, "DANA@FBI.GOV", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids(page.Results))

	// partial email is not an email match and matches no name
	page, err = h.queries.SearchUsers(ctx, "fbi.gov", 1)
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	assert.Equal(t, 0, page.Count)

	page, err = h.queries.SearchUsers(ctx, "mUlD", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, ids(page.Results))
}

func TestSearchUsers_MatchOnBothFieldsAppearsOnce(t *testing.T) {
	h := newHarness(t, generousPolicy)
	h.seed(t, "u1", "x@example.com", "x@example.com")

	page, err := h.queries.SearchUsers(context.Background(), "x@example.com", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids(page.Results))
	assert.Equal(t, 1, page.Count)
}

func TestSearchUsers_PaginationIsDeterministic(t *testing.T) {
	h := newHarness(t, generousPolicy)
	ctx := context.Background()
	for i := 7; i >= 1; i-- {
		h.seed(t, fmt.Sprintf("u%d", i), fmt.Sprintf("Sam %d", i), fmt.Sprintf("sam%d@example.com", i))
	}

	first, err := h.queries.SearchUsers(ctx, "sam", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3"}, ids(first.Results))
	assert.Equal(t, 7, first.Count)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrevious)

	again, err := h.queries.SearchUsers(ctx, "sam", 1)
	require.NoError(t, err)
	assert.Equal(t, ids(first.Results), ids(again.Results))

	last, err := h.queries.SearchUsers(ctx, "sam", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"u7"}, ids(last.Results))
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrevious)

	_, err = h.queries.SearchUsers(ctx, "sam", 4)
	assert.Equal(t, apperrors.CodeInvalidPage, apperrors.CodeOf(err))

	// (page-1)*pageSize would wrap negative without the page-count check
	_, err = h.queries.SearchUsers(ctx, "sam", math.MaxInt64/3+2)
	assert.Equal(t, apperrors.CodeInvalidPage, apperrors.CodeOf(err))
	_, err = h.queries.SearchUsers(ctx, "sam", math.MaxInt64)
	assert.Equal(t, apperrors.CodeInvalidPage, apperrors.CodeOf(err))

	clamped, err := h.queries.SearchUsers(ctx, "sam", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, clamped.Page)
}

func TestSearchUsers_EmptyResultFirstPage(t *testing.T) {
	h := newHarness(t, generousPolicy)

	page, err := h.queries.SearchUsers(context.Background(), "nobody", 1)
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	assert.False(t, page.HasNext)
}

type failingAccounts struct {
	repository.AccountRepository
}

func (failingAccounts) FindByExactEmail(context.Context, string) ([]domain.Account, error) {
	return nil, errors.New("db down")
}

func TestSearchUsers_StoreFailureIsInternal(t *testing.T) {
	svc := NewQueryService(QueryDependencies{AccountRepo: failingAccounts{repository.NewMemoryAccountRepository()}})

	_, err := svc.SearchUsers(context.Background(), "x", 1)
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
}
