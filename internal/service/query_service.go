package service

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/friendship-service/internal/domain"
	"github.com/spec-kit/friendship-service/internal/repository"
	apperrors "github.com/spec-kit/friendship-service/pkg/util/errorutil"
)

const defaultSearchPageSize = 10

// SearchPage is one page of account search results.
type SearchPage struct {
	Results     []domain.Account
	Count       int
	Page        int
	PageSize    int
	HasNext     bool
	HasPrevious bool
}

// QueryService derives the friends and pending views and runs account search.
type QueryService struct {
	accounts repository.AccountRepository
	requests repository.FriendRequestRepository
	pageSize int
}

// QueryDependencies bundles collaborators for the query service.
type QueryDependencies struct {
	AccountRepo       repository.AccountRepository
	FriendRequestRepo repository.FriendRequestRepository
	PageSize          int
}

// NewQueryService constructs the service.
func NewQueryService(deps QueryDependencies) *QueryService {
	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = defaultSearchPageSize
	}
	return &QueryService{
		accounts: deps.AccountRepo,
		requests: deps.FriendRequestRepo,
		pageSize: pageSize,
	}
}

// ListFriends returns every account with an ACCEPTED request to or from accountID.
func (s *QueryService) ListFriends(ctx context.Context, accountID string) ([]domain.Account, error) {
	friends, err := s.requests.FriendsOf(ctx, accountID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return withoutSelf(dedupAccounts(friends), accountID), nil
}

// ListPending returns the senders of PENDING requests addressed to accountID.
func (s *QueryService) ListPending(ctx context.Context, accountID string) ([]domain.Account, error) {
	senders, err := s.requests.PendingRequestsFor(ctx, accountID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return senders, nil
}

// SearchUsers matches query as a case-insensitive exact email or a
// case-insensitive name substring. Results are ordered by account ID so a
// page number always maps to the same slice while the directory is unchanged.
func (s *QueryService) SearchUsers(ctx context.Context, query string, page int) (*SearchPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewMissingQuery(MsgSearchQueryRequired)
	}
	if page < 1 {
		page = 1
	}

	byEmail, err := s.accounts.FindByExactEmail(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	byName, err := s.accounts.FindByNameSubstring(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	all := dedupAccounts(append(byEmail, byName...))
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	// Page 1 of an empty result is valid; any other page must hold a row.
	pages := (len(all) + s.pageSize - 1) / s.pageSize
	if page > 1 && page > pages {
		return nil, apperrors.NewInvalidPage(page)
	}
	start := (page - 1) * s.pageSize
	end := start + s.pageSize
	if end > len(all) {
		end = len(all)
	}

	return &SearchPage{
		Results:     all[start:end],
		Count:       len(all),
		Page:        page,
		PageSize:    s.pageSize,
		HasNext:     end < len(all),
		HasPrevious: page > 1,
	}, nil
}

func dedupAccounts(accounts []domain.Account) []domain.Account {
	seen := make(map[string]struct{}, len(accounts))
	out := make([]domain.Account, 0, len(accounts))
	for _, acc := range accounts {
		if _, ok := seen[acc.ID]; ok {
			continue
		}
		seen[acc.ID] = struct{}{}
		out = append(out, acc)
	}
	return out
}

func withoutSelf(accounts []domain.Account, accountID string) []domain.Account {
	out := accounts[:0]
	for _, acc := range accounts {
		if acc.ID != accountID {
			out = append(out, acc)
		}
	}
	return out
}
