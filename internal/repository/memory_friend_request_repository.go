package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/friendship-service/internal/domain"
)

type pairKey struct {
	sender    string
	recipient string
}

type memoryFriendRequestRepository struct {
	mu       sync.RWMutex
	byID     map[string]*domain.FriendRequest
	byPair   map[pairKey]string
	accounts AccountRepository
	now      func() time.Time
}

// NewMemoryFriendRequestRepository returns an in-process store. The pair index
// is the in-memory counterpart of the (sender_id, recipient_id) unique
// constraint: check and insert happen under one lock.
func NewMemoryFriendRequestRepository(accounts AccountRepository) FriendRequestRepository {
	return &memoryFriendRequestRepository{
		byID:     make(map[string]*domain.FriendRequest),
		byPair:   make(map[pairKey]string),
		accounts: accounts,
		now:      time.Now,
	}
}

func (r *memoryFriendRequestRepository) FindByPair(_ context.Context, senderID, recipientID string) (*domain.FriendRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPair[pairKey{senderID, recipientID}]
	if !ok {
		return nil, ErrNotFound
	}
	req := *r.byID[id]
	return &req, nil
}

func (r *memoryFriendRequestRepository) FindPending(ctx context.Context, senderID, recipientID string) (*domain.FriendRequest, error) {
	req, err := r.FindByPair(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.FriendRequestStatusPending {
		return nil, ErrNotFound
	}
	return req, nil
}

func (r *memoryFriendRequestRepository) Create(_ context.Context, req *domain.FriendRequest) error {
	if err := domain.ValidateSendRequest(req.SenderID, req.RecipientID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{req.SenderID, req.RecipientID}
	if _, exists := r.byPair[key]; exists {
		return ErrDuplicate
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = r.now().UTC()
	}
	req.UpdatedAt = req.CreatedAt
	req.Status = domain.FriendRequestStatusPending

	stored := *req
	r.byID[req.ID] = &stored
	r.byPair[key] = req.ID
	return nil
}

func (r *memoryFriendRequestRepository) Transition(_ context.Context, id string, to domain.FriendRequestStatus) (*domain.FriendRequest, error) {
	if !domain.CanTransition(domain.FriendRequestStatusPending, to) {
		return nil, fmt.Errorf("%w: to %s", ErrInvalidTransition, to)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if stored.Status != domain.FriendRequestStatusPending {
		return nil, fmt.Errorf("%w: request is %s", ErrInvalidTransition, stored.Status)
	}
	stored.Status = to
	stored.UpdatedAt = r.now().UTC()

	out := *stored
	return &out, nil
}

func (r *memoryFriendRequestRepository) FriendsOf(ctx context.Context, accountID string) ([]domain.Account, error) {
	r.mu.RLock()
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, req := range r.byID {
		if req.Status != domain.FriendRequestStatusAccepted || !req.Involves(accountID) {
			continue
		}
		other := req.Counterparty(accountID)
		if other == accountID {
			continue
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		ids = append(ids, other)
	}
	r.mu.RUnlock()

	friends, err := r.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	sortAccounts(friends)
	return friends, nil
}

func (r *memoryFriendRequestRepository) PendingRequestsFor(ctx context.Context, accountID string) ([]domain.Account, error) {
	r.mu.RLock()
	pending := make([]domain.FriendRequest, 0)
	for _, req := range r.byID {
		if req.RecipientID == accountID && req.Status == domain.FriendRequestStatusPending {
			pending = append(pending, *req)
		}
	}
	r.mu.RUnlock()

	sort.Slice(pending, func(i, j int) bool {
		if pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].ID < pending[j].ID
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	ids := make([]string, 0, len(pending))
	for _, req := range pending {
		ids = append(ids, req.SenderID)
	}
	return r.resolve(ctx, ids)
}

// resolve loads accounts in order, skipping ids the directory no longer knows
// (the SQL join drops them the same way).
func (r *memoryFriendRequestRepository) resolve(ctx context.Context, ids []string) ([]domain.Account, error) {
	result := make([]domain.Account, 0, len(ids))
	for _, id := range ids {
		account, err := r.accounts.GetByID(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, *account)
	}
	return result, nil
}
