package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/friendship-service/internal/domain"
)

type memoryAccountRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.Account
	byEmail map[string]string
	now     func() time.Time
}

// NewMemoryAccountRepository returns an in-process account directory. It backs
// the service when no Postgres DSN is configured.
func NewMemoryAccountRepository() AccountRepository {
	return &memoryAccountRepository{
		byID:    make(map[string]domain.Account),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *memoryAccountRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(account.Email)
	if _, taken := r.byEmail[email]; taken {
		return ErrDuplicate
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	} else if _, taken := r.byID[account.ID]; taken {
		return ErrDuplicate
	}
	now := r.now().UTC()
	account.Email = email
	account.CreatedAt = now
	account.UpdatedAt = now

	r.byID[account.ID] = *account
	r.byEmail[email] = account.ID
	return nil
}

func (r *memoryAccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

func (r *memoryAccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	account := r.byID[id]
	return &account, nil
}

func (r *memoryAccountRepository) FindByExactEmail(ctx context.Context, email string) ([]domain.Account, error) {
	account, err := r.GetByEmail(ctx, email)
	if err == ErrNotFound {
		return []domain.Account{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []domain.Account{*account}, nil
}

func (r *memoryAccountRepository) FindByNameSubstring(_ context.Context, fragment string) ([]domain.Account, error) {
	needle := strings.ToLower(fragment)

	r.mu.RLock()
	result := []domain.Account{}
	for _, account := range r.byID {
		if strings.Contains(strings.ToLower(account.Name), needle) {
			result = append(result, account)
		}
	}
	r.mu.RUnlock()

	sortAccounts(result)
	return result, nil
}

func sortAccounts(accounts []domain.Account) {
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
}
