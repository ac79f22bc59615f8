package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/friendship-service/internal/domain"
)

// AccountRepository is the account directory consumed by the friendship core.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByExactEmail(ctx context.Context, email string) ([]domain.Account, error)
	FindByNameSubstring(ctx context.Context, fragment string) ([]domain.Account, error)
}

type accountRepository struct {
	db DBTX
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(db DBTX) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, name, email, password_hash, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (name, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	account.Email = domain.NormalizeEmail(account.Email)
	err := r.db.QueryRow(ctx, query,
		account.Name,
		account.Email,
		account.PasswordHash,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	return translateError(err)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email)=$1`
	return r.fetchSingle(ctx, query, domain.NormalizeEmail(email))
}

func (r *accountRepository) FindByExactEmail(ctx context.Context, email string) ([]domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email)=$1 ORDER BY id`
	return r.list(ctx, query, domain.NormalizeEmail(email))
}

func (r *accountRepository) FindByNameSubstring(ctx context.Context, fragment string) ([]domain.Account, error) {
	const query = `SELECT ` + accountColumns + `
        FROM accounts WHERE LOWER(name) LIKE $1 ESCAPE '\' ORDER BY id`
	pattern := "%" + escapeLike(strings.ToLower(fragment)) + "%"
	return r.list(ctx, query, pattern)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, translateError(err)
	}
	return &account, nil
}

func (r *accountRepository) list(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func scanAccounts(rows pgx.Rows) ([]domain.Account, error) {
	result := []domain.Account{}
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.Name,
			&account.Email,
			&account.PasswordHash,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}
