package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/friendship-service/internal/domain"
)

// FriendRequestRepository persists one record per ordered (sender, recipient)
// pair and derives the friends and pending views from it.
type FriendRequestRepository interface {
	FindByPair(ctx context.Context, senderID, recipientID string) (*domain.FriendRequest, error)
	FindPending(ctx context.Context, senderID, recipientID string) (*domain.FriendRequest, error)
	// Create inserts a PENDING record. The existence check and the insert are a
	// single atomic step; a second record for the same pair yields ErrDuplicate.
	Create(ctx context.Context, req *domain.FriendRequest) error
	// Transition moves a PENDING record to a terminal status. Exactly one
	// concurrent caller wins; the rest see ErrInvalidTransition.
	Transition(ctx context.Context, id string, to domain.FriendRequestStatus) (*domain.FriendRequest, error)
	FriendsOf(ctx context.Context, accountID string) ([]domain.Account, error)
	PendingRequestsFor(ctx context.Context, accountID string) ([]domain.Account, error)
}

type friendRequestRepository struct {
	db DBTX
}

// NewFriendRequestRepository returns a Postgres-backed implementation.
func NewFriendRequestRepository(db DBTX) FriendRequestRepository {
	return &friendRequestRepository{db: db}
}

const friendRequestColumns = `id, sender_id, recipient_id, status, created_at, updated_at`

func (r *friendRequestRepository) FindByPair(ctx context.Context, senderID, recipientID string) (*domain.FriendRequest, error) {
	const query = `SELECT ` + friendRequestColumns + `
        FROM friend_requests WHERE sender_id=$1 AND recipient_id=$2`
	return r.fetchSingle(ctx, query, senderID, recipientID)
}

func (r *friendRequestRepository) FindPending(ctx context.Context, senderID, recipientID string) (*domain.FriendRequest, error) {
	const query = `SELECT ` + friendRequestColumns + `
        FROM friend_requests WHERE sender_id=$1 AND recipient_id=$2 AND status=$3`
	return r.fetchSingle(ctx, query, senderID, recipientID, domain.FriendRequestStatusPending)
}

func (r *friendRequestRepository) Create(ctx context.Context, req *domain.FriendRequest) error {
	if err := domain.ValidateSendRequest(req.SenderID, req.RecipientID); err != nil {
		return err
	}
	const query = `
        INSERT INTO friend_requests (id, sender_id, recipient_id, status)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (sender_id, recipient_id) DO NOTHING
        RETURNING created_at, updated_at`

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Status = domain.FriendRequestStatusPending
	err := r.db.QueryRow(ctx, query,
		req.ID,
		req.SenderID,
		req.RecipientID,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// ON CONFLICT swallowed the insert
		return ErrDuplicate
	}
	return translateError(err)
}

func (r *friendRequestRepository) Transition(ctx context.Context, id string, to domain.FriendRequestStatus) (*domain.FriendRequest, error) {
	if !domain.CanTransition(domain.FriendRequestStatusPending, to) {
		return nil, fmt.Errorf("%w: to %s", ErrInvalidTransition, to)
	}
	const query = `
        UPDATE friend_requests SET status=$2, updated_at=NOW()
        WHERE id=$1 AND status=$3
        RETURNING ` + friendRequestColumns

	updated, err := r.fetchSingle(ctx, query, id, to, domain.FriendRequestStatusPending)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// Nothing updated: either the id is unknown or another caller already
	// moved the record out of PENDING.
	const exists = `SELECT status FROM friend_requests WHERE id=$1`
	var current domain.FriendRequestStatus
	if err := r.db.QueryRow(ctx, exists, id).Scan(&current); err != nil {
		return nil, translateError(err)
	}
	return nil, fmt.Errorf("%w: request is %s", ErrInvalidTransition, current)
}

func (r *friendRequestRepository) FriendsOf(ctx context.Context, accountID string) ([]domain.Account, error) {
	const query = `
        SELECT DISTINCT a.id, a.name, a.email, a.password_hash, a.created_at, a.updated_at
        FROM friend_requests fr
        JOIN accounts a
          ON a.id = CASE WHEN fr.sender_id = $1 THEN fr.recipient_id ELSE fr.sender_id END
        WHERE (fr.sender_id = $1 OR fr.recipient_id = $1)
          AND fr.status = $2
          AND a.id <> $1
        ORDER BY a.id`
	rows, err := r.db.Query(ctx, query, accountID, domain.FriendRequestStatusAccepted)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (r *friendRequestRepository) PendingRequestsFor(ctx context.Context, accountID string) ([]domain.Account, error) {
	const query = `
        SELECT a.id, a.name, a.email, a.password_hash, a.created_at, a.updated_at
        FROM friend_requests fr
        JOIN accounts a ON a.id = fr.sender_id
        WHERE fr.recipient_id = $1 AND fr.status = $2
        ORDER BY fr.created_at, fr.id`
	rows, err := r.db.Query(ctx, query, accountID, domain.FriendRequestStatusPending)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (r *friendRequestRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.FriendRequest, error) {
	var req domain.FriendRequest
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&req.ID,
		&req.SenderID,
		&req.RecipientID,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, translateError(err)
	}
	return &req, nil
}
