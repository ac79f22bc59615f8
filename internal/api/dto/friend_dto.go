package dto

import (
	"time"

	"github.com/spec-kit/friendship-service/internal/domain"
)

// FriendRequestAction is the body of POST /api/friend-request.
type FriendRequestAction struct {
	Action      string `json:"action"`
	RecipientID string `json:"recipient_id"`
}

// FriendRequestResponse describes a stored friend request.
type FriendRequestResponse struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewFriendRequestResponse maps a domain request.
func NewFriendRequestResponse(req *domain.FriendRequest) FriendRequestResponse {
	return FriendRequestResponse{
		ID:          req.ID,
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		Status:      string(req.Status),
		CreatedAt:   req.CreatedAt,
		UpdatedAt:   req.UpdatedAt,
	}
}
