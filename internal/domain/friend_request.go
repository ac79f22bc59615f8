package domain

import (
	"errors"
	"strings"
	"time"
)

// FriendRequestStatus enumerates lifecycle states for friend requests.
type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "PENDING"
	FriendRequestStatusAccepted FriendRequestStatus = "ACCEPTED"
	FriendRequestStatusRejected FriendRequestStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is permitted.
func (s FriendRequestStatus) IsTerminal() bool {
	return s == FriendRequestStatusAccepted || s == FriendRequestStatusRejected
}

// FriendAction is a caller-issued verb against the relationship of an ordered pair.
type FriendAction string

const (
	FriendActionSend   FriendAction = "send"
	FriendActionAccept FriendAction = "accept"
	FriendActionReject FriendAction = "reject"
)

var (
	ErrSelfRequest       = errors.New("cannot send a friend request to yourself")
	ErrInvalidAction     = errors.New("invalid action")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ParseFriendAction maps the wire value to a FriendAction.
func ParseFriendAction(raw string) (FriendAction, error) {
	switch FriendAction(strings.TrimSpace(raw)) {
	case FriendActionSend:
		return FriendActionSend, nil
	case FriendActionAccept:
		return FriendActionAccept, nil
	case FriendActionReject:
		return FriendActionReject, nil
	}
	return "", ErrInvalidAction
}

// FriendRequest is one directed request between two accounts. At most one
// record exists per (SenderID, RecipientID).
type FriendRequest struct {
	ID          string
	SenderID    string
	RecipientID string
	Status      FriendRequestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Counterparty returns the other party of the request as seen by accountID.
func (r *FriendRequest) Counterparty(accountID string) string {
	if r.SenderID == accountID {
		return r.RecipientID
	}
	return r.SenderID
}

// Involves reports whether accountID is the sender or the recipient.
func (r *FriendRequest) Involves(accountID string) bool {
	return r.SenderID == accountID || r.RecipientID == accountID
}

// NewFriendRequest validates the pair and builds a pending request.
func NewFriendRequest(senderID, recipientID string, now time.Time) (*FriendRequest, error) {
	if err := ValidateSendRequest(senderID, recipientID); err != nil {
		return nil, err
	}
	return &FriendRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      FriendRequestStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateSendRequest enforces sender != recipient before anything is persisted.
func ValidateSendRequest(senderID, recipientID string) error {
	if senderID == recipientID {
		return ErrSelfRequest
	}
	return nil
}

// TargetStatus is the status an action moves a pending request to.
func (a FriendAction) TargetStatus() (FriendRequestStatus, error) {
	switch a {
	case FriendActionAccept:
		return FriendRequestStatusAccepted, nil
	case FriendActionReject:
		return FriendRequestStatusRejected, nil
	case FriendActionSend:
		return FriendRequestStatusPending, nil
	}
	return "", ErrInvalidAction
}

// Apply runs the state machine. Only PENDING may move, and only to
// ACCEPTED or REJECTED.
func (s FriendRequestStatus) Apply(action FriendAction) (FriendRequestStatus, error) {
	if action != FriendActionAccept && action != FriendActionReject {
		return s, ErrInvalidAction
	}
	if s != FriendRequestStatusPending {
		return s, ErrInvalidTransition
	}
	return action.TargetStatus()
}

// CanTransition reports whether from -> to is an allowed edge.
func CanTransition(from, to FriendRequestStatus) bool {
	return from == FriendRequestStatusPending && to.IsTerminal()
}
