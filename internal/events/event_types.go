package events

import (
	"time"

	"github.com/spec-kit/friendship-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventFriendRequestSent     EventType = "friend_request.sent"
	EventFriendRequestAccepted EventType = "friend_request.accepted"
	EventFriendRequestRejected EventType = "friend_request.rejected"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// FriendRequestPayload describes the request an event is about.
type FriendRequestPayload struct {
	SenderID    string                     `json:"sender_id"`
	RecipientID string                     `json:"recipient_id"`
	Status      domain.FriendRequestStatus `json:"status"`
}
