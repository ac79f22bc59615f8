package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/friendship-service/internal/domain"
	"github.com/spec-kit/friendship-service/internal/events"
	"github.com/spec-kit/friendship-service/internal/observability"
	"github.com/spec-kit/friendship-service/internal/ratelimit"
	"github.com/spec-kit/friendship-service/internal/repository"
	apperrors "github.com/spec-kit/friendship-service/pkg/util/errorutil"
)

// FriendshipService runs the friend-request state machine.
type FriendshipService struct {
	accounts   repository.AccountRepository
	requests   repository.FriendRequestRepository
	limiter    ratelimit.Limiter
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// FriendshipDependencies bundles collaborators for the friendship service.
type FriendshipDependencies struct {
	AccountRepo       repository.AccountRepository
	FriendRequestRepo repository.FriendRequestRepository
	Limiter           ratelimit.Limiter
	Dispatcher        events.Dispatcher
	Metrics           *observability.Metrics
	Logger            *zap.Logger
	Clock             func() time.Time
}

// NewFriendshipService constructs the service.
func NewFriendshipService(deps FriendshipDependencies) *FriendshipService {
	svc := &FriendshipService{
		accounts:   deps.AccountRepo,
		requests:   deps.FriendRequestRepo,
		limiter:    deps.Limiter,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if svc.limiter == nil {
		svc.limiter = ratelimit.NewNoopLimiter()
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// HandleAction validates and dispatches a raw action issued by callerID
// against counterpartyID.
func (s *FriendshipService) HandleAction(ctx context.Context, callerID, rawAction, counterpartyID string) (*domain.FriendRequest, error) {
	rawAction = strings.TrimSpace(rawAction)
	counterpartyID = strings.TrimSpace(counterpartyID)
	if rawAction == "" || counterpartyID == "" {
		return nil, apperrors.NewMissingParameter(MsgActionAndRecipientNeeded)
	}

	action, err := domain.ParseFriendAction(rawAction)
	if err != nil {
		s.metrics.RecordAction(rawAction, apperrors.CodeInvalidAction)
		return nil, apperrors.NewInvalidAction(MsgInvalidAction, map[string]any{"action": rawAction})
	}

	if _, err := s.accounts.GetByID(ctx, counterpartyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.RecordAction(string(action), apperrors.CodeRecipientNotFound)
			return nil, apperrors.NewRecipientNotFound(MsgRecipientNotExist)
		}
		return nil, apperrors.NewInternalError(err)
	}

	switch action {
	case domain.FriendActionSend:
		return s.SendRequest(ctx, callerID, counterpartyID)
	case domain.FriendActionAccept:
		return s.AcceptRequest(ctx, callerID, counterpartyID)
	default:
		return s.RejectRequest(ctx, callerID, counterpartyID)
	}
}

// SendRequest creates a PENDING request from senderID to recipientID. The
// limiter is consulted before any store access.
func (s *FriendshipService) SendRequest(ctx context.Context, senderID, recipientID string) (*domain.FriendRequest, error) {
	now := s.now()
	decision, err := s.limiter.Allow(ctx, senderID, now)
	if err != nil {
		s.logger.Error("rate limiter unavailable", zap.String("sender_id", senderID), zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}
	if !decision.Allowed {
		s.metrics.RecordAction(string(domain.FriendActionSend), apperrors.CodeRateLimitExceeded)
		s.logger.Info("friend request throttled",
			zap.String("sender_id", senderID),
			zap.Duration("retry_after", decision.RetryAfter))
		return nil, apperrors.NewRateLimitExceeded(MsgRateLimitExceeded, int(math.Ceil(decision.RetryAfter.Seconds())))
	}

	req, err := domain.NewFriendRequest(senderID, recipientID, now)
	if err != nil {
		s.metrics.RecordAction(string(domain.FriendActionSend), apperrors.CodeSelfRequest)
		return nil, apperrors.NewSelfRequest(MsgSelfRequest)
	}

	if err := s.requests.Create(ctx, req); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			s.metrics.RecordAction(string(domain.FriendActionSend), apperrors.CodeDuplicateRequest)
			return nil, apperrors.NewDuplicateRequest(MsgRequestAlreadySent)
		case errors.Is(err, domain.ErrSelfRequest):
			return nil, apperrors.NewSelfRequest(MsgSelfRequest)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewRecipientNotFound(MsgRecipientNotExist)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordAction(string(domain.FriendActionSend), "OK")
	s.logger.Info("friend request sent",
		zap.String("request_id", req.ID),
		zap.String("sender_id", senderID),
		zap.String("recipient_id", recipientID))
	s.publishEvent(ctx, events.EventFriendRequestSent, senderID, req)
	return req, nil
}

// AcceptRequest accepts the PENDING request counterpartyID sent to callerID.
func (s *FriendshipService) AcceptRequest(ctx context.Context, callerID, counterpartyID string) (*domain.FriendRequest, error) {
	return s.respond(ctx, callerID, counterpartyID, domain.FriendActionAccept)
}

// RejectRequest rejects the PENDING request counterpartyID sent to callerID.
func (s *FriendshipService) RejectRequest(ctx context.Context, callerID, counterpartyID string) (*domain.FriendRequest, error) {
	return s.respond(ctx, callerID, counterpartyID, domain.FriendActionReject)
}

func (s *FriendshipService) respond(ctx context.Context, callerID, counterpartyID string, action domain.FriendAction) (*domain.FriendRequest, error) {
	// The caller must be the recipient: look the request up in reverse.
	pending, err := s.requests.FindPending(ctx, counterpartyID, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.RecordAction(string(action), apperrors.CodeFriendRequestNotFound)
			return nil, apperrors.NewFriendRequestNotFound(MsgRequestNotFound)
		}
		return nil, apperrors.NewInternalError(err)
	}

	next, err := pending.Status.Apply(action)
	if err != nil {
		return nil, apperrors.NewFriendRequestNotFound(MsgRequestNotFound)
	}

	updated, err := s.requests.Transition(ctx, pending.ID, next)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidTransition) {
			// lost a race with a concurrent accept/reject
			s.metrics.RecordAction(string(action), apperrors.CodeFriendRequestNotFound)
			return nil, apperrors.NewFriendRequestNotFound(MsgRequestNotFound)
		}
		return nil, apperrors.NewInternalError(err)
	}

	eventType := events.EventFriendRequestAccepted
	if action == domain.FriendActionReject {
		eventType = events.EventFriendRequestRejected
	}
	s.metrics.RecordAction(string(action), "OK")
	s.logger.Info("friend request answered",
		zap.String("request_id", updated.ID),
		zap.String("status", string(updated.Status)),
		zap.String("recipient_id", callerID))
	s.publishEvent(ctx, eventType, callerID, updated)
	return updated, nil
}

func (s *FriendshipService) publishEvent(ctx context.Context, eventType events.EventType, actorID string, req *domain.FriendRequest) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		RequestID: req.ID,
		ActorID:   actorID,
		Timestamp: s.now(),
		Payload: events.FriendRequestPayload{
			SenderID:    req.SenderID,
			RecipientID: req.RecipientID,
			Status:      req.Status,
		},
	})
}
