package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/friendship-service/internal/config"
	"github.com/spec-kit/friendship-service/internal/events"
)

// NotificationService observes friend-request events. Delivery is out of
// scope; the stubs only log what would be sent.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventFriendRequestSent, n.handleRequestSent)
	n.dispatcher.Subscribe(events.EventFriendRequestAccepted, n.handleRequestAnswered)
	n.dispatcher.Subscribe(events.EventFriendRequestRejected, n.handleRequestAnswered)
}

func (n *NotificationService) handleRequestSent(ctx context.Context, event events.Event) error {
	n.logger.Info("FriendRequestSent", zap.String("request_id", event.RequestID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRequestAnswered(ctx context.Context, event events.Event) error {
	n.logger.Info("FriendRequestAnswered",
		zap.String("request_id", event.RequestID),
		zap.String("event_type", string(event.Type)),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("request_id", event.RequestID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("request_id", event.RequestID),
		zap.String("event_type", string(event.Type)))
}
