package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/events"
)

// NotificationService delivers one-time codes and security notices for auth
// events. Delivery is fire-and-forget: failures are logged and never
// surfaced to the flow that triggered them.
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

// RegisterHandlers subscribes to the auth events that require delivery.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventVerificationRequested, n.handleVerificationRequested)
	n.dispatcher.Subscribe(events.EventRenewalRequested, n.handleRenewalRequested)
	n.dispatcher.Subscribe(events.EventAccountLocked, n.handleAccountLocked)
	n.dispatcher.Subscribe(events.EventTokensRevoked, n.handleTokensRevoked)
}

func (n *NotificationService) handleVerificationRequested(ctx context.Context, event events.Event) error {
	n.sendVerificationCode(ctx, event, "email verification code")
	return nil
}

func (n *NotificationService) handleRenewalRequested(ctx context.Context, event events.Event) error {
	n.sendVerificationCode(ctx, event, "signature renewal code")
	return nil
}

func (n *NotificationService) handleAccountLocked(ctx context.Context, event events.Event) error {
	n.logger.Info("AccountLocked", zap.String("user_id", event.UserID))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTokensRevoked(ctx context.Context, event events.Event) error {
	n.logger.Info("TokensRevoked", zap.String("user_id", event.UserID))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// sendVerificationCode is the email delivery stub. The code itself is never
// logged, only the fact of delivery.
func (n *NotificationService) sendVerificationCode(_ context.Context, event events.Event, kind string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendVerificationCode",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", event.Email),
		zap.String("kind", kind))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}
