package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/persistence"
)

const (
	auditListKey = "auth:audit"
	auditMaxLen  = 10000
)

// AuditService keeps a capped trail of security-relevant auth events in
// Redis. The durable audit store is an external collaborator; this trail
// exists for operators inspecting recent activity.
type AuditService struct {
	dispatcher events.Dispatcher
	redis      *persistence.Redis
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, redis *persistence.Redis, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, redis: redis, logger: logger}
}

// RegisterHandlers subscribes the audit sink to every auth event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventVerificationRequested,
		events.EventEmailVerified,
		events.EventLoginSucceeded,
		events.EventLoginFailed,
		events.EventAccountLocked,
		events.EventStatusChanged,
		events.EventRenewalRequested,
		events.EventPasswordRenewed,
		events.EventTokensRevoked,
	} {
		a.dispatcher.Subscribe(eventType, a.record)
	}
}

func (a *AuditService) record(ctx context.Context, event events.Event) error {
	if a.redis == nil || a.redis.Client == nil {
		return nil
	}

	// One-time codes must not land in the trail.
	entry := events.Event{
		ID:        event.ID,
		Type:      event.Type,
		UserID:    event.UserID,
		Email:     event.Email,
		Timestamp: event.Timestamp,
	}
	switch event.Type {
	case events.EventVerificationRequested, events.EventRenewalRequested:
	default:
		entry.Payload = event.Payload
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		a.logger.Warn("audit entry marshal failed", zap.Error(err))
		return nil
	}

	pipe := a.redis.Client.Pipeline()
	pipe.LPush(ctx, auditListKey, raw)
	pipe.LTrim(ctx, auditListKey, 0, auditMaxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		a.logger.Warn("audit entry write failed", zap.Error(err))
	}
	return nil
}
