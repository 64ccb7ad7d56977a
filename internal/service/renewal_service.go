package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
)

// RenewalService implements the two-step signature renewal (credential
// reset) flow: a time-boxed single-use code delivered out of band, then a
// confirmation that installs the new credential and rotates both signing
// keys.
type RenewalService struct {
	eventPublisher
	users  repository.UserRepository
	cfg    config.AuthConfig
	logger *zap.Logger
}

// NewRenewalService builds the service.
func NewRenewalService(cfg config.AuthConfig, users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *RenewalService {
	return &RenewalService{
		eventPublisher: eventPublisher{dispatcher: dispatcher, logger: logger},
		users:          users,
		cfg:            cfg,
		logger:         logger,
	}
}

// Request stores a renewal code with a one-hour window and hands it to the
// notification collaborator. Unknown and inactive accounts return the same
// silent success as real ones, with no observable difference. Existing
// tokens and the lockout counter are left untouched.
func (s *RenewalService) Request(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	code := uuid.NewString()
	expiresAt := time.Now().Add(s.cfg.RenewalCodeTTL())
	updated := user.IssueRenewalCode(code, expiresAt)
	if err := s.users.Update(ctx, &updated); err != nil {
		return err
	}

	s.publish(ctx, events.EventRenewalRequested, &updated, events.RenewalRequestedPayload{
		Code:      code,
		ExpiresAt: expiresAt,
	})
	return nil
}

// Confirm consumes the renewal code and installs the new credential. A
// successful reset rotates both signing keys and clears the lockout
// counter: logout-everywhere plus unlock in a single update.
func (s *RenewalService) Confirm(ctx context.Context, email, code, newPassword string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return err
	}
	if !user.IsActive {
		return domain.ErrAccountDeactivated
	}

	updated, err := user.ConsumeRenewalCode(code, time.Now())
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	accessKey, err := auth.NewSigningKey()
	if err != nil {
		return err
	}
	refreshKey, err := auth.NewSigningKey()
	if err != nil {
		return err
	}

	updated.PasswordHash = hash
	updated.AccessSigningKey = accessKey
	updated.RefreshSigningKey = refreshKey
	updated.FailedLoginAttempts = 0
	updated.LockedUntil = nil
	updated.LockReason = nil

	if err := s.users.Update(ctx, &updated); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordRenewed, &updated, nil)
	s.publish(ctx, events.EventTokensRevoked, &updated, events.TokensRevokedPayload{
		AccessRevoked:  true,
		RefreshRevoked: true,
		Trigger:        "renewal",
	})
	return nil
}
