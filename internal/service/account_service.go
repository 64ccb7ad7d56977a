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

// AccountService owns account registration, email verification and the
// administrative status transitions.
type AccountService struct {
	eventPublisher
	users  repository.UserRepository
	cfg    config.AuthConfig
	logger *zap.Logger
}

// NewAccountService builds the service.
func NewAccountService(cfg config.AuthConfig, users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *AccountService {
	return &AccountService{
		eventPublisher: eventPublisher{dispatcher: dispatcher, logger: logger},
		users:          users,
		cfg:            cfg,
		logger:         logger,
	}
}

// Register creates a PENDING account with a fresh signing key pair and a
// 24h verification code. The code travels to the user via the notification
// collaborator, never in the API response.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	accessKey, err := auth.NewSigningKey()
	if err != nil {
		return nil, err
	}
	refreshKey, err := auth.NewSigningKey()
	if err != nil {
		return nil, err
	}

	user := domain.User{
		ID:                uuid.NewString(),
		Name:              name,
		Email:             email,
		PasswordHash:      hash,
		AccessSigningKey:  accessKey,
		RefreshSigningKey: refreshKey,
		IsActive:          true,
		Status:            domain.AuthStatusPending,
	}

	code := uuid.NewString()
	expiresAt := time.Now().Add(s.cfg.VerificationTTL())
	user = user.IssueVerificationCode(code, expiresAt)

	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, &user, nil)
	s.publish(ctx, events.EventVerificationRequested, &user, events.VerificationRequestedPayload{
		Code:      code,
		ExpiresAt: expiresAt,
	})
	return &user, nil
}

// RequestVerification reissues the email verification code. Unknown emails
// and already-verified accounts return silently so the endpoint cannot be
// used to probe for accounts.
func (s *AccountService) RequestVerification(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}

	code := uuid.NewString()
	expiresAt := time.Now().Add(s.cfg.VerificationTTL())
	updated := user.IssueVerificationCode(code, expiresAt)
	if err := s.users.Update(ctx, &updated); err != nil {
		return err
	}

	s.publish(ctx, events.EventVerificationRequested, &updated, events.VerificationRequestedPayload{
		Code:      code,
		ExpiresAt: expiresAt,
	})
	return nil
}

// VerifyEmail consumes the verification code. A correct, unexpired code
// clears atomically with the flag update and promotes PENDING to ACTIVE;
// replaying the code afterwards fails.
func (s *AccountService) VerifyEmail(ctx context.Context, email, code string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidCode
		}
		return nil, err
	}

	updated, err := user.VerifyEmail(code, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventEmailVerified, &updated, nil)
	return &updated, nil
}

// Activate transitions the account to ACTIVE, clearing lockout state.
func (s *AccountService) Activate(ctx context.Context, userID string) (*domain.User, error) {
	return s.applyTransition(ctx, userID, "", domain.User.Activate)
}

// Deactivate transitions the account to INACTIVE and clears the
// administrative switch.
func (s *AccountService) Deactivate(ctx context.Context, userID string) (*domain.User, error) {
	return s.applyTransition(ctx, userID, "", domain.User.Deactivate)
}

// Suspend transitions the account to SUSPENDED with the given reason.
func (s *AccountService) Suspend(ctx context.Context, userID, reason string) (*domain.User, error) {
	return s.applyTransition(ctx, userID, reason, func(u domain.User) (domain.User, error) {
		return u.Suspend(reason)
	})
}

// Block transitions the account to BLOCKED. The state is terminal.
func (s *AccountService) Block(ctx context.Context, userID, reason string) (*domain.User, error) {
	return s.applyTransition(ctx, userID, reason, func(u domain.User) (domain.User, error) {
		return u.Block(reason)
	})
}

func (s *AccountService) applyTransition(ctx context.Context, userID, reason string, fn func(domain.User) (domain.User, error)) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	oldStatus := user.Status
	updated, err := fn(*user)
	if err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventStatusChanged, &updated, events.StatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: updated.Status,
		Reason:    reason,
	})
	return &updated, nil
}
