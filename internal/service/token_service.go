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

// TokenService orchestrates the token lifecycle: login, refresh, revoke,
// logout, admin revocation and introspection. Revocation works by rotating
// the owning user's signing keys, so the current key is re-fetched from
// storage on every verification and never cached.
type TokenService struct {
	eventPublisher
	users  repository.UserRepository
	codec  *auth.TokenCodec
	cfg    config.AuthConfig
	logger *zap.Logger
}

// NewTokenService builds the service.
func NewTokenService(cfg config.AuthConfig, users repository.UserRepository, codec *auth.TokenCodec, dispatcher events.Dispatcher, logger *zap.Logger) *TokenService {
	return &TokenService{
		eventPublisher: eventPublisher{dispatcher: dispatcher, logger: logger},
		users:          users,
		codec:          codec,
		cfg:            cfg,
		logger:         logger,
	}
}

// Login authenticates by email and password and issues a token pair signed
// with the user's current keys. An unknown email and a wrong password yield
// the identical error.
func (s *TokenService) Login(ctx context.Context, email, password, ip string) (*domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		s.recordFailedAttempt(ctx, user)
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	if user.IsLocked(now) {
		return nil, domain.ErrAccountLocked
	}
	if !user.CanAuthenticate(now) {
		return nil, domain.ErrAccountDeactivated
	}

	updated := user.RecordSuccessfulLogin(now, ip)
	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, err
	}

	pair, err := s.issuePair(&updated)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventLoginSucceeded, &updated, events.LoginSucceededPayload{IP: ip})
	return pair, nil
}

// Refresh exchanges a live refresh token for a fresh pair. The token is
// verified against the user's current refresh signing key, so a token
// signed with a since-rotated key fails even before its own expiry. The
// refresh key itself is not rotated here: a live refresh token stays usable
// until it expires or is explicitly revoked.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	user, _, err := s.resolveRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if user.IsLocked(now) {
		return nil, domain.ErrAccountLocked
	}
	if !user.CanAuthenticate(now) {
		return nil, domain.ErrAccountDeactivated
	}

	return s.issuePair(user)
}

// Revoke rotates only the refresh signing key, invalidating every
// outstanding refresh token for the user. Outstanding access tokens stay
// valid until their own expiry.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	user, _, err := s.resolveRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	key, err := auth.NewSigningKey()
	if err != nil {
		return err
	}
	user.RefreshSigningKey = key
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.publish(ctx, events.EventTokensRevoked, user, events.TokensRevokedPayload{
		RefreshRevoked: true,
		Trigger:        "revoke",
	})
	return nil
}

// Logout rotates both signing keys, immediately invalidating every
// outstanding token of either type for the user.
func (s *TokenService) Logout(ctx context.Context, refreshToken string) error {
	user, _, err := s.resolveRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	if err := s.rotateBothKeys(ctx, user); err != nil {
		return err
	}

	s.publish(ctx, events.EventTokensRevoked, user, events.TokensRevokedPayload{
		AccessRevoked:  true,
		RefreshRevoked: true,
		Trigger:        "logout",
	})
	return nil
}

// AdminRevokeAllTokens performs the same dual rotation as Logout, keyed by
// user id for privileged callers. The HTTP layer gates it behind the admin
// surface.
func (s *TokenService) AdminRevokeAllTokens(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if err := s.rotateBothKeys(ctx, user); err != nil {
		return err
	}

	s.publish(ctx, events.EventTokensRevoked, user, events.TokensRevokedPayload{
		AccessRevoked:  true,
		RefreshRevoked: true,
		Trigger:        "admin",
	})
	return nil
}

// Introspect reports the status of any presented token without ever
// returning an error: invalid tokens yield an inactive result with a
// human-readable reason. Diagnostic only; nothing is gated on it.
func (s *TokenService) Introspect(ctx context.Context, tokenStr string) *domain.Introspection {
	claims, err := s.codec.Decode(tokenStr)
	if err != nil {
		return &domain.Introspection{Active: false, Reason: "malformed"}
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("introspect lookup failed", zap.Error(err))
		}
		return &domain.Introspection{Active: false, Reason: "user not found"}
	}

	var key string
	switch claims.Type {
	case domain.TokenTypeAccess:
		key = user.AccessSigningKey
	case domain.TokenTypeRefresh:
		key = user.RefreshSigningKey
	default:
		return &domain.Introspection{Active: false, Reason: "malformed"}
	}

	verified, err := s.codec.Verify(tokenStr, []byte(key))
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return &domain.Introspection{Active: false, Reason: "expired"}
		}
		return &domain.Introspection{Active: false, Reason: "signature invalid"}
	}

	token := auth.AuthTokenFromClaims(verified)
	return &domain.Introspection{
		Active:    true,
		UserID:    token.UserID,
		Email:     token.Email,
		Type:      token.Type,
		IssuedAt:  &token.IssuedAt,
		ExpiresAt: &token.ExpiresAt,
	}
}

// resolveRefreshToken proves ownership of a presented refresh token: cheap
// unverified decode for the subject id, user lookup, then authoritative
// verification against the current refresh key. A subject that resolves to
// no user surfaces as a bad token, never as a storage not-found.
func (s *TokenService) resolveRefreshToken(ctx context.Context, refreshToken string) (*domain.User, *auth.Claims, error) {
	unverified, err := s.codec.Decode(refreshToken)
	if err != nil {
		return nil, nil, domain.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, unverified.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrInvalidToken
		}
		return nil, nil, err
	}

	claims, err := s.codec.Verify(refreshToken, []byte(user.RefreshSigningKey))
	if err != nil {
		return nil, nil, err
	}
	if claims.Type != domain.TokenTypeRefresh {
		return nil, nil, domain.ErrInvalidToken
	}
	return user, claims, nil
}

func (s *TokenService) issuePair(user *domain.User) (*domain.TokenPair, error) {
	access, expiresAt, err := s.codec.Issue(
		user.ID, user.Email, domain.TokenTypeAccess, "",
		[]byte(user.AccessSigningKey), s.cfg.AccessTokenTTL())
	if err != nil {
		return nil, err
	}

	refresh, _, err := s.codec.Issue(
		user.ID, user.Email, domain.TokenTypeRefresh, uuid.NewString(),
		[]byte(user.RefreshSigningKey), s.cfg.RefreshTokenTTL())
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *TokenService) rotateBothKeys(ctx context.Context, user *domain.User) error {
	accessKey, err := auth.NewSigningKey()
	if err != nil {
		return err
	}
	refreshKey, err := auth.NewSigningKey()
	if err != nil {
		return err
	}
	user.AccessSigningKey = accessKey
	user.RefreshSigningKey = refreshKey
	return s.users.Update(ctx, user)
}

func (s *TokenService) recordFailedAttempt(ctx context.Context, user *domain.User) {
	now := time.Now()
	wasLocked := user.IsLocked(now)

	updated := user.RecordFailedLogin(now)
	if err := s.users.Update(ctx, &updated); err != nil {
		s.logger.Warn("failed to persist login attempt",
			zap.String("user_id", user.ID), zap.Error(err))
		return
	}

	locked := updated.IsLocked(now)
	s.publish(ctx, events.EventLoginFailed, &updated, events.LoginFailedPayload{
		Attempts: updated.FailedLoginAttempts,
		Locked:   locked,
	})
	if locked && !wasLocked && updated.LockedUntil != nil && updated.LockReason != nil {
		s.publish(ctx, events.EventAccountLocked, &updated, events.AccountLockedPayload{
			Reason:      *updated.LockReason,
			LockedUntil: *updated.LockedUntil,
		})
	}
}
