package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
)

func TestRegisterCreatesPendingUser(t *testing.T) {
	env := newTestEnv(t)
	requests := env.collectEvents(events.EventVerificationRequested)

	user, err := env.accounts.Register(context.Background(), "New User", "new@example.com", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, domain.AuthStatusPending, user.Status)
	assert.True(t, user.IsActive)
	assert.False(t, user.EmailVerified)
	assert.NotEmpty(t, user.AccessSigningKey)
	assert.NotEmpty(t, user.RefreshSigningKey)
	assert.NotEqual(t, user.AccessSigningKey, user.RefreshSigningKey)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	require.NotNil(t, user.VerificationCode)
	require.NotNil(t, user.VerificationExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *user.VerificationExpiresAt, 5*time.Second)

	require.Len(t, *requests, 1)
	payload, ok := (*requests)[0].Payload.(events.VerificationRequestedPayload)
	require.True(t, ok)
	assert.Equal(t, *user.VerificationCode, payload.Code)

	// A pending account cannot log in yet.
	_, err = env.tokens.Login(context.Background(), "new@example.com", "s3cret", "")
	assert.ErrorIs(t, err, domain.ErrAccountDeactivated)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveUser(t, "u-1", "user@example.com")

	_, err := env.accounts.Register(context.Background(), "Dup", "user@example.com", "s3cret")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestVerifyEmailPromotesAndIsSingleUse(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.accounts.Register(context.Background(), "New User", "new@example.com", "s3cret")
	require.NoError(t, err)
	code := *user.VerificationCode

	verified, err := env.accounts.VerifyEmail(context.Background(), "new@example.com", code)
	require.NoError(t, err)
	assert.Equal(t, domain.AuthStatusActive, verified.Status)
	assert.True(t, verified.EmailVerified)
	assert.Nil(t, verified.VerificationCode)

	// Now the account can authenticate.
	_, err = env.tokens.Login(context.Background(), "new@example.com", "s3cret", "")
	require.NoError(t, err)

	// Replaying the consumed code fails.
	_, err = env.accounts.VerifyEmail(context.Background(), "new@example.com", code)
	assert.ErrorIs(t, err, domain.ErrAlreadyVerified)
}

func TestVerifyEmailWrongCode(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.accounts.Register(context.Background(), "New User", "new@example.com", "s3cret")
	require.NoError(t, err)

	_, err = env.accounts.VerifyEmail(context.Background(), "new@example.com", "wrong-code")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = env.accounts.VerifyEmail(context.Background(), "ghost@example.com", "any")
	assert.ErrorIs(t, err, domain.ErrInvalidCode, "unknown email must not be distinguishable")
}

func TestRequestVerificationIsSilentForUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	requests := env.collectEvents(events.EventVerificationRequested)

	require.NoError(t, env.accounts.RequestVerification(context.Background(), "ghost@example.com"))
	assert.Empty(t, *requests)

	env.seedActiveUser(t, "u-1", "verified@example.com")
	require.NoError(t, env.accounts.RequestVerification(context.Background(), "verified@example.com"))
	assert.Empty(t, *requests, "already-verified accounts are silently skipped")
}

func TestRequestVerificationReissuesCode(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.accounts.Register(context.Background(), "New User", "new@example.com", "s3cret")
	require.NoError(t, err)
	firstCode := *user.VerificationCode

	require.NoError(t, env.accounts.RequestVerification(context.Background(), "new@example.com"))

	stored := env.mustGet(t, user.ID)
	require.NotNil(t, stored.VerificationCode)
	assert.NotEqual(t, firstCode, *stored.VerificationCode)

	// The superseded code no longer verifies.
	_, err = env.accounts.VerifyEmail(context.Background(), "new@example.com", firstCode)
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestAdminStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveUser(t, "u-1", "user@example.com")
	changes := env.collectEvents(events.EventStatusChanged)

	suspended, err := env.accounts.Suspend(context.Background(), "u-1", "abuse")
	require.NoError(t, err)
	assert.Equal(t, domain.AuthStatusSuspended, suspended.Status)
	require.NotNil(t, suspended.StatusReason)
	assert.Equal(t, "abuse", *suspended.StatusReason)

	reactivated, err := env.accounts.Activate(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AuthStatusActive, reactivated.Status)

	blocked, err := env.accounts.Block(context.Background(), "u-1", "fraud")
	require.NoError(t, err)
	assert.Equal(t, domain.AuthStatusBlocked, blocked.Status)
	assert.False(t, blocked.IsActive)

	// Terminal: nothing moves a blocked account.
	_, err = env.accounts.Activate(context.Background(), "u-1")
	require.Error(t, err)
	assert.True(t, domain.IsInvalidTransition(err))

	assert.Len(t, *changes, 3)
}

func TestAdminTransitionsUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.accounts.Activate(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestActivateUnlocksLockedAccount(t *testing.T) {
	env := newTestEnv(t)
	env.seedActiveUser(t, "u-1", "user@example.com")

	for i := 0; i < domain.MaxFailedLoginAttempts; i++ {
		_, err := env.tokens.Login(context.Background(), "user@example.com", "wrong", "")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
	_, err := env.tokens.Login(context.Background(), "user@example.com", testPassword, "")
	require.ErrorIs(t, err, domain.ErrAccountLocked)

	// Admin activate clears the lockout even though the window has not
	// elapsed.
	_, err = env.accounts.Activate(context.Background(), "u-1")
	require.NoError(t, err)

	_, err = env.tokens.Login(context.Background(), "user@example.com", testPassword, "")
	assert.NoError(t, err)
}

func TestRegisterKeysHaveRequiredEntropy(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.accounts.Register(context.Background(), "New User", "new@example.com", "s3cret")
	require.NoError(t, err)

	// Both keys decode to the codec key size; see auth.NewSigningKey.
	for _, key := range []string{user.AccessSigningKey, user.RefreshSigningKey} {
		other, err := auth.NewSigningKey()
		require.NoError(t, err)
		assert.Len(t, key, len(other))
	}
}
