package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingUser() User {
	return User{
		ID:                "u-1",
		Email:             "user@example.com",
		AccessSigningKey:  "access-key",
		RefreshSigningKey: "refresh-key",
		IsActive:          true,
		Status:            AuthStatusPending,
	}
}

func activeUser() User {
	u := pendingUser()
	u.Status = AuthStatusActive
	u.EmailVerified = true
	return u
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    AuthStatus
		apply   func(User) (User, error)
		want    AuthStatus
		wantErr bool
	}{
		{"pending to active", AuthStatusPending, User.Activate, AuthStatusActive, false},
		{"pending to blocked", AuthStatusPending, func(u User) (User, error) { return u.Block("fraud") }, AuthStatusBlocked, false},
		{"pending to inactive is illegal", AuthStatusPending, User.Deactivate, AuthStatusPending, true},
		{"pending to suspended is illegal", AuthStatusPending, func(u User) (User, error) { return u.Suspend("x") }, AuthStatusPending, true},
		{"active to inactive", AuthStatusActive, User.Deactivate, AuthStatusInactive, false},
		{"active to suspended", AuthStatusActive, func(u User) (User, error) { return u.Suspend("abuse") }, AuthStatusSuspended, false},
		{"active to blocked", AuthStatusActive, func(u User) (User, error) { return u.Block("fraud") }, AuthStatusBlocked, false},
		{"inactive to active", AuthStatusInactive, User.Activate, AuthStatusActive, false},
		{"inactive to suspended is illegal", AuthStatusInactive, func(u User) (User, error) { return u.Suspend("x") }, AuthStatusInactive, true},
		{"suspended to active", AuthStatusSuspended, User.Activate, AuthStatusActive, false},
		{"blocked is terminal for activate", AuthStatusBlocked, User.Activate, AuthStatusBlocked, true},
		{"blocked is terminal for deactivate", AuthStatusBlocked, User.Deactivate, AuthStatusBlocked, true},
		{"blocked is terminal for suspend", AuthStatusBlocked, func(u User) (User, error) { return u.Suspend("x") }, AuthStatusBlocked, true},
		{"blocked is terminal for block", AuthStatusBlocked, func(u User) (User, error) { return u.Block("x") }, AuthStatusBlocked, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := pendingUser()
			u.Status = tt.from

			next, err := tt.apply(u)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsInvalidTransition(err))
				assert.Contains(t, err.Error(), string(tt.from))
				assert.Equal(t, tt.from, next.Status, "failed transition must not change state")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.Status)
		})
	}
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	u := activeUser()
	next, err := u.Block("fraud")
	require.NoError(t, err)

	assert.Equal(t, AuthStatusActive, u.Status)
	assert.Equal(t, AuthStatusBlocked, next.Status)
	assert.False(t, next.IsActive)
}

func TestActivateClearsLockout(t *testing.T) {
	u := pendingUser()
	until := time.Now().Add(time.Hour)
	reason := LockReasonFailedAttempts
	u.FailedLoginAttempts = 5
	u.LockedUntil = &until
	u.LockReason = &reason

	next, err := u.Activate()
	require.NoError(t, err)

	assert.Zero(t, next.FailedLoginAttempts)
	assert.Nil(t, next.LockedUntil)
	assert.Nil(t, next.LockReason)
	assert.True(t, next.IsActive)
}

func TestActivateOnActiveAccountUnlocks(t *testing.T) {
	u := activeUser()
	until := time.Now().Add(time.Hour)
	u.LockedUntil = &until
	u.FailedLoginAttempts = 5

	next, err := u.Activate()
	require.NoError(t, err)
	assert.Equal(t, AuthStatusActive, next.Status)
	assert.Nil(t, next.LockedUntil)
	assert.Zero(t, next.FailedLoginAttempts)
}

func TestDeactivateClearsAdministrativeSwitch(t *testing.T) {
	next, err := activeUser().Deactivate()
	require.NoError(t, err)
	assert.False(t, next.IsActive)
	assert.Equal(t, AuthStatusInactive, next.Status)
}

func TestIsLockedInterpretsLazily(t *testing.T) {
	now := time.Now()
	u := activeUser()

	assert.False(t, u.IsLocked(now), "no lockout set")

	past := now.Add(-time.Minute)
	u.LockedUntil = &past
	assert.False(t, u.IsLocked(now), "elapsed lockout counts as unlocked")

	future := now.Add(time.Minute)
	u.LockedUntil = &future
	assert.True(t, u.IsLocked(now))
}

func TestCanAuthenticate(t *testing.T) {
	now := time.Now()

	u := activeUser()
	assert.True(t, u.CanAuthenticate(now))

	inactive := activeUser()
	inactive.IsActive = false
	assert.False(t, inactive.CanAuthenticate(now))

	pending := pendingUser()
	assert.False(t, pending.CanAuthenticate(now))

	locked := activeUser()
	future := now.Add(time.Minute)
	locked.LockedUntil = &future
	assert.False(t, locked.CanAuthenticate(now))
}

func TestRecordFailedLoginLocksAtThreshold(t *testing.T) {
	now := time.Now()
	u := activeUser()

	for i := 0; i < MaxFailedLoginAttempts-1; i++ {
		u = u.RecordFailedLogin(now)
		assert.False(t, u.IsLocked(now), "attempt %d must not lock", i+1)
	}

	u = u.RecordFailedLogin(now)
	require.True(t, u.IsLocked(now))
	require.NotNil(t, u.LockedUntil)
	require.NotNil(t, u.LockReason)
	assert.Equal(t, LockReasonFailedAttempts, *u.LockReason)
	assert.WithinDuration(t, now.Add(LockoutDuration), *u.LockedUntil, time.Second)
}

func TestRecordSuccessfulLoginResetsCounter(t *testing.T) {
	now := time.Now()
	u := activeUser()
	u.FailedLoginAttempts = 3

	u = u.RecordSuccessfulLogin(now, "203.0.113.7")

	assert.Zero(t, u.FailedLoginAttempts)
	require.NotNil(t, u.LastLoginAt)
	require.NotNil(t, u.LastLoginIP)
	assert.Equal(t, "203.0.113.7", *u.LastLoginIP)
	assert.Equal(t, AuthStatusActive, u.Status, "login must not change status")
}

func TestVerifyEmailPromotesPending(t *testing.T) {
	now := time.Now()
	u := pendingUser().IssueVerificationCode("code-1", now.Add(time.Hour))

	verified, err := u.VerifyEmail("code-1", now)
	require.NoError(t, err)

	assert.True(t, verified.EmailVerified)
	assert.Equal(t, AuthStatusActive, verified.Status)
	assert.Nil(t, verified.VerificationCode, "code is single-use")
	assert.Nil(t, verified.VerificationExpiresAt)

	_, err = verified.VerifyEmail("code-1", now)
	assert.ErrorIs(t, err, ErrAlreadyVerified, "replay must fail")
}

func TestVerifyEmailRejections(t *testing.T) {
	now := time.Now()

	noCode := pendingUser()
	_, err := noCode.VerifyEmail("anything", now)
	assert.ErrorIs(t, err, ErrInvalidCode)

	wrong := pendingUser().IssueVerificationCode("code-1", now.Add(time.Hour))
	_, err = wrong.VerifyEmail("code-2", now)
	assert.ErrorIs(t, err, ErrInvalidCode)

	expired := pendingUser().IssueVerificationCode("code-1", now.Add(-time.Minute))
	_, err = expired.VerifyEmail("code-1", now)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestConsumeRenewalCode(t *testing.T) {
	now := time.Now()

	_, err := activeUser().ConsumeRenewalCode("c", now)
	assert.ErrorIs(t, err, ErrNoRenewalRequested)

	issued := activeUser().IssueRenewalCode("c-1", now.Add(time.Hour))
	_, err = issued.ConsumeRenewalCode("c-2", now)
	assert.ErrorIs(t, err, ErrInvalidCode)

	stale := activeUser().IssueRenewalCode("c-1", now.Add(-time.Minute))
	_, err = stale.ConsumeRenewalCode("c-1", now)
	assert.ErrorIs(t, err, ErrCodeExpired)

	consumed, err := issued.ConsumeRenewalCode("c-1", now)
	require.NoError(t, err)
	assert.Nil(t, consumed.RenewalCode)
	assert.Nil(t, consumed.RenewalExpiresAt)
}

func TestRenewalCodeIsDistinctFromVerificationCode(t *testing.T) {
	now := time.Now()
	u := pendingUser().
		IssueVerificationCode("verify-me", now.Add(time.Hour)).
		IssueRenewalCode("renew-me", now.Add(time.Hour))

	_, err := u.ConsumeRenewalCode("verify-me", now)
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = u.VerifyEmail("renew-me", now)
	assert.ErrorIs(t, err, ErrInvalidCode)
}
