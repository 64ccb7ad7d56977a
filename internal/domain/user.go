package domain

import "time"

// AuthStatus represents the authentication lifecycle state of an account.
type AuthStatus string

const (
	AuthStatusPending   AuthStatus = "PENDING"
	AuthStatusActive    AuthStatus = "ACTIVE"
	AuthStatusInactive  AuthStatus = "INACTIVE"
	AuthStatusSuspended AuthStatus = "SUSPENDED"
	AuthStatusBlocked   AuthStatus = "BLOCKED"
)

// LockReason explains why an account was locked.
type LockReason string

const (
	LockReasonFailedAttempts LockReason = "multiple_failed_attempts"
	LockReasonAdmin          LockReason = "administrative"
)

const (
	// MaxFailedLoginAttempts is the threshold at which an account locks.
	MaxFailedLoginAttempts = 5
	// LockoutDuration is how long an automatic lock lasts.
	LockoutDuration = 30 * time.Minute
)

// statusTransitions is the full transition table. BLOCKED is terminal.
var statusTransitions = map[AuthStatus][]AuthStatus{
	AuthStatusPending:   {AuthStatusActive, AuthStatusBlocked},
	AuthStatusActive:    {AuthStatusInactive, AuthStatusSuspended, AuthStatusBlocked},
	AuthStatusInactive:  {AuthStatusActive, AuthStatusBlocked},
	AuthStatusSuspended: {AuthStatusActive, AuthStatusBlocked},
	AuthStatusBlocked:   {},
}

// User is the domain model for accounts managed by this service.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string

	AccessSigningKey  string
	RefreshSigningKey string

	IsActive      bool
	EmailVerified bool
	Status        AuthStatus

	FailedLoginAttempts int
	LockedUntil         *time.Time
	LockReason          *LockReason
	StatusReason        *string

	VerificationCode      *string
	VerificationExpiresAt *time.Time
	RenewalCode           *string
	RenewalExpiresAt      *time.Time

	LastLoginAt *time.Time
	LastLoginIP *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) canTransitionTo(target AuthStatus) bool {
	for _, allowed := range statusTransitions[u.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (u User) transition(target AuthStatus) (User, error) {
	if !u.canTransitionTo(target) {
		return u, &InvalidTransitionError{From: u.Status, To: target}
	}
	u.Status = target
	return u, nil
}

// Activate moves the account to ACTIVE, resetting the failed-attempt
// counter and clearing any lockout. Activating an already-active account
// is a no-op transition: lockout is independent of status, so this is the
// administrative unlock path.
func (u User) Activate() (User, error) {
	if u.Status != AuthStatusActive {
		next, err := u.transition(AuthStatusActive)
		if err != nil {
			return u, err
		}
		u = next
	}
	u.IsActive = true
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LockReason = nil
	u.StatusReason = nil
	return u, nil
}

// Deactivate moves the account to INACTIVE and flips the administrative
// switch off.
func (u User) Deactivate() (User, error) {
	next, err := u.transition(AuthStatusInactive)
	if err != nil {
		return u, err
	}
	next.IsActive = false
	return next, nil
}

// Suspend moves the account to SUSPENDED, recording the reason.
func (u User) Suspend(reason string) (User, error) {
	next, err := u.transition(AuthStatusSuspended)
	if err != nil {
		return u, err
	}
	next.StatusReason = &reason
	return next, nil
}

// Block moves the account to BLOCKED. Terminal: no transition out of
// BLOCKED ever succeeds.
func (u User) Block(reason string) (User, error) {
	next, err := u.transition(AuthStatusBlocked)
	if err != nil {
		return u, err
	}
	next.IsActive = false
	next.StatusReason = &reason
	return next, nil
}

// IsLocked reports whether a lockout is in effect at the given instant.
// A LockedUntil in the past counts as unlocked; the field is interpreted
// lazily, never eagerly cleared.
func (u User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// CanAuthenticate is the single gate consulted before any token is issued.
func (u User) CanAuthenticate(now time.Time) bool {
	return u.IsActive && u.Status == AuthStatusActive && !u.IsLocked(now)
}

// RecordFailedLogin increments the failed-attempt counter and, once the
// threshold is reached, locks the account. This is the sole automatic
// lockout trigger.
func (u User) RecordFailedLogin(now time.Time) User {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= MaxFailedLoginAttempts {
		until := now.Add(LockoutDuration)
		reason := LockReasonFailedAttempts
		u.LockedUntil = &until
		u.LockReason = &reason
	}
	return u
}

// RecordSuccessfulLogin stamps the login and resets the failed-attempt
// counter. It does not otherwise change status.
func (u User) RecordSuccessfulLogin(now time.Time, ip string) User {
	u.FailedLoginAttempts = 0
	u.LastLoginAt = &now
	if ip != "" {
		u.LastLoginIP = &ip
	}
	return u
}

// IssueVerificationCode stores a fresh single-use email verification code.
func (u User) IssueVerificationCode(code string, expiresAt time.Time) User {
	u.VerificationCode = &code
	u.VerificationExpiresAt = &expiresAt
	return u
}

// VerifyEmail consumes the pending verification code. On success the code
// pair is cleared and a PENDING account is promoted to ACTIVE.
func (u User) VerifyEmail(code string, now time.Time) (User, error) {
	if u.EmailVerified {
		return u, ErrAlreadyVerified
	}
	if u.VerificationCode == nil || u.VerificationExpiresAt == nil {
		return u, ErrInvalidCode
	}
	if *u.VerificationCode != code {
		return u, ErrInvalidCode
	}
	if now.After(*u.VerificationExpiresAt) {
		return u, ErrCodeExpired
	}

	u.EmailVerified = true
	u.VerificationCode = nil
	u.VerificationExpiresAt = nil

	if u.Status == AuthStatusPending {
		return u.Activate()
	}
	return u, nil
}

// IssueRenewalCode stores a fresh single-use signature renewal code. It is
// scoped to the renewal flow and must never be confused with the email
// verification code.
func (u User) IssueRenewalCode(code string, expiresAt time.Time) User {
	u.RenewalCode = &code
	u.RenewalExpiresAt = &expiresAt
	return u
}

// ConsumeRenewalCode validates and clears the pending renewal code.
func (u User) ConsumeRenewalCode(code string, now time.Time) (User, error) {
	if u.RenewalCode == nil || u.RenewalExpiresAt == nil {
		return u, ErrNoRenewalRequested
	}
	if *u.RenewalCode != code {
		return u, ErrInvalidCode
	}
	if now.After(*u.RenewalExpiresAt) {
		return u, ErrCodeExpired
	}
	u.RenewalCode = nil
	u.RenewalExpiresAt = nil
	return u, nil
}
