package events

import (
	"time"

	"github.com/spec-kit/auth-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered        EventType = "user_registered"
	EventVerificationRequested EventType = "verification_requested"
	EventEmailVerified         EventType = "email_verified"
	EventLoginSucceeded        EventType = "login_succeeded"
	EventLoginFailed           EventType = "login_failed"
	EventAccountLocked         EventType = "account_locked"
	EventStatusChanged         EventType = "account_status_changed"
	EventRenewalRequested      EventType = "renewal_requested"
	EventPasswordRenewed       EventType = "password_renewed"
	EventTokensRevoked         EventType = "tokens_revoked"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Email     string      `json:"email,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// VerificationRequestedPayload carries the one-time code handed to the
// notification collaborator. It is never returned to API callers.
type VerificationRequestedPayload struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RenewalRequestedPayload mirrors VerificationRequestedPayload for the
// signature renewal flow.
type RenewalRequestedPayload struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginFailedPayload reports a failed attempt and the counter after it.
type LoginFailedPayload struct {
	Attempts int  `json:"attempts"`
	Locked   bool `json:"locked"`
}

// LoginSucceededPayload records where the login came from.
type LoginSucceededPayload struct {
	IP string `json:"ip,omitempty"`
}

// AccountLockedPayload reports an automatic or administrative lock.
type AccountLockedPayload struct {
	Reason      domain.LockReason `json:"reason"`
	LockedUntil time.Time         `json:"locked_until"`
}

// StatusChangedPayload reports a state machine transition.
type StatusChangedPayload struct {
	OldStatus domain.AuthStatus `json:"old_status"`
	NewStatus domain.AuthStatus `json:"new_status"`
	Reason    string            `json:"reason,omitempty"`
}

// TokensRevokedPayload reports which token classes were invalidated by a
// key rotation.
type TokensRevokedPayload struct {
	AccessRevoked  bool   `json:"access_revoked"`
	RefreshRevoked bool   `json:"refresh_revoked"`
	Trigger        string `json:"trigger"`
}
