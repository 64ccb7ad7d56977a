package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials covers both unknown email and wrong password. The
// two cases are deliberately indistinguishable to resist account
// enumeration.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrAccountDeactivated is returned when credentials check out but the
// account cannot authenticate.
var ErrAccountDeactivated = errors.New("account deactivated")

// ErrAccountLocked is returned while a lockout window is in effect.
var ErrAccountLocked = errors.New("account temporarily locked")

// ErrInvalidToken covers malformed tokens, bad signatures and tokens signed
// with a since-rotated key.
var ErrInvalidToken = errors.New("invalid token")

// ErrTokenExpired is returned for tokens past their expiry claim.
var ErrTokenExpired = errors.New("token expired")

// ErrUserNotFound is returned on admin/lookup paths only, never on login.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when registering an already-known email.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCode is returned for a verification or renewal code mismatch.
var ErrInvalidCode = errors.New("invalid code")

// ErrCodeExpired is returned for a code past its window.
var ErrCodeExpired = errors.New("code expired")

// ErrNoRenewalRequested is returned when confirming a renewal that was
// never requested.
var ErrNoRenewalRequested = errors.New("no renewal requested")

// ErrAlreadyVerified is returned when verifying an already-verified email.
var ErrAlreadyVerified = errors.New("email already verified")

// InvalidTransitionError reports an illegal auth status transition, naming
// the attempted source and target states.
type InvalidTransitionError struct {
	From AuthStatus
	To   AuthStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}
