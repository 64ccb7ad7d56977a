package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/auth-service/internal/domain"
)

// DomainError standardizes application errors. Message and code are safe
// for callers; internal fields (hashes, signing keys) never appear here.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// sentinelMapping translates domain sentinels into stable wire errors.
var sentinelMapping = []struct {
	target error
	code   string
	status int
}{
	{domain.ErrInvalidCredentials, "INVALID_CREDENTIALS", http.StatusUnauthorized},
	{domain.ErrAccountDeactivated, "ACCOUNT_DEACTIVATED", http.StatusForbidden},
	{domain.ErrAccountLocked, "ACCOUNT_LOCKED", http.StatusLocked},
	{domain.ErrInvalidToken, "INVALID_TOKEN", http.StatusUnauthorized},
	{domain.ErrTokenExpired, "TOKEN_EXPIRED", http.StatusUnauthorized},
	{domain.ErrUserNotFound, "NOT_FOUND", http.StatusNotFound},
	{domain.ErrEmailTaken, "EMAIL_TAKEN", http.StatusConflict},
	{domain.ErrInvalidCode, "INVALID_CODE", http.StatusBadRequest},
	{domain.ErrCodeExpired, "CODE_EXPIRED", http.StatusBadRequest},
	{domain.ErrNoRenewalRequested, "RENEWAL_NOT_REQUESTED", http.StatusBadRequest},
	{domain.ErrAlreadyVerified, "ALREADY_VERIFIED", http.StatusConflict},
}

// ToDomainError converts any error into a DomainError suitable for the
// wire. Domain sentinels keep their own message; everything unrecognized
// collapses into an opaque internal error.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	for _, m := range sentinelMapping {
		if errors.Is(err, m.target) {
			return NewDomainError(m.code, m.target.Error(), m.status, nil)
		}
	}

	var transitionErr *domain.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return NewDomainError("INVALID_STATE_TRANSITION", transitionErr.Error(), http.StatusConflict, map[string]any{
			"from": string(transitionErr.From),
			"to":   string(transitionErr.To),
		})
	}

	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}

	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	return ToDomainError(err)
}
