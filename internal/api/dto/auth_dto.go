package dto

import "time"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token for refresh, revoke and logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// IntrospectRequest carries any token for inspection.
type IntrospectRequest struct {
	Token string `json:"token"`
}

// VerifyEmailRequest consumes an email verification code.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// EmailRequest covers the anti-enumeration endpoints that take only an
// email: verification resend and renewal request.
type EmailRequest struct {
	Email string `json:"email"`
}

// RenewalConfirmRequest finishes the signature renewal flow.
type RenewalConfirmRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// StatusChangeRequest carries an optional reason for suspend/block.
type StatusChangeRequest struct {
	Reason string `json:"reason"`
}

// TokenPairResponse is the standard response for login and refresh.
type TokenPairResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// UserResponse is the caller-safe view of an account. Password hashes and
// signing keys never leave the service.
type UserResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Status        string     `json:"status"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
}
