package domain

import "time"

// TokenType tags every issued token with its purpose.
type TokenType string

const (
	TokenTypeAccess            TokenType = "access"
	TokenTypeRefresh           TokenType = "refresh"
	TokenTypeResetPassword     TokenType = "reset_password"
	TokenTypeEmailVerification TokenType = "email_verification"
)

// AuthToken is the transient view of a presented token. It is reconstructed
// from the token string, never persisted; Revoked is derived from whether
// the signing key that produced it has since changed.
type AuthToken struct {
	ID        string
	UserID    string
	Email     string
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// TokenPair is what a successful login or refresh returns: the short-lived
// access token plus the longer-lived refresh token.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Introspection is the fail-soft status of a presented token. Inactive
// results carry a human-readable reason instead of an error.
type Introspection struct {
	Active    bool       `json:"active"`
	Reason    string     `json:"reason,omitempty"`
	UserID    string     `json:"sub,omitempty"`
	Email     string     `json:"email,omitempty"`
	Type      TokenType  `json:"type,omitempty"`
	IssuedAt  *time.Time `json:"iat,omitempty"`
	ExpiresAt *time.Time `json:"exp,omitempty"`
}
