package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/auth-service/internal/domain"
)

// allowedMethods restricts verification to the symmetric HMAC family. Each
// user's key is a private symmetric secret; asymmetric methods are never
// accepted.
var allowedMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// Claims describes the JWT payload. The wire contract is
// {sub, email, type, iat, exp, iss, aud}; refresh tokens also carry tokenId.
type Claims struct {
	Email   string           `json:"email"`
	Type    domain.TokenType `json:"type"`
	TokenID string           `json:"tokenId,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec turns payloads into signed, time-limited token strings and
// back, against a caller-supplied symmetric key. It holds no keys itself:
// callers must fetch the owning user's current key for every operation.
type TokenCodec struct {
	issuer   string
	audience string
}

// NewTokenCodec builds a codec enforcing the given issuer and audience.
func NewTokenCodec(issuer, audience string) *TokenCodec {
	return &TokenCodec{issuer: issuer, audience: audience}
}

// Issue signs a token of the given type for the subject, expiring after ttl.
func (c *TokenCodec) Issue(userID, email string, tokenType domain.TokenType, tokenID string, key []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		Email:   email,
		Type:    tokenType,
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Decode extracts claims without verifying signature or expiry. It exists
// only to cheaply pull the subject id before the key lookup; its output
// must never feed an authorization decision.
func (c *TokenCodec) Decode(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods(allowedMethods))
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// Verify is the authoritative check: signature against the supplied key,
// expiry at wall-clock time with no skew window, and issuer/audience match.
func (c *TokenCodec) Verify(tokenStr string, key []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(token *jwt.Token) (interface{}, error) { return key, nil },
		jwt.WithValidMethods(allowedMethods),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// AuthTokenFromClaims converts verified claims into the transient domain
// token view.
func AuthTokenFromClaims(claims *Claims) domain.AuthToken {
	token := domain.AuthToken{
		ID:     claims.TokenID,
		UserID: claims.Subject,
		Email:  claims.Email,
		Type:   claims.Type,
	}
	if claims.IssuedAt != nil {
		token.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		token.ExpiresAt = claims.ExpiresAt.Time
	}
	return token
}
