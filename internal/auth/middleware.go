package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller as handed to the
// authorization layer: the verified identity plus its token claims.
type Principal struct {
	User  *domain.User
	Token domain.AuthToken
}

// Middleware validates bearer access tokens and loads the principal. The
// user record is re-fetched on every request so verification always runs
// against the current access signing key; a rotated key fails here even if
// the token itself has not expired.
type Middleware struct {
	codec *TokenCodec
	users repository.UserRepository
}

// NewMiddleware constructs the bearer-token middleware.
func NewMiddleware(codec *TokenCodec, users repository.UserRepository) *Middleware {
	return &Middleware{codec: codec, users: users}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	// Unverified decode only locates the key owner. Verify below is the
	// authoritative check.
	unverified, err := m.codec.Decode(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.Context(), unverified.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid token")
		}
		return apperrors.MapError(err)
	}

	claims, err := m.codec.Verify(parts[1], []byte(user.AccessSigningKey))
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return apperrors.NewUnauthorized("token expired")
		}
		return apperrors.NewUnauthorized("invalid token")
	}
	if claims.Type != domain.TokenTypeAccess {
		return apperrors.NewUnauthorized("access token required")
	}

	if !user.CanAuthenticate(time.Now()) {
		return apperrors.NewForbidden("account deactivated")
	}

	c.Locals(principalKey, &Principal{User: user, Token: AuthTokenFromClaims(claims)})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
