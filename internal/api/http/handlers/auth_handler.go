package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/service"
)

// AuthHandler exposes the token lifecycle endpoints.
type AuthHandler struct {
	tokens *service.TokenService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	pair, err := h.tokens.Login(c.Context(), req.Email, req.Password, c.IP())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresAt:    pair.ExpiresAt,
	}})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	req, err := parseRefreshRequest(c)
	if err != nil {
		return err
	}

	pair, err := h.tokens.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresAt:    pair.ExpiresAt,
	}})
}

// Revoke handles POST /auth/revoke: invalidates all refresh tokens while
// leaving access tokens to their own expiry.
func (h *AuthHandler) Revoke(c *fiber.Ctx) error {
	req, err := parseRefreshRequest(c)
	if err != nil {
		return err
	}
	if err := h.tokens.Revoke(c.Context(), req.RefreshToken); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Logout handles POST /auth/logout: invalidates every outstanding token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	req, err := parseRefreshRequest(c)
	if err != nil {
		return err
	}
	if err := h.tokens.Logout(c.Context(), req.RefreshToken); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Introspect handles POST /auth/introspect. Fail-soft: always 200 with an
// active flag and reason.
func (h *AuthHandler) Introspect(c *fiber.Ctx) error {
	var req dto.IntrospectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Token == "" {
		return fiber.NewError(http.StatusBadRequest, "token required")
	}
	return c.JSON(fiber.Map{"data": h.tokens.Introspect(c.Context(), req.Token)})
}

// AdminRevokeAll handles POST /admin/users/:id/revoke-tokens.
func (h *AuthHandler) AdminRevokeAll(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return fiber.NewError(http.StatusBadRequest, "user id required")
	}
	if err := h.tokens.AdminRevokeAllTokens(c.Context(), userID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseRefreshRequest(c *fiber.Ctx) (*dto.RefreshRequest, error) {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.RefreshToken == "" {
		return nil, fiber.NewError(http.StatusBadRequest, "refresh_token required")
	}
	return &req, nil
}
