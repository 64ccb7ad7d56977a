package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/service"
)

// Me returns the identity loaded by the bearer middleware: the contract
// handed to the authorization layer.
func Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return c.JSON(fiber.Map{"data": toUserResponse(principal.User)})
}

// AccountsHandler exposes registration, verification, signature renewal and
// the admin status endpoints.
type AccountsHandler struct {
	accounts *service.AccountService
	renewals *service.RenewalService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accounts *service.AccountService, renewals *service.RenewalService) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, renewals: renewals}
}

// Register handles POST /auth/register.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name, email, password required")
	}

	user, err := h.accounts.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": toUserResponse(user)})
}

// RequestVerification handles POST /auth/verify/request. Always 202.
func (h *AccountsHandler) RequestVerification(c *fiber.Ctx) error {
	req, err := parseEmailRequest(c)
	if err != nil {
		return err
	}
	if err := h.accounts.RequestVerification(c.Context(), req.Email); err != nil {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}

// VerifyEmail handles POST /auth/verify/confirm.
func (h *AccountsHandler) VerifyEmail(c *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Code == "" {
		return fiber.NewError(http.StatusBadRequest, "email and code required")
	}

	user, err := h.accounts.VerifyEmail(c.Context(), req.Email, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": toUserResponse(user)})
}

// RequestRenewal handles POST /auth/renewal/request. Always 202 whether or
// not the account exists.
func (h *AccountsHandler) RequestRenewal(c *fiber.Ctx) error {
	req, err := parseEmailRequest(c)
	if err != nil {
		return err
	}
	if err := h.renewals.Request(c.Context(), req.Email); err != nil {
		return err
	}
	return c.SendStatus(http.StatusAccepted)
}

// ConfirmRenewal handles POST /auth/renewal/confirm.
func (h *AccountsHandler) ConfirmRenewal(c *fiber.Ctx) error {
	var req dto.RenewalConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "email, code, new_password required")
	}

	if err := h.renewals.Confirm(c.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Activate handles POST /admin/users/:id/activate.
func (h *AccountsHandler) Activate(c *fiber.Ctx) error {
	return h.applyStatusChange(c, func(userID, _ string) (*domain.User, error) {
		return h.accounts.Activate(c.Context(), userID)
	})
}

// Deactivate handles POST /admin/users/:id/deactivate.
func (h *AccountsHandler) Deactivate(c *fiber.Ctx) error {
	return h.applyStatusChange(c, func(userID, _ string) (*domain.User, error) {
		return h.accounts.Deactivate(c.Context(), userID)
	})
}

// Suspend handles POST /admin/users/:id/suspend.
func (h *AccountsHandler) Suspend(c *fiber.Ctx) error {
	return h.applyStatusChange(c, func(userID, reason string) (*domain.User, error) {
		return h.accounts.Suspend(c.Context(), userID, reason)
	})
}

// Block handles POST /admin/users/:id/block.
func (h *AccountsHandler) Block(c *fiber.Ctx) error {
	return h.applyStatusChange(c, func(userID, reason string) (*domain.User, error) {
		return h.accounts.Block(c.Context(), userID, reason)
	})
}

func (h *AccountsHandler) applyStatusChange(c *fiber.Ctx, fn func(userID, reason string) (*domain.User, error)) error {
	userID := c.Params("id")
	if userID == "" {
		return fiber.NewError(http.StatusBadRequest, "user id required")
	}

	var req dto.StatusChangeRequest
	_ = c.BodyParser(&req)

	user, err := fn(userID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": toUserResponse(user)})
}

func parseEmailRequest(c *fiber.Ctx) (*dto.EmailRequest, error) {
	var req dto.EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" {
		return nil, fiber.NewError(http.StatusBadRequest, "email required")
	}
	return &req, nil
}

func toUserResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Status:        string(user.Status),
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
		LastLoginAt:   user.LastLoginAt,
	}
}
