package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tunepulse/tunepulse-api/internal/api/dto"
	"github.com/tunepulse/tunepulse-api/internal/auth"
	"github.com/tunepulse/tunepulse-api/internal/service"
	apperrors "github.com/tunepulse/tunepulse-api/pkg/util/errorutil"
)

// AccountsHandler exposes registration, login and the token-gated flows.
type AccountsHandler struct {
	accounts *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accounts *service.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accounts}
}

// Register handles POST /accounts/register.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.accounts.Register(c.UserContext(), req.UserName, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.OK(
		"Account created. Please check your email to verify your account.",
		fiber.Map{"user": dto.NewUserResponse(user)},
	))
}

// Login handles POST /accounts/login.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	session, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.OK("Logged in successfully.", fiber.Map{
		"user": dto.NewUserResponse(session.User),
		"auth": dto.AuthResponse{Token: session.Token, ExpiresAt: session.ExpiresAt},
	}))
}

// Me handles GET /accounts/me.
func (h *AccountsHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(dto.OK("OK", fiber.Map{"user": dto.NewUserResponse(principal.User)}))
}

// Verify handles POST /accounts/verify. A {userId} body issues and mails a
// fresh verification token; a {token} body spends it.
func (h *AccountsHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	switch {
	case req.UserID != "":
		if err := h.accounts.RequestVerification(c.UserContext(), req.UserID); err != nil {
			return err
		}
		return c.JSON(dto.OK("Verification email sent.", nil))
	case req.Token != "":
		user, err := h.accounts.ConfirmVerification(c.UserContext(), req.Token)
		if err != nil {
			return err
		}
		return c.JSON(dto.OK("Account verified successfully.", fiber.Map{"user": dto.NewUserResponse(user)}))
	default:
		return apperrors.NewValidationError("userId or token is required", nil)
	}
}

// RequestPasswordReset handles POST /accounts/password-reset-request.
func (h *AccountsHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.accounts.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(dto.OK("Password reset email sent.", nil))
}

// ResetPassword handles PUT /accounts/password-reset.
func (h *AccountsHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if _, err := h.accounts.ResetPassword(c.UserContext(), req.Token, req.Password, req.ConfirmPassword); err != nil {
		return err
	}
	return c.JSON(dto.OK("Password has been reset successfully.", nil))
}

// ConfirmEmailChange handles POST /accounts/confirm-email.
func (h *AccountsHandler) ConfirmEmailChange(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.accounts.ConfirmEmailChange(c.UserContext(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Email address confirmed successfully.", fiber.Map{"user": dto.NewUserResponse(user)}))
}
