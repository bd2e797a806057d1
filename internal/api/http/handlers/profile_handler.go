package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tunepulse/tunepulse-api/internal/api/dto"
	"github.com/tunepulse/tunepulse-api/internal/auth"
	"github.com/tunepulse/tunepulse-api/internal/service"
	apperrors "github.com/tunepulse/tunepulse-api/pkg/util/errorutil"
)

// ProfileHandler exposes profile edits and avatar upload.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Update handles PUT /accounts/profile.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.profiles.UpdateProfile(c.UserContext(), principal.User, service.ProfileUpdateInput{
		UserName: req.UserName,
		Email:    req.Email,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return err
	}

	message := "Profile updated successfully."
	if user.AwaitingEmailConfirmation() {
		message = "Profile updated. Please confirm your new email address."
	}
	return c.JSON(dto.OK(message, fiber.Map{"user": dto.NewUserResponse(user)}))
}

// UploadAvatar handles POST /accounts/avatar with a multipart "image" field.
func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewValidationError("image file is required", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	url, err := h.profiles.UploadAvatar(
		c.UserContext(),
		principal.User.ID,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Profile image updated successfully.", fiber.Map{"imageUrl": url}))
}
