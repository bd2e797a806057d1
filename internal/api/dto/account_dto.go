package dto

import (
	"time"

	"github.com/tunepulse/tunepulse-api/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PasswordResetRequest payload for initiating a reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload for spending a reset token.
type PasswordResetConfirmRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// TokenRequest payload carrying a credential token.
type TokenRequest struct {
	Token string `json:"token"`
}

// VerifyRequest payload: a userId asks for a fresh verification mail, a
// token spends one.
type VerifyRequest struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

// ProfileUpdateRequest payload for partial profile edits.
type ProfileUpdateRequest struct {
	UserName *string `json:"userName"`
	Email    *string `json:"email"`
	ImageURL *string `json:"imageUrl"`
}

// UserResponse is the account shape returned to clients. Email shows the
// pending address while an email change awaits confirmation.
type UserResponse struct {
	ID           string    `json:"id"`
	UserName     string    `json:"userName"`
	Email        string    `json:"email"`
	ImageURL     string    `json:"imageUrl"`
	IsVerified   bool      `json:"isVerified"`
	PendingEmail *string   `json:"pendingEmail,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		UserName:     user.UserName,
		Email:        user.DisplayEmail(),
		ImageURL:     user.ImageURL,
		IsVerified:   user.IsVerified,
		PendingEmail: user.PendingEmail,
		CreatedAt:    user.CreatedAt,
	}
}
