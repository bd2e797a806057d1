package domain

import "time"

// DefaultAvatarURL is assigned to accounts created without an avatar.
const DefaultAvatarURL = "https://api.dicebear.com/6.x/thumbs/svg"

// User is the account model for listeners. Each of the three credential
// concerns (verification, email change, password reset) keeps its token and
// expiry as a nullable pair: both null or both set.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash string
	ImageURL     string
	IsVerified   bool

	VerificationToken        *string
	VerificationTokenExpires *time.Time

	PendingEmail            *string
	EmailChangeToken        *string
	EmailChangeTokenExpires *time.Time

	ResetPasswordToken   *string
	ResetPasswordExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AwaitingEmailConfirmation reports whether an email change is pending.
func (u *User) AwaitingEmailConfirmation() bool {
	return u.PendingEmail != nil && *u.PendingEmail != ""
}

// DisplayEmail returns the address profile pages should show: the pending
// address while a change awaits confirmation, the stored one otherwise.
func (u *User) DisplayEmail() string {
	if !u.IsVerified && u.AwaitingEmailConfirmation() {
		return *u.PendingEmail
	}
	return u.Email
}
