package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tunepulse/tunepulse-api/internal/auth"
	"github.com/tunepulse/tunepulse-api/internal/config"
	"github.com/tunepulse/tunepulse-api/internal/credential"
	"github.com/tunepulse/tunepulse-api/internal/domain"
	"github.com/tunepulse/tunepulse-api/internal/events"
	"github.com/tunepulse/tunepulse-api/internal/ratelimit"
	"github.com/tunepulse/tunepulse-api/internal/repository"
	apperrors "github.com/tunepulse/tunepulse-api/pkg/util/errorutil"
)

// AccountService owns registration, login and the three token-gated account
// transitions: verification, password reset and email change. Each concern
// keeps its own stored token pair; consuming a token is a single atomic
// compare-and-clear in the repository, so a token spends exactly once no
// matter how many requests race.
type AccountService struct {
	users      repository.UserRepository
	issuer     *credential.Issuer
	sessions   *auth.TokenManager
	dispatcher events.Dispatcher
	limiter    *ratelimit.Limiter
	validate   *validator.Validate
	authCfg    config.AuthConfig
	baseURL    string
	logger     *zap.Logger
}

// NewAccountService constructs the service.
func NewAccountService(
	users repository.UserRepository,
	issuer *credential.Issuer,
	sessions *auth.TokenManager,
	dispatcher events.Dispatcher,
	limiter *ratelimit.Limiter,
	authCfg config.AuthConfig,
	baseURL string,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		users:      users,
		issuer:     issuer,
		sessions:   sessions,
		dispatcher: dispatcher,
		limiter:    limiter,
		validate:   validator.New(),
		authCfg:    authCfg,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Session bundles a login result.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Register creates an account and kicks off verification. The account starts
// unverified with the default avatar.
func (s *AccountService) Register(ctx context.Context, userName, email, password string) (*domain.User, error) {
	userName = strings.TrimSpace(userName)
	email = strings.ToLower(strings.TrimSpace(email))

	details := map[string]any{}
	if userName == "" {
		details["userName"] = "Name is required."
	}
	if s.validate.Var(email, "required,email") != nil {
		details["email"] = "A valid email address is required."
	}
	if len(password) < s.authCfg.MinPasswordLength {
		details["password"] = "Password is too short."
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("registration validation failed", details)
	}

	hash, err := auth.HashPassword(password, s.authCfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: hash,
		ImageURL:     domain.DefaultAvatarURL,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}

	if err := s.RequestVerification(ctx, user.ID); err != nil {
		// Account creation stands; the user can request another mail.
		s.logger.Warn("verification request after register failed",
			zap.String("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

// Login checks credentials and issues a session token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.sessions.GenerateToken(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// GetAccount loads an account by id.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// RequestVerification issues a fresh verification token for an unverified
// account and emits the mail event. Issuing again overwrites the previous
// token, which invalidates it.
func (s *AccountService) RequestVerification(ctx context.Context, userID string) error {
	user, err := s.GetAccount(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsVerified && !user.AwaitingEmailConfirmation() {
		return apperrors.NewAlreadyVerified()
	}

	token, expires, err := s.issuer.IssueSigned(credential.ConcernVerification, user.ID, s.authCfg.VerificationTTL())
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.SetVerificationToken(ctx, user.ID, token, expires); err != nil {
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventVerificationRequested,
		Payload: events.CredentialRequestedPayload{
			UserName:   user.UserName,
			Email:      user.Email,
			Link:       s.baseURL + "/verify-account/" + token,
			TTLMinutes: s.authCfg.VerificationTTLMinutes,
		},
	})
	return nil
}

// ConfirmVerification spends a verification token and marks the account
// verified. Re-confirming an already verified account is a no-op on the
// record and reported as ALREADY_VERIFIED.
func (s *AccountService) ConfirmVerification(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.issuer.DecodeSigned(credential.ConcernVerification, token)
	if err != nil {
		if errors.Is(err, credential.ErrTokenExpired) {
			if _, clearErr := s.users.ClearExpiredVerificationToken(ctx, token); clearErr != nil {
				s.logger.Warn("clearing expired verification token failed", zap.Error(clearErr))
			}
			return nil, apperrors.NewTokenExpired("verification link expired")
		}
		return nil, apperrors.NewTokenInvalid("verification link invalid")
	}

	user, err := s.users.ConsumeVerificationToken(ctx, token)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	// Nothing matched: either the token was superseded or the account is
	// already verified (for example a double-click on the mail link).
	existing, lookupErr := s.users.GetByID(ctx, claims.SubjectID)
	if lookupErr == nil && existing.IsVerified {
		return nil, apperrors.NewAlreadyVerified()
	}
	return nil, apperrors.NewTokenInvalid("verification link invalid")
}

// RequestPasswordReset issues an opaque reset token and emits the mail
// event. Requests per address are rate limited; the limiter fails open so an
// unavailable Redis never blocks the flow.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperrors.NewValidationError("email is required", nil)
	}

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.logger.Warn("reset rate limiter unavailable", zap.Error(err))
	}
	if !allowed {
		return apperrors.NewTooManyRequests("too many reset requests, try again later")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}

	token, expires, err := s.issuer.IssueOpaque(s.authCfg.PasswordResetTTL())
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventPasswordResetRequested,
		Payload: events.CredentialRequestedPayload{
			UserName:   user.UserName,
			Email:      user.Email,
			Link:       s.baseURL + "/reset-password/" + token,
			TTLMinutes: s.authCfg.PasswordResetTTLMinutes,
		},
	})
	return nil
}

// ResetPassword spends a reset token and installs the new password. Input
// validation happens before the consume, so a mismatched confirmation does
// not burn the token.
func (s *AccountService) ResetPassword(ctx context.Context, token, password, confirm string) (*domain.User, error) {
	if password != confirm {
		return nil, apperrors.NewValidationError("passwords do not match", map[string]any{
			"confirmPassword": "Passwords do not match.",
		})
	}
	if len(password) < s.authCfg.MinPasswordLength {
		return nil, apperrors.NewValidationError("password too short", map[string]any{
			"password": "Password is too short.",
		})
	}

	hash, err := auth.HashPassword(password, s.authCfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user, err := s.users.ConsumeResetToken(ctx, token, hash)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	cleared, clearErr := s.users.ClearExpiredResetToken(ctx, token)
	if clearErr != nil {
		return nil, apperrors.MapError(clearErr)
	}
	if cleared {
		return nil, apperrors.NewTokenExpired("reset link expired")
	}
	return nil, apperrors.NewTokenInvalid("reset link invalid")
}

// ConfirmEmailChange spends an email-change token, promoting the pending
// address to the live one and re-verifying the account.
func (s *AccountService) ConfirmEmailChange(ctx context.Context, token string) (*domain.User, error) {
	if _, err := s.issuer.DecodeSigned(credential.ConcernEmailChange, token); err != nil {
		if errors.Is(err, credential.ErrTokenExpired) {
			if _, clearErr := s.users.ClearExpiredEmailChangeToken(ctx, token); clearErr != nil {
				s.logger.Warn("clearing expired email-change token failed", zap.Error(clearErr))
			}
			return nil, apperrors.NewTokenExpired("confirmation link expired")
		}
		return nil, apperrors.NewTokenInvalid("confirmation link invalid")
	}

	user, err := s.users.ConsumeEmailChangeToken(ctx, token)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	return nil, apperrors.NewTokenInvalid("confirmation link invalid")
}

func (s *AccountService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
