package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tunepulse/tunepulse-api/internal/config"
	"github.com/tunepulse/tunepulse-api/internal/credential"
	"github.com/tunepulse/tunepulse-api/internal/domain"
	"github.com/tunepulse/tunepulse-api/internal/events"
	"github.com/tunepulse/tunepulse-api/internal/repository"
	"github.com/tunepulse/tunepulse-api/internal/storage"
	apperrors "github.com/tunepulse/tunepulse-api/pkg/util/errorutil"
)

const (
	avatarFolder  = "profile_pics"
	maxAvatarSize = 5 << 20
)

// ProfileService handles profile edits and avatar uploads. Changing the
// email address does not take effect immediately: the new address is parked
// as pending and a confirmation token is mailed to it; the account counts as
// unverified until confirmed.
type ProfileService struct {
	users      repository.UserRepository
	store      storage.BlobStore
	issuer     *credential.Issuer
	dispatcher events.Dispatcher
	validate   *validator.Validate
	authCfg    config.AuthConfig
	baseURL    string
	logger     *zap.Logger
}

// NewProfileService constructs the service.
func NewProfileService(
	users repository.UserRepository,
	store storage.BlobStore,
	issuer *credential.Issuer,
	dispatcher events.Dispatcher,
	authCfg config.AuthConfig,
	baseURL string,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		users:      users,
		store:      store,
		issuer:     issuer,
		dispatcher: dispatcher,
		validate:   validator.New(),
		authCfg:    authCfg,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// ProfileUpdateInput describes a partial profile edit. Nil fields stay
// untouched.
type ProfileUpdateInput struct {
	UserName *string
	Email    *string
	ImageURL *string
}

// UpdateProfile applies the edit as one atomic record-level update. When the
// email differs from the current one, the change is staged: pending_email
// and a fresh email-change token are written in the same update and the
// confirmation mail goes to the NEW address.
func (s *ProfileService) UpdateProfile(ctx context.Context, user *domain.User, input ProfileUpdateInput) (*domain.User, error) {
	patch := repository.ProfilePatch{}

	if input.UserName != nil {
		name := strings.TrimSpace(*input.UserName)
		if name == "" {
			return nil, apperrors.NewValidationError("name must not be empty", map[string]any{
				"userName": "Name is required.",
			})
		}
		patch.UserName = &name
	}

	if input.ImageURL != nil {
		url := strings.TrimSpace(*input.ImageURL)
		if url == "" {
			return nil, apperrors.NewValidationError("image url must not be empty", nil)
		}
		patch.ImageURL = &url
	}

	var pendingEmail string
	if input.Email != nil {
		pendingEmail = strings.ToLower(strings.TrimSpace(*input.Email))
		if s.validate.Var(pendingEmail, "required,email") != nil {
			return nil, apperrors.NewValidationError("invalid email address", map[string]any{
				"email": "A valid email address is required.",
			})
		}
		if pendingEmail == user.Email {
			pendingEmail = ""
		}
	}

	if pendingEmail != "" {
		token, expires, err := s.issuer.IssueSigned(credential.ConcernEmailChange, user.ID, s.authCfg.EmailChangeTTL())
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		unverified := false
		patch.PendingEmail = &pendingEmail
		patch.IsVerified = &unverified
		patch.EmailChangeToken = &token
		patch.EmailChangeTokenExpires = &expires
	}

	updated, err := s.users.UpdateProfile(ctx, user.ID, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}

	if pendingEmail != "" {
		s.publishEvent(ctx, events.Event{
			Type: events.EventEmailChangeRequested,
			Payload: events.CredentialRequestedPayload{
				UserName:   updated.UserName,
				Email:      pendingEmail,
				Link:       s.baseURL + "/confirm-email/" + *patch.EmailChangeToken,
				TTLMinutes: s.authCfg.EmailChangeTTLMinutes,
			},
		})
	}
	return updated, nil
}

// UploadAvatar stores the image under a per-user key so a re-upload
// overwrites the previous avatar, then records the returned URL.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID, contentType string, size int64, data io.Reader) (string, error) {
	if size <= 0 {
		return "", apperrors.NewValidationError("image file is required", nil)
	}
	if size > maxAvatarSize {
		return "", apperrors.NewValidationError("image exceeds the 5MB limit", nil)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", apperrors.NewValidationError("only image uploads are allowed", nil)
	}

	result, err := s.store.Upload(ctx, &storage.UploadInput{
		Folder:      avatarFolder,
		Key:         "profile_" + userID,
		ContentType: contentType,
		Size:        size,
		Data:        data,
	})
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	if err := s.users.SetImageURL(ctx, userID, result.URL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound("user", nil)
		}
		return "", apperrors.MapError(err)
	}
	return result.URL, nil
}

func (s *ProfileService) publishEvent(ctx context.Context, event events.Event) {
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
